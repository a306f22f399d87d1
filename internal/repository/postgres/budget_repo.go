package postgres

import (
	"context"
	"errors"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `id, user_id, description, amount, created_at, updated_at`

// movedExpenseCollisionSQL reports whether an expense of budget $1 shares a
// description with an expense user $2 owns in another budget
const movedExpenseCollisionSQL = `SELECT EXISTS (
	SELECT 1 FROM expenses moved
	JOIN expenses e ON e.description = moved.description AND e.id <> moved.id
	JOIN budgets b ON b.id = e.budget_id
	WHERE moved.budget_id = $1 AND b.user_id = $2 AND b.id <> $1
)`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// GetByID retrieves a budget by ID
func (r *BudgetRepository) GetByID(id int64) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)
	return scanBudget(row)
}

// ExistsByID reports whether a budget with the ID exists
func (r *BudgetRepository) ExistsByID(id int64) (bool, error) {
	return existsQuery(context.Background(), r.pool,
		`SELECT EXISTS (SELECT 1 FROM budgets WHERE id = $1)`, id)
}

// GetAll retrieves every budget
func (r *BudgetRepository) GetAll() ([]*domain.Budget, error) {
	return r.list(`SELECT ` + budgetColumns + ` FROM budgets ORDER BY id`)
}

// GetAllByUser retrieves the budgets owned by a user
func (r *BudgetRepository) GetAllByUser(userID int64) ([]*domain.Budget, error) {
	return r.list(`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY id`, userID)
}

// ExistsByDescriptionAndUser checks the per-user description key
func (r *BudgetRepository) ExistsByDescriptionAndUser(description string, userID int64, excludeID int64) (bool, error) {
	return existsQuery(context.Background(), r.pool,
		`SELECT EXISTS (SELECT 1 FROM budgets WHERE description = $1 AND user_id = $2 AND id <> $3)`,
		description, userID, excludeID)
}

// Create inserts a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO budgets (user_id, description, amount) VALUES ($1, $2, $3) RETURNING `+budgetColumns,
		budget.UserID, budget.Description, amount)
	created, err := scanBudget(row)
	if err != nil {
		return nil, translateBudgetWriteError(err)
	}
	return created, nil
}

// Update overwrites a budget's owner, description and amount. The expense
// collision check and the write share one transaction locked on the new owner.
func (r *BudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, err
	}

	var updated *domain.Budget
	err = withUserLock(r.pool, budget.UserID, func(ctx context.Context, tx pgx.Tx) error {
		collides, err := existsQuery(ctx, tx, movedExpenseCollisionSQL, budget.ID, budget.UserID)
		if err != nil {
			return err
		}
		if collides {
			return domain.ErrDuplicateExpenseName
		}

		row := tx.QueryRow(ctx,
			`UPDATE budgets SET user_id = $2, description = $3, amount = $4, updated_at = NOW()
			 WHERE id = $1 RETURNING `+budgetColumns,
			budget.ID, budget.UserID, budget.Description, amount)
		updated, err = scanBudget(row)
		return err
	})
	if err != nil {
		return nil, translateBudgetWriteError(err)
	}
	return updated, nil
}

// Delete removes a budget; ON DELETE SET NULL clears the budget reference of
// its expenses in the same statement
func (r *BudgetRepository) Delete(id int64) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) list(sql string, args ...any) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(), sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, budget)
	}
	return result, rows.Err()
}

func translateBudgetWriteError(err error) error {
	switch {
	case isPgUniqueViolation(err):
		return domain.ErrDuplicateBudgetName
	case isPgForeignKeyViolation(err):
		return domain.ErrUserNotFound
	}
	return err
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var amount pgtype.Numeric
	if err := row.Scan(&b.ID, &b.UserID, &b.Description, &amount, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	return &b, nil
}
