package postgres

import (
	"context"
	"errors"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `e.id, e.budget_id, e.description, e.amount, e.expense_date, e.created_at, e.updated_at`

const expenseDescriptionTakenSQL = `SELECT EXISTS (
	SELECT 1 FROM expenses e
	JOIN budgets b ON b.id = e.budget_id
	WHERE e.description = $1 AND b.user_id = $2 AND e.id <> $3
)`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(id int64) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.id = $1`, id)
	return scanExpense(row)
}

// ExistsByID reports whether an expense with the ID exists
func (r *ExpenseRepository) ExistsByID(id int64) (bool, error) {
	return existsQuery(context.Background(), r.pool,
		`SELECT EXISTS (SELECT 1 FROM expenses WHERE id = $1)`, id)
}

// GetAll retrieves every expense, orphaned ones included
func (r *ExpenseRepository) GetAll() ([]*domain.Expense, error) {
	return r.list(`SELECT ` + expenseColumns + ` FROM expenses e ORDER BY e.id`)
}

// GetAllByUser retrieves the expenses charged against the user's budgets
func (r *ExpenseRepository) GetAllByUser(userID int64) ([]*domain.Expense, error) {
	return r.list(`SELECT `+expenseColumns+` FROM expenses e
		JOIN budgets b ON b.id = e.budget_id
		WHERE b.user_id = $1
		ORDER BY e.id`, userID)
}

// GetAllByBudget retrieves the expenses charged against a budget
func (r *ExpenseRepository) GetAllByBudget(budgetID int64) ([]*domain.Expense, error) {
	return r.list(`SELECT `+expenseColumns+` FROM expenses e WHERE e.budget_id = $1 ORDER BY e.id`, budgetID)
}

// ExistsByDescriptionAndUser checks the description across all of the user's budgets
func (r *ExpenseRepository) ExistsByDescriptionAndUser(description string, userID int64, excludeID int64) (bool, error) {
	return existsQuery(context.Background(), r.pool, expenseDescriptionTakenSQL, description, userID, excludeID)
}

// Create inserts a new expense. The per-user description check runs under a
// transaction-scoped advisory lock on userID so concurrent inserts serialize.
func (r *ExpenseRepository) Create(expense *domain.Expense, userID int64) (*domain.Expense, error) {
	var created *domain.Expense
	err := withUserLock(r.pool, userID, func(ctx context.Context, tx pgx.Tx) error {
		if err := ensureDescriptionFree(ctx, tx, expense.Description, userID, 0); err != nil {
			return err
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO expenses AS e (budget_id, description, amount, expense_date)
			 VALUES ($1, $2, $3, $4) RETURNING `+expenseColumns,
			expense.BudgetID, expense.Description, expense.Amount, expense.Date)
		var err error
		created, err = scanExpense(row)
		return err
	})
	if err != nil {
		return nil, translateExpenseWriteError(err)
	}
	return created, nil
}

// Update overwrites an expense. userID 0 skips the description check.
func (r *ExpenseRepository) Update(expense *domain.Expense, userID int64) (*domain.Expense, error) {
	var updated *domain.Expense
	err := withUserLock(r.pool, userID, func(ctx context.Context, tx pgx.Tx) error {
		if userID != 0 {
			if err := ensureDescriptionFree(ctx, tx, expense.Description, userID, expense.ID); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx,
			`UPDATE expenses AS e
			 SET budget_id = $2, description = $3, amount = $4, expense_date = $5, updated_at = NOW()
			 WHERE e.id = $1 RETURNING `+expenseColumns,
			expense.ID, expense.BudgetID, expense.Description, expense.Amount, expense.Date)
		var err error
		updated, err = scanExpense(row)
		return err
	})
	if err != nil {
		return nil, translateExpenseWriteError(err)
	}
	return updated, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(id int64) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func ensureDescriptionFree(ctx context.Context, q querier, description string, userID, excludeID int64) error {
	taken, err := existsQuery(ctx, q, expenseDescriptionTakenSQL, description, userID, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateExpenseName
	}
	return nil
}

func (r *ExpenseRepository) list(sql string, args ...any) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(context.Background(), sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, expense)
	}
	return result, rows.Err()
}

func translateExpenseWriteError(err error) error {
	if isPgForeignKeyViolation(err) {
		return domain.ErrBudgetNotFound
	}
	return err
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	if err := row.Scan(&e.ID, &e.BudgetID, &e.Description, &e.Amount, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}
