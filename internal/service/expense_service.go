package service

import (
	"errors"
	"strings"
	"time"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ExpenseService handles expense lifecycle and expense reports
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	budgetRepo     domain.BudgetRepository
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, budgetRepo domain.BudgetRepository) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		budgetRepo:  budgetRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(userID int64, event websocket.Event) {
	if s.eventPublisher != nil && userID != 0 {
		s.eventPublisher.Publish(userID, event)
	}
}

// GetAllExpenses returns every expense
func (s *ExpenseService) GetAllExpenses() ([]*domain.Expense, error) {
	return s.expenseRepo.GetAll()
}

// GetExpenseByID returns the expense or domain.ErrExpenseNotFound
func (s *ExpenseService) GetExpenseByID(id int64) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(id)
}

// GetExpensesByUserID returns the expenses charged against the user's budgets
func (s *ExpenseService) GetExpensesByUserID(userID int64) ([]*domain.Expense, error) {
	return s.expenseRepo.GetAllByUser(userID)
}

// CreateExpense validates and stores a new expense
func (s *ExpenseService) CreateExpense(candidate *domain.Expense) (*domain.Expense, error) {
	description := strings.TrimSpace(candidate.Description)
	if err := domain.ValidateExpense(description, candidate.Amount, candidate.BudgetID); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByID(*candidate.BudgetID)
	if err != nil {
		return nil, err
	}

	taken, err := s.expenseRepo.ExistsByDescriptionAndUser(description, budget.UserID, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDuplicateExpenseName
	}

	date := candidate.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	budgetID := budget.ID
	expense := &domain.Expense{
		BudgetID:    &budgetID,
		Description: description,
		Amount:      candidate.Amount,
		Date:        date,
	}

	created, err := s.expenseRepo.Create(expense, budget.UserID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", budget.UserID).
		Int64("budget_id", budget.ID).
		Int64("expense_id", created.ID).
		Int64("amount", created.Amount).
		Msg("Expense created")

	s.publishEvent(budget.UserID, websocket.ExpenseCreated(created))
	return created, nil
}

// UpdateExpense overwrites an existing expense with the candidate's fields.
// The budget reference and date are only replaced when the candidate sets them.
func (s *ExpenseService) UpdateExpense(id int64, candidate *domain.Expense) (*domain.Expense, error) {
	existing, err := s.expenseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(candidate.Description)
	if err := domain.ValidateExpenseFields(description, candidate.Amount); err != nil {
		return nil, err
	}

	merged := *existing
	merged.Description = description
	merged.Amount = candidate.Amount
	if !candidate.Date.IsZero() {
		merged.Date = candidate.Date
	}

	var ownerID int64
	if candidate.BudgetID != nil {
		budget, err := s.budgetRepo.GetByID(*candidate.BudgetID)
		if err != nil {
			return nil, err
		}
		budgetID := budget.ID
		merged.BudgetID = &budgetID
		ownerID = budget.UserID
	} else {
		ownerID, err = s.ownerOf(existing.BudgetID)
		if err != nil {
			return nil, err
		}
	}

	// Orphaned expenses have no owner to be unique within
	if ownerID != 0 {
		taken, err := s.expenseRepo.ExistsByDescriptionAndUser(description, ownerID, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrDuplicateExpenseName
		}
	}

	updated, err := s.expenseRepo.Update(&merged, ownerID)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", ownerID).Int64("expense_id", updated.ID).Msg("Expense updated")

	s.publishEvent(ownerID, websocket.ExpenseUpdated(updated))
	return updated, nil
}

// DeleteExpense removes an expense. Store failures are returned as-is.
func (s *ExpenseService) DeleteExpense(id int64) error {
	expense, err := s.expenseRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.expenseRepo.Delete(id); err != nil {
		return err
	}

	ownerID, err := s.ownerOf(expense.BudgetID)
	if err != nil {
		log.Warn().Err(err).Int64("expense_id", id).Msg("Could not resolve expense owner")
	}
	log.Info().Int64("user_id", ownerID).Int64("expense_id", id).Msg("Expense deleted")

	s.publishEvent(ownerID, websocket.ExpenseDeleted(expense))
	return nil
}

// ownerOf returns the user owning budgetID, or 0 for a missing budget
func (s *ExpenseService) ownerOf(budgetID *int64) (int64, error) {
	if budgetID == nil {
		return 0, nil
	}
	budget, err := s.budgetRepo.GetByID(*budgetID)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return budget.UserID, nil
}

// GetExpensesGroupedByBudget sums every expense by its budget's description.
// Expenses without a budget are reported under domain.UncategorizedKey.
func (s *ExpenseService) GetExpensesGroupedByBudget() (map[string]int64, error) {
	expenses, err := s.expenseRepo.GetAll()
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return map[string]int64{}, nil
	}

	budgets, err := s.budgetRepo.GetAll()
	if err != nil {
		return nil, err
	}
	descriptions := make(map[int64]string, len(budgets))
	for _, budget := range budgets {
		descriptions[budget.ID] = budget.Description
	}

	return sumBy(expenses, func(e *domain.Expense) string {
		if e.BudgetID != nil {
			if description, ok := descriptions[*e.BudgetID]; ok {
				return description
			}
		}
		return domain.UncategorizedKey
	}), nil
}

// GetExpensesGroupedByCategory sums the user's expenses by their own description
func (s *ExpenseService) GetExpensesGroupedByCategory(userID int64) (map[string]int64, error) {
	expenses, err := s.expenseRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	return sumBy(expenses, expenseCategory), nil
}

// GetAllExpensesGroupedByCategory sums every expense by its own description
func (s *ExpenseService) GetAllExpensesGroupedByCategory() (map[string]int64, error) {
	expenses, err := s.expenseRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return sumBy(expenses, expenseCategory), nil
}

func expenseCategory(e *domain.Expense) string {
	return e.Description
}

func sumBy(expenses []*domain.Expense, key func(*domain.Expense) string) map[string]int64 {
	totals := make(map[string]int64)
	for _, expense := range expenses {
		totals[key(expense)] += expense.Amount
	}
	return totals
}
