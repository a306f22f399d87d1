package service

import (
	"strings"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget lifecycle and budget reports
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	userRepo       domain.UserRepository
	expenseRepo    domain.ExpenseRepository
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo domain.BudgetRepository,
	userRepo domain.UserRepository,
	expenseRepo domain.ExpenseRepository,
) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// GetBudgetsByUserID returns the user's budgets; an unknown user has none
func (s *BudgetService) GetBudgetsByUserID(userID int64) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(userID)
}

// CreateBudget validates and stores a new budget
func (s *BudgetService) CreateBudget(candidate *domain.Budget) (*domain.Budget, error) {
	budget := &domain.Budget{
		UserID:      candidate.UserID,
		Description: strings.TrimSpace(candidate.Description),
		Amount:      candidate.Amount,
	}
	if err := s.checkBudget(budget, 0); err != nil {
		return nil, err
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", created.UserID).
		Int64("budget_id", created.ID).
		Str("description", created.Description).
		Msg("Budget created")

	s.publishEvent(created.UserID, websocket.BudgetCreated(created))
	return created, nil
}

// UpdateBudget replaces the fields of an existing budget
func (s *BudgetService) UpdateBudget(id int64, candidate *domain.Budget) (*domain.Budget, error) {
	existing, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	budget := &domain.Budget{
		ID:          existing.ID,
		UserID:      candidate.UserID,
		Description: strings.TrimSpace(candidate.Description),
		Amount:      candidate.Amount,
		CreatedAt:   existing.CreatedAt,
	}
	if err := s.checkBudget(budget, existing.ID); err != nil {
		return nil, err
	}
	if budget.UserID != existing.UserID {
		if err := s.checkExpensesMovable(existing.ID, budget.UserID); err != nil {
			return nil, err
		}
	}

	updated, err := s.budgetRepo.Update(budget)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", updated.UserID).
		Int64("budget_id", updated.ID).
		Msg("Budget updated")

	if existing.UserID != updated.UserID {
		s.publishEvent(existing.UserID, websocket.BudgetDeleted(existing))
		s.publishEvent(updated.UserID, websocket.BudgetCreated(updated))
	} else {
		s.publishEvent(updated.UserID, websocket.BudgetUpdated(updated))
	}
	return updated, nil
}

// checkBudget runs field validation, the owner lookup and the per-user
// description check, in that order. excludeID is the budget being updated.
func (s *BudgetService) checkBudget(budget *domain.Budget, excludeID int64) error {
	if err := domain.ValidateBudget(budget.Description, budget.Amount, budget.UserID); err != nil {
		return err
	}

	exists, err := s.userRepo.ExistsByID(budget.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	taken, err := s.budgetRepo.ExistsByDescriptionAndUser(budget.Description, budget.UserID, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateBudgetName
	}
	return nil
}

// checkExpensesMovable rejects an owner change that would give newUserID two
// expenses with the same description
func (s *BudgetService) checkExpensesMovable(budgetID, newUserID int64) error {
	expenses, err := s.expenseRepo.GetAllByBudget(budgetID)
	if err != nil {
		return err
	}
	for _, expense := range expenses {
		taken, err := s.expenseRepo.ExistsByDescriptionAndUser(expense.Description, newUserID, expense.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateExpenseName
		}
	}
	return nil
}

// DeleteBudget removes a budget. The store clears the budget reference of its
// expenses in the same write, so reports list them as uncategorized.
func (s *BudgetService) DeleteBudget(id int64) error {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(id); err != nil {
		return err
	}

	log.Info().Int64("user_id", budget.UserID).Int64("budget_id", id).Msg("Budget deleted")

	s.publishEvent(budget.UserID, websocket.BudgetDeleted(budget))
	return nil
}

// GetBudgetGroupedByCategory sums budget amounts per description
func (s *BudgetService) GetBudgetGroupedByCategory(userID int64) (map[string]decimal.Decimal, error) {
	budgets, err := s.budgetRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(budgets))
	for _, budget := range budgets {
		totals[budget.Description] = totals[budget.Description].Add(budget.Amount)
	}
	return totals, nil
}

// GetBudgetNamesAndAmountsByUserID projects the user's budgets in storage order
func (s *BudgetService) GetBudgetNamesAndAmountsByUserID(userID int64) ([]domain.BudgetNameAndAmount, error) {
	budgets, err := s.budgetRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.BudgetNameAndAmount, len(budgets))
	for i, budget := range budgets {
		result[i] = domain.BudgetNameAndAmount{Name: budget.Description, Amount: budget.Amount}
	}
	return result, nil
}
