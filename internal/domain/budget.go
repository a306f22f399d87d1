package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a named spending allocation owned by a user. The description
// doubles as the budget's category in reports.
type Budget struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BudgetNameAndAmount is the (name, amount) projection of a budget
type BudgetNameAndAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type BudgetRepository interface {
	GetByID(id int64) (*Budget, error)
	ExistsByID(id int64) (bool, error)
	GetAll() ([]*Budget, error)
	GetAllByUser(userID int64) ([]*Budget, error)
	// ExistsByDescriptionAndUser ignores the budget with excludeID (0 excludes nothing)
	ExistsByDescriptionAndUser(description string, userID int64, excludeID int64) (bool, error)
	Create(budget *Budget) (*Budget, error)
	// Update fails with ErrDuplicateExpenseName when moving the budget would
	// give the new owner two expenses with the same description
	Update(budget *Budget) (*Budget, error)
	// Delete keeps the budget's expenses and clears their budget reference
	Delete(id int64) error
}
