package domain

import "time"

// UncategorizedKey groups expenses that have no budget
const UncategorizedKey = "Uncategorized"

// Expense is a single spend charged against a budget. BudgetID is nil once
// the owning budget has been deleted.
type Expense struct {
	ID          int64     `json:"id"`
	BudgetID    *int64    `json:"budgetId"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ExpenseRepository interface {
	GetByID(id int64) (*Expense, error)
	ExistsByID(id int64) (bool, error)
	GetAll() ([]*Expense, error)
	// GetAllByUser returns the expenses charged against any budget the user owns
	GetAllByUser(userID int64) ([]*Expense, error)
	GetAllByBudget(budgetID int64) ([]*Expense, error)
	// ExistsByDescriptionAndUser checks across all budgets owned by userID,
	// ignoring the expense with excludeID (0 excludes nothing)
	ExistsByDescriptionAndUser(description string, userID int64, excludeID int64) (bool, error)
	Create(expense *Expense, userID int64) (*Expense, error)
	Update(expense *Expense, userID int64) (*Expense, error)
	Delete(id int64) error
}
