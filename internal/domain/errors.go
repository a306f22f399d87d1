package domain

import "errors"

// Domain errors
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUserNotFound         = errors.New("user not found")
	ErrBudgetNotFound       = errors.New("budget not found")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrDuplicateUser        = errors.New("user already exists")
	ErrDuplicateBudgetName  = errors.New("budget name already exists")
	ErrDuplicateExpenseName = errors.New("expense name already exists")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxEmailLength       = 255
	MaxDescriptionLength = 255
)

// IsNotFound reports whether err is one of the referential not-found errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBudgetNotFound) ||
		errors.Is(err, ErrExpenseNotFound)
}

// IsDuplicate reports whether err is one of the uniqueness errors
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUser) ||
		errors.Is(err, ErrDuplicateBudgetName) ||
		errors.Is(err, ErrDuplicateExpenseName)
}
