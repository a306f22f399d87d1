package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	alphanumericPattern = regexp.MustCompile(`^[\p{L}\p{N} ]+$`)
	letterPattern       = regexp.MustCompile(`\p{L}`)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// ValidateUser checks the identity fields of a user candidate
func ValidateUser(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return invalid("name must be %d characters or less", MaxNameLength)
	}
	if strings.TrimSpace(email) == "" {
		return invalid("email is required")
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return invalid("email must be %d characters or less", MaxEmailLength)
	}
	return nil
}

// ValidateBudget checks a budget candidate before any lookup runs
func ValidateBudget(description string, amount decimal.Decimal, userID int64) error {
	if strings.TrimSpace(description) == "" {
		return invalid("budget description is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return invalid("budget description must be %d characters or less", MaxDescriptionLength)
	}
	if amount.IsNegative() {
		return invalid("budget amount cannot be negative")
	}
	if userID <= 0 {
		return invalid("budget user is required")
	}
	return nil
}

// ValidateExpenseFields checks the description and amount of an expense.
// A description must hold at least one letter, so "89" is rejected.
func ValidateExpenseFields(description string, amount int64) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return invalid("expense description is required")
	}
	if !alphanumericPattern.MatchString(description) || !letterPattern.MatchString(description) {
		return invalid("expense description must be alphanumeric")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return invalid("expense description must be %d characters or less", MaxDescriptionLength)
	}
	if amount < 0 {
		return invalid("expense amount cannot be negative")
	}
	return nil
}

// ValidateExpense checks an expense candidate, including its budget reference
func ValidateExpense(description string, amount int64, budgetID *int64) error {
	if err := ValidateExpenseFields(description, amount); err != nil {
		return err
	}
	if budgetID == nil || *budgetID <= 0 {
		return invalid("expense budget is required")
	}
	return nil
}
