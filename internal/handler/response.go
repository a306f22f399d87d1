package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation = "https://budgettracker.app/errors/validation"
	ErrorTypeNotFound   = "https://budgettracker.app/errors/not-found"
	ErrorTypeConflict   = "https://budgettracker.app/errors/conflict"
	ErrorTypeInternal   = "https://budgettracker.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceError maps a service error onto a problem response by kind.
// failure is the detail used when the error is unexpected.
func NewServiceError(c echo.Context, err error, failure string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case domain.IsNotFound(err):
		return NewNotFoundError(c, notFoundDetail(err))
	case domain.IsDuplicate(err):
		return NewConflictError(c, err.Error())
	}
	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(failure)
	return NewInternalError(c, failure)
}

func notFoundDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, domain.ErrBudgetNotFound):
		return "Budget not found"
	default:
		return "Expense not found"
	}
}

// parseID reads a positive integer path parameter
func parseID(c echo.Context, name string) (int64, bool) {
	return parsePositive(c.Param(name))
}

// parseQueryID reads a positive integer query parameter
func parseQueryID(c echo.Context, name string) (int64, bool) {
	return parsePositive(c.QueryParam(name))
}

func parsePositive(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidIDError(c echo.Context, field string) error {
	return NewValidationError(c, "Invalid "+field, []ValidationError{
		{Field: field, Message: "Must be a positive integer"},
	})
}
