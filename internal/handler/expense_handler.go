package handler

import (
	"net/http"
	"time"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ExpenseDeletedMessage acknowledges an expense deletion
const ExpenseDeletedMessage = "Expense deleted successfully"

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest represents the create and update expense request body
type ExpenseRequest struct {
	BudgetID    *int64  `json:"budgetId"`
	Description string  `json:"description"`
	Amount      int64   `json:"amount"`
	Date        *string `json:"date,omitempty"` // RFC 3339, defaults to now
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          int64  `json:"id"`
	BudgetID    *int64 `json:"budgetId"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// GetAllExpenses godoc
// @Summary List every expense
// @Tags expenses
// @Produce json
// @Success 200 {array} ExpenseResponse
// @Failure 500 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) GetAllExpenses(c echo.Context) error {
	expenses, err := h.expenseService.GetAllExpenses()
	if err != nil {
		return NewServiceError(c, err, "Failed to get expenses")
	}
	return c.JSON(http.StatusOK, toExpenseResponses(expenses))
}

// GetExpense godoc
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	expense, err := h.expenseService.GetExpenseByID(id)
	if err != nil {
		return NewServiceError(c, err, "Failed to get expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// GetExpensesByUser godoc
// @Summary List a user's expenses
// @Tags expenses
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Router /expenses/user/{userId} [get]
func (h *ExpenseHandler) GetExpensesByUser(c echo.Context) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return invalidIDError(c, "userId")
	}

	expenses, err := h.expenseService.GetExpensesByUserID(userID)
	if err != nil {
		return NewServiceError(c, err, "Failed to get expenses")
	}
	return c.JSON(http.StatusOK, toExpenseResponses(expenses))
}

// CreateExpense godoc
// @Summary Create an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body ExpenseRequest true "Expense creation request"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	candidate, fieldErr := req.toExpense()
	if fieldErr != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{*fieldErr})
	}

	expense, err := h.expenseService.CreateExpense(candidate)
	if err != nil {
		return NewServiceError(c, err, "Failed to create expense")
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// UpdateExpense godoc
// @Summary Update an expense
// @Description Budget and date are kept when omitted
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path int true "Expense ID"
// @Param request body ExpenseRequest true "Expense update request"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	candidate, fieldErr := req.toExpense()
	if fieldErr != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{*fieldErr})
	}

	expense, err := h.expenseService.UpdateExpense(id, candidate)
	if err != nil {
		return NewServiceError(c, err, "Failed to update expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Tags expenses
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	if err := h.expenseService.DeleteExpense(id); err != nil {
		return NewServiceError(c, err, "Failed to delete expense")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: ExpenseDeletedMessage})
}

func (r ExpenseRequest) toExpense() (*domain.Expense, *ValidationError) {
	expense := &domain.Expense{
		BudgetID:    r.BudgetID,
		Description: r.Description,
		Amount:      r.Amount,
	}
	if r.Date != nil && *r.Date != "" {
		date, err := time.Parse(time.RFC3339, *r.Date)
		if err != nil {
			return nil, &ValidationError{Field: "date", Message: "Must be an RFC 3339 timestamp"}
		}
		expense.Date = date.UTC()
	}
	return expense, nil
}

func toExpenseResponses(expenses []*domain.Expense) []ExpenseResponse {
	response := make([]ExpenseResponse, len(expenses))
	for i, expense := range expenses {
		response[i] = toExpenseResponse(expense)
	}
	return response
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		BudgetID:    expense.BudgetID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Date:        expense.Date.Format(time.RFC3339),
		CreatedAt:   expense.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   expense.UpdatedAt.Format(time.RFC3339),
	}
}
