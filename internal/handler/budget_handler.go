package handler

import (
	"net/http"
	"time"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetDeletedMessage acknowledges a budget deletion
const BudgetDeletedMessage = "Budget deleted successfully!"

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create and update budget request body
type BudgetRequest struct {
	UserID      int64  `json:"userId"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// GetBudgetsByUser godoc
// @Summary List a user's budgets
// @Tags budgets
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets/user/{userId} [get]
func (h *BudgetHandler) GetBudgetsByUser(c echo.Context) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return invalidIDError(c, "userId")
	}

	budgets, err := h.budgetService.GetBudgetsByUserID(userID)
	if err != nil {
		return NewServiceError(c, err, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateBudget godoc
// @Summary Create a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body BudgetRequest true "Budget creation request"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	candidate, fieldErr := req.toBudget()
	if fieldErr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*fieldErr})
	}

	budget, err := h.budgetService.CreateBudget(candidate)
	if err != nil {
		return NewServiceError(c, err, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// UpdateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path int true "Budget ID"
// @Param request body BudgetRequest true "Budget update request"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	candidate, fieldErr := req.toBudget()
	if fieldErr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*fieldErr})
	}

	budget, err := h.budgetService.UpdateBudget(id, candidate)
	if err != nil {
		return NewServiceError(c, err, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Description Expenses of the budget are kept and reported as Uncategorized
// @Tags budgets
// @Produce json
// @Param id path int true "Budget ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidIDError(c, "id")
	}

	if err := h.budgetService.DeleteBudget(id); err != nil {
		return NewServiceError(c, err, "Failed to delete budget")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: BudgetDeletedMessage})
}

func (r BudgetRequest) toBudget() (*domain.Budget, *ValidationError) {
	if r.Amount == "" {
		return nil, &ValidationError{Field: "amount", Message: "Amount is required"}
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Message: "Must be a valid decimal number"}
	}

	return &domain.Budget{
		UserID:      r.UserID,
		Description: r.Description,
		Amount:      amount,
	}, nil
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          budget.ID,
		UserID:      budget.UserID,
		Description: budget.Description,
		Amount:      budget.Amount.StringFixed(2),
		CreatedAt:   budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   budget.UpdatedAt.Format(time.RFC3339),
	}
}
