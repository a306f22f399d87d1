package handler

import (
	"net/http"

	"github.com/budgettracker/tracker-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DataHandler serves the aggregate reports used by the dashboard charts
type DataHandler struct {
	budgetService  *service.BudgetService
	expenseService *service.ExpenseService
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(budgetService *service.BudgetService, expenseService *service.ExpenseService) *DataHandler {
	return &DataHandler{
		budgetService:  budgetService,
		expenseService: expenseService,
	}
}

// BudgetNameAndAmountResponse is one row of the per-user budget chart
type BudgetNameAndAmountResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// GetTotalExpensesByBudget godoc
// @Summary Total expenses per budget description
// @Description Expenses without a budget are summed under "Uncategorized"
// @Tags data
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /data/totalexpenses-by-budget [get]
func (h *DataHandler) GetTotalExpensesByBudget(c echo.Context) error {
	totals, err := h.expenseService.GetExpensesGroupedByBudget()
	if err != nil {
		return NewServiceError(c, err, "Failed to group expenses")
	}
	return c.JSON(http.StatusOK, totals)
}

// GetExpensesByCategory godoc
// @Summary Total expenses per category
// @Description Scoped to one user when userId is given
// @Tags data
// @Produce json
// @Param userId query int false "User ID"
// @Success 200 {object} map[string]int64
// @Failure 400 {object} ProblemDetails
// @Router /data/expenses-by-category [get]
func (h *DataHandler) GetExpensesByCategory(c echo.Context) error {
	if c.QueryParam("userId") == "" {
		totals, err := h.expenseService.GetAllExpensesGroupedByCategory()
		if err != nil {
			return NewServiceError(c, err, "Failed to group expenses")
		}
		return c.JSON(http.StatusOK, totals)
	}

	userID, ok := parseQueryID(c, "userId")
	if !ok {
		return invalidIDError(c, "userId")
	}
	totals, err := h.expenseService.GetExpensesGroupedByCategory(userID)
	if err != nil {
		return NewServiceError(c, err, "Failed to group expenses")
	}
	return c.JSON(http.StatusOK, totals)
}

// GetUserBudgets godoc
// @Summary Budget names and amounts for a user
// @Tags data
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} BudgetNameAndAmountResponse
// @Failure 400 {object} ProblemDetails
// @Router /data/user/{userId}/budgets [get]
func (h *DataHandler) GetUserBudgets(c echo.Context) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return invalidIDError(c, "userId")
	}

	rows, err := h.budgetService.GetBudgetNamesAndAmountsByUserID(userID)
	if err != nil {
		return NewServiceError(c, err, "Failed to get budgets")
	}

	response := make([]BudgetNameAndAmountResponse, len(rows))
	for i, row := range rows {
		response[i] = BudgetNameAndAmountResponse{Name: row.Name, Amount: row.Amount.StringFixed(2)}
	}
	return c.JSON(http.StatusOK, response)
}

// GetUserBudgetsByCategory godoc
// @Summary Budget amounts per description for a user
// @Tags data
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ProblemDetails
// @Router /data/user/{userId}/budgets-by-category [get]
func (h *DataHandler) GetUserBudgetsByCategory(c echo.Context) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return invalidIDError(c, "userId")
	}

	totals, err := h.budgetService.GetBudgetGroupedByCategory(userID)
	if err != nil {
		return NewServiceError(c, err, "Failed to group budgets")
	}

	response := make(map[string]string, len(totals))
	for name, amount := range totals {
		response[name] = amount.StringFixed(2)
	}
	return c.JSON(http.StatusOK, response)
}
