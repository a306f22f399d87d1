package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	User      *UserHandler
	Budget    *BudgetHandler
	Expense   *ExpenseHandler
	Data      *DataHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)

	// API version 1
	api := e.Group("/api/v1")

	// User routes
	users := api.Group("/users")
	users.POST("", h.User.CreateUser)
	users.GET("/find", h.User.FindUser)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.GET("/user/:userId", h.Budget.GetBudgetsByUser)
	budgets.POST("", h.Budget.CreateBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	// Expense routes
	expenses := api.Group("/expenses")
	expenses.GET("", h.Expense.GetAllExpenses)
	expenses.GET("/user/:userId", h.Expense.GetExpensesByUser)
	expenses.GET("/:id", h.Expense.GetExpense)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.PUT("/:id", h.Expense.UpdateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)

	// Report routes
	data := api.Group("/data")
	data.GET("/totalexpenses-by-budget", h.Data.GetTotalExpensesByBudget)
	data.GET("/expenses-by-category", h.Data.GetExpensesByCategory)
	data.GET("/user/:userId/budgets", h.Data.GetUserBudgets)
	data.GET("/user/:userId/budgets-by-category", h.Data.GetUserBudgetsByCategory)

	// Live updates
	if h.WebSocket != nil {
		api.GET("/ws", h.WebSocket.HandleWS)
	}
}
