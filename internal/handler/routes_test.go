package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/service"
	"github.com/budgettracker/tracker-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAPI wires the real services onto in-memory repositories behind the
// registered route table
type testAPI struct {
	e        *echo.Echo
	users    *testutil.MockUserRepository
	budgets  *testutil.MockBudgetRepository
	expenses *testutil.MockExpenseRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := testutil.NewMockUserRepository()
	budgets := testutil.NewMockBudgetRepository()
	expenses := testutil.NewMockExpenseRepository(budgets)

	userService := service.NewUserService(users)
	budgetService := service.NewBudgetService(budgets, users, expenses)
	expenseService := service.NewExpenseService(expenses, budgets)

	e := echo.New()
	RegisterRoutes(e, Handlers{
		User:    NewUserHandler(userService),
		Budget:  NewBudgetHandler(budgetService),
		Expense: NewExpenseHandler(expenseService),
		Data:    NewDataHandler(budgetService, expenseService),
	})

	return &testAPI{e: e, users: users, budgets: budgets, expenses: expenses}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// seed adds users 1 and 2, budgets Groceries(1) and Utilities(2) for user 1,
// and Milk 50 and Electricity 100
func (a *testAPI) seed() {
	a.users.AddUser(&domain.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	a.users.AddUser(&domain.User{ID: 2, Name: "Bob", Email: "bob@example.com"})
	a.budgets.AddBudget(&domain.Budget{ID: 1, UserID: 1, Description: "Groceries", Amount: decimal.NewFromInt(300)})
	a.budgets.AddBudget(&domain.Budget{ID: 2, UserID: 1, Description: "Utilities", Amount: decimal.RequireFromString("150.50")})
	a.expenses.AddExpense(&domain.Expense{ID: 1, BudgetID: testutil.Int64Ptr(1), Description: "Milk", Amount: 50})
	a.expenses.AddExpense(&domain.Expense{ID: 2, BudgetID: testutil.Int64Ptr(2), Description: "Electricity", Amount: 100})
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	decodeJSON(t, rec, &problem)
	return problem
}

func TestRegisterRoutes_InvalidPathIDs(t *testing.T) {
	api := newTestAPI(t)
	api.seed()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/budgets/user/abc", ""},
		{http.MethodPut, "/api/v1/budgets/0", `{"userId":1,"description":"X","amount":"1"}`},
		{http.MethodDelete, "/api/v1/budgets/-3", ""},
		{http.MethodGet, "/api/v1/expenses/xyz", ""},
		{http.MethodGet, "/api/v1/expenses/user/1.5", ""},
		{http.MethodPut, "/api/v1/expenses/nope", `{"description":"Tea","amount":1}`},
		{http.MethodDelete, "/api/v1/expenses/0", ""},
		{http.MethodGet, "/api/v1/data/user/zero/budgets", ""},
		{http.MethodGet, "/api/v1/data/user/zero/budgets-by-category", ""},
		{http.MethodGet, "/api/v1/data/expenses-by-category?userId=abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, ErrorTypeValidation, decodeProblem(t, rec).Type)
		})
	}
}

func TestRegisterRoutes_OpenAPI(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi":"3.0.3"`)
}

func TestRegisterRoutes_NoWebSocketHandler(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/ws?userId=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
