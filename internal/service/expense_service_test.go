package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/budgettracker/tracker-backend/internal/domain"
	"github.com/budgettracker/tracker-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expenseFixture struct {
	budgets  *testutil.MockBudgetRepository
	expenses *testutil.MockExpenseRepository
	svc      *ExpenseService
}

// newExpenseFixture seeds Groceries (1) and Utilities (2) for user 1 and
// Study (3) for user 2
func newExpenseFixture() *expenseFixture {
	budgets := testutil.NewMockBudgetRepository()
	budgets.AddBudget(&domain.Budget{ID: 1, UserID: 1, Description: "Groceries", Amount: decimal.NewFromInt(500)})
	budgets.AddBudget(&domain.Budget{ID: 2, UserID: 1, Description: "Utilities", Amount: decimal.NewFromInt(300)})
	budgets.AddBudget(&domain.Budget{ID: 3, UserID: 2, Description: "Study", Amount: decimal.NewFromInt(1000)})
	expenses := testutil.NewMockExpenseRepository(budgets)
	return &expenseFixture{
		budgets:  budgets,
		expenses: expenses,
		svc:      NewExpenseService(expenses, budgets),
	}
}

// seedGroceriesAndUtilities adds Milk 50 and Bread 30 to Groceries and Electricity 100 to Utilities
func (f *expenseFixture) seedGroceriesAndUtilities() {
	now := time.Now()
	f.expenses.AddExpense(&domain.Expense{ID: 1, BudgetID: testutil.Int64Ptr(1), Description: "Milk", Amount: 50, Date: now})
	f.expenses.AddExpense(&domain.Expense{ID: 2, BudgetID: testutil.Int64Ptr(1), Description: "Bread", Amount: 30, Date: now})
	f.expenses.AddExpense(&domain.Expense{ID: 3, BudgetID: testutil.Int64Ptr(2), Description: "Electricity", Amount: 100, Date: now})
}

func TestExpenseService_CreateExpense_Success(t *testing.T) {
	f := newExpenseFixture()
	publisher := newRecordingPublisher()
	f.svc.SetEventPublisher(publisher)
	date := time.Date(2024, 5, 16, 10, 0, 0, 0, time.UTC)

	expense, err := f.svc.CreateExpense(&domain.Expense{
		BudgetID:    testutil.Int64Ptr(3),
		Description: "tuition fees",
		Amount:      1000,
		Date:        date,
	})

	require.NoError(t, err)
	assert.NotZero(t, expense.ID)
	assert.Equal(t, "tuition fees", expense.Description)
	assert.Equal(t, int64(1000), expense.Amount)
	assert.Equal(t, date, expense.Date)
	require.NotNil(t, expense.BudgetID)
	assert.Equal(t, int64(3), *expense.BudgetID)
	assert.Equal(t, []string{"expense.created"}, publisher.types(2))
}

func TestExpenseService_CreateExpense_DefaultsDate(t *testing.T) {
	f := newExpenseFixture()

	expense, err := f.svc.CreateExpense(&domain.Expense{BudgetID: testutil.Int64Ptr(1), Description: "Milk", Amount: 5})

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), expense.Date, time.Minute)
}

func TestExpenseService_CreateExpense_RejectsNumericDescription(t *testing.T) {
	f := newExpenseFixture()

	_, err := f.svc.CreateExpense(&domain.Expense{BudgetID: testutil.Int64Ptr(1), Description: "89", Amount: 1000})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.expenses.CreateCalls)
}

func TestExpenseService_CreateExpense_NegativeAmount(t *testing.T) {
	candidates := []*domain.Expense{
		{BudgetID: testutil.Int64Ptr(1), Description: "ValidDescription", Amount: -100},
		{BudgetID: testutil.Int64Ptr(999), Description: "ValidDescription", Amount: -1},
		{BudgetID: nil, Description: "89", Amount: -1},
	}

	for i, candidate := range candidates {
		t.Run(fmt.Sprintf("candidate %d", i), func(t *testing.T) {
			f := newExpenseFixture()
			_, err := f.svc.CreateExpense(candidate)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, f.expenses.CreateCalls)
		})
	}
}

func TestExpenseService_CreateExpense_MissingBudgetReference(t *testing.T) {
	f := newExpenseFixture()

	_, err := f.svc.CreateExpense(&domain.Expense{Description: "Milk", Amount: 5})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExpenseService_CreateExpense_BudgetNotFound(t *testing.T) {
	f := newExpenseFixture()

	_, err := f.svc.CreateExpense(&domain.Expense{BudgetID: testutil.Int64Ptr(999), Description: "ValidDescription", Amount: 100})

	assert.ErrorIs(t, err, domain.ErrBudgetNotFound)
	assert.Zero(t, f.expenses.CreateCalls)
}

func TestExpenseService_CreateExpense_DuplicateAcrossUserBudgets(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()

	// Milk already exists under Groceries; Utilities belongs to the same user
	_, err := f.svc.CreateExpense(&domain.Expense{BudgetID: testutil.Int64Ptr(2), Description: "Milk", Amount: 5})

	assert.ErrorIs(t, err, domain.ErrDuplicateExpenseName)
	assert.Zero(t, f.expenses.CreateCalls)
}

func TestExpenseService_CreateExpense_SameDescriptionOtherUser(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()

	expense, err := f.svc.CreateExpense(&domain.Expense{BudgetID: testutil.Int64Ptr(3), Description: "Milk", Amount: 5})

	require.NoError(t, err)
	assert.Equal(t, "Milk", expense.Description)
}

func TestExpenseService_GetExpenseByID(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()

	expense, err := f.svc.GetExpenseByID(2)
	require.NoError(t, err)
	assert.Equal(t, "Bread", expense.Description)

	_, err = f.svc.GetExpenseByID(99)
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
}

func TestExpenseService_GetAllExpenses(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()

	expenses, err := f.svc.GetAllExpenses()

	require.NoError(t, err)
	assert.Len(t, expenses, 3)
}

func TestExpenseService_GetExpensesByUserID(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	f.expenses.AddExpense(&domain.Expense{ID: 4, BudgetID: testutil.Int64Ptr(3), Description: "Books", Amount: 40})

	expenses, err := f.svc.GetExpensesByUserID(2)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Books", expenses[0].Description)

	expenses, err = f.svc.GetExpensesByUserID(404)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestExpenseService_UpdateExpense_Success(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	publisher := newRecordingPublisher()
	f.svc.SetEventPublisher(publisher)

	updated, err := f.svc.UpdateExpense(1, &domain.Expense{
		BudgetID:    testutil.Int64Ptr(2),
		Description: "Updated Expense Description",
		Amount:      100,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "Updated Expense Description", updated.Description)
	assert.Equal(t, int64(100), updated.Amount)
	assert.Equal(t, int64(2), *updated.BudgetID)
	assert.Equal(t, []string{"expense.updated"}, publisher.types(1))
}

func TestExpenseService_UpdateExpense_KeepsBudgetAndDateWhenUnset(t *testing.T) {
	f := newExpenseFixture()
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	f.expenses.AddExpense(&domain.Expense{ID: 1, BudgetID: testutil.Int64Ptr(1), Description: "Milk", Amount: 50, Date: date})

	updated, err := f.svc.UpdateExpense(1, &domain.Expense{Description: "Oat Milk", Amount: 60})

	require.NoError(t, err)
	assert.Equal(t, int64(1), *updated.BudgetID)
	assert.Equal(t, date, updated.Date)
	assert.Equal(t, "Oat Milk", updated.Description)
}

func TestExpenseService_UpdateExpense_KeepsOwnDescription(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()

	updated, err := f.svc.UpdateExpense(1, &domain.Expense{Description: "Milk", Amount: 75})

	require.NoError(t, err)
	assert.Equal(t, int64(75), updated.Amount)
}

func TestExpenseService_UpdateExpense_Errors(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		candidate *domain.Expense
		wantErr   error
	}{
		{"expense not found", 99, &domain.Expense{Description: "Milk", Amount: 1}, domain.ErrExpenseNotFound},
		{"negative amount", 1, &domain.Expense{Description: "Updated Expense Description", Amount: -50}, domain.ErrInvalidInput},
		{"negative amount with budget", 1, &domain.Expense{BudgetID: testutil.Int64Ptr(1), Description: "Milk", Amount: -1}, domain.ErrInvalidInput},
		{"non alphanumeric", 1, &domain.Expense{Description: "89", Amount: 5}, domain.ErrInvalidInput},
		{"budget not found", 1, &domain.Expense{BudgetID: testutil.Int64Ptr(999), Description: "Milk", Amount: 5}, domain.ErrBudgetNotFound},
		{"duplicate description", 1, &domain.Expense{Description: "Electricity", Amount: 5}, domain.ErrDuplicateExpenseName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExpenseFixture()
			f.seedGroceriesAndUtilities()

			_, err := f.svc.UpdateExpense(tt.id, tt.candidate)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.expenses.UpdateCalls)
		})
	}
}

func TestExpenseService_UpdateExpense_OrphanSkipsUniqueness(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	f.expenses.AddExpense(&domain.Expense{ID: 4, Description: "Refund", Amount: 10})

	updated, err := f.svc.UpdateExpense(4, &domain.Expense{Description: "Milk", Amount: 10})

	require.NoError(t, err)
	assert.Nil(t, updated.BudgetID)
}

func TestExpenseService_DeleteExpense_Success(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	publisher := newRecordingPublisher()
	f.svc.SetEventPublisher(publisher)

	err := f.svc.DeleteExpense(1)

	require.NoError(t, err)
	assert.Equal(t, 1, f.expenses.DeleteCalls)
	_, err = f.expenses.GetByID(1)
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	assert.Equal(t, []string{"expense.deleted"}, publisher.types(1))
}

func TestExpenseService_DeleteExpense_NotFound(t *testing.T) {
	f := newExpenseFixture()

	err := f.svc.DeleteExpense(1)

	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	assert.Zero(t, f.expenses.DeleteCalls)
}

func TestExpenseService_DeleteExpense_StoreFailurePropagates(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	storeErr := errors.New("deadlock detected")
	f.expenses.DeleteFn = func(id int64) error { return storeErr }

	err := f.svc.DeleteExpense(1)

	assert.Same(t, storeErr, err)
	assert.Equal(t, 1, f.expenses.DeleteCalls)
}

func TestExpenseService_GetExpensesGroupedByBudget(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()

	grouped, err := f.svc.GetExpensesGroupedByBudget()

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Groceries": 80, "Utilities": 100}, grouped)
}

func TestExpenseService_GetExpensesGroupedByBudget_Empty(t *testing.T) {
	f := newExpenseFixture()

	grouped, err := f.svc.GetExpensesGroupedByBudget()

	require.NoError(t, err)
	assert.NotNil(t, grouped)
	assert.Empty(t, grouped)
}

func TestExpenseService_GetExpensesGroupedByBudget_Uncategorized(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	f.expenses.AddExpense(&domain.Expense{ID: 4, Description: "Unknown", Amount: 50})

	grouped, err := f.svc.GetExpensesGroupedByBudget()

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Groceries": 80, "Utilities": 100, "Uncategorized": 50}, grouped)
}

func TestExpenseService_GetExpensesGroupedByBudget_NegativeAndZeroAmounts(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	f.expenses.AddExpense(&domain.Expense{ID: 4, BudgetID: testutil.Int64Ptr(1), Description: "Refund", Amount: -20})
	f.expenses.AddExpense(&domain.Expense{ID: 5, BudgetID: testutil.Int64Ptr(2), Description: "Free Sample", Amount: 0})

	grouped, err := f.svc.GetExpensesGroupedByBudget()

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Groceries": 60, "Utilities": 100}, grouped)
}

func TestExpenseService_GetExpensesGroupedByBudget_LargeNumberOfExpenses(t *testing.T) {
	f := newExpenseFixture()
	for i := int64(1); i <= 1000; i++ {
		f.expenses.AddExpense(&domain.Expense{ID: i, BudgetID: testutil.Int64Ptr(1), Description: fmt.Sprintf("Expense %d", i), Amount: 10})
	}

	grouped, err := f.svc.GetExpensesGroupedByBudget()

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Groceries": 10000}, grouped)
}

func TestExpenseService_GetExpensesGroupedByBudget_AfterBudgetDeleted(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	users := testutil.NewMockUserRepository()
	users.AddUser(&domain.User{ID: 1, Name: "emily", Email: "emily@example.com"})
	budgetService := NewBudgetService(f.budgets, users, f.expenses)

	require.NoError(t, budgetService.DeleteBudget(2))
	grouped, err := f.svc.GetExpensesGroupedByBudget()

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Groceries": 80, "Uncategorized": 100}, grouped)
}

func TestExpenseService_GetExpensesGroupedByBudget_StoreError(t *testing.T) {
	f := newExpenseFixture()
	storeErr := errors.New("connection refused")
	f.expenses.GetAllFn = func() ([]*domain.Expense, error) { return nil, storeErr }

	_, err := f.svc.GetExpensesGroupedByBudget()

	assert.ErrorIs(t, err, storeErr)
}

func TestExpenseService_GetExpensesGroupedByCategory_ScopedToUser(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	f.expenses.AddExpense(&domain.Expense{ID: 4, BudgetID: testutil.Int64Ptr(2), Description: "Water", Amount: 25})
	f.expenses.AddExpense(&domain.Expense{ID: 5, BudgetID: testutil.Int64Ptr(3), Description: "Books", Amount: 40})

	grouped, err := f.svc.GetExpensesGroupedByCategory(1)

	require.NoError(t, err)
	// Keyed by the expense's own description, not its budget
	assert.Equal(t, map[string]int64{"Milk": 50, "Bread": 30, "Electricity": 100, "Water": 25}, grouped)
}

func TestExpenseService_GetAllExpensesGroupedByCategory(t *testing.T) {
	f := newExpenseFixture()
	f.seedGroceriesAndUtilities()
	f.expenses.AddExpense(&domain.Expense{ID: 4, BudgetID: testutil.Int64Ptr(3), Description: "Milk", Amount: 5})
	f.expenses.AddExpense(&domain.Expense{ID: 5, Description: "Refund", Amount: -10})

	grouped, err := f.svc.GetAllExpensesGroupedByCategory()

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Milk": 55, "Bread": 30, "Electricity": 100, "Refund": -10}, grouped)
}

func TestExpenseService_GetExpensesGroupedByCategory_Empty(t *testing.T) {
	f := newExpenseFixture()

	grouped, err := f.svc.GetExpensesGroupedByCategory(1)

	require.NoError(t, err)
	assert.NotNil(t, grouped)
	assert.Empty(t, grouped)
}
