package testutil

import (
	"sort"
	"time"

	"github.com/budgettracker/tracker-backend/internal/domain"
)

// MockUserRepository is an in-memory implementation of domain.UserRepository
type MockUserRepository struct {
	Users  map[int64]*domain.User
	NextID int64

	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[int64]*domain.User),
		NextID: 1,
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id int64) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

// ExistsByID reports whether a user with the ID exists
func (m *MockUserRepository) ExistsByID(id int64) (bool, error) {
	_, ok := m.Users[id]
	return ok, nil
}

// GetByNameAndEmail retrieves a user by name and email
func (m *MockUserRepository) GetByNameAndEmail(name, email string) (*domain.User, error) {
	for _, user := range m.Users {
		if user.Name == name && user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Create stores a new user, enforcing the same unique keys as the database
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return nil, domain.ErrDuplicateUser
		}
	}
	stored := *user
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Users[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

// AddUser adds a user directly to the mock (for test setup)
func (m *MockUserRepository) AddUser(user *domain.User) {
	stored := *user
	m.Users[stored.ID] = &stored
	if stored.ID >= m.NextID {
		m.NextID = stored.ID + 1
	}
}

// MockBudgetRepository is an in-memory implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int64]*domain.Budget
	NextID  int64

	CreateFn func(budget *domain.Budget) (*domain.Budget, error)
	UpdateFn func(budget *domain.Budget) (*domain.Budget, error)
	DeleteFn func(id int64) error

	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	// expenses mirrors the expenses foreign key once linked by NewMockExpenseRepository
	expenses *MockExpenseRepository
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int64]*domain.Budget),
		NextID:  1,
	}
}

func (m *MockBudgetRepository) sorted(keep func(*domain.Budget) bool) []*domain.Budget {
	result := make([]*domain.Budget, 0)
	for _, budget := range m.Budgets {
		if keep(budget) {
			copied := *budget
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(id int64) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok {
		copied := *budget
		return &copied, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// ExistsByID reports whether a budget with the ID exists
func (m *MockBudgetRepository) ExistsByID(id int64) (bool, error) {
	_, ok := m.Budgets[id]
	return ok, nil
}

// GetAll returns every budget ordered by ID
func (m *MockBudgetRepository) GetAll() ([]*domain.Budget, error) {
	return m.sorted(func(*domain.Budget) bool { return true }), nil
}

// GetAllByUser returns the user's budgets ordered by ID
func (m *MockBudgetRepository) GetAllByUser(userID int64) ([]*domain.Budget, error) {
	return m.sorted(func(b *domain.Budget) bool { return b.UserID == userID }), nil
}

// ExistsByDescriptionAndUser checks the per-user description key
func (m *MockBudgetRepository) ExistsByDescriptionAndUser(description string, userID int64, excludeID int64) (bool, error) {
	for _, budget := range m.Budgets {
		if budget.ID != excludeID && budget.UserID == userID && budget.Description == description {
			return true, nil
		}
	}
	return false, nil
}

// Create stores a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	m.CreateCalls++
	if m.CreateFn != nil {
		return m.CreateFn(budget)
	}
	if exists, _ := m.ExistsByDescriptionAndUser(budget.Description, budget.UserID, 0); exists {
		return nil, domain.ErrDuplicateBudgetName
	}
	stored := *budget
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Budgets[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

// Update replaces a stored budget
func (m *MockBudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	m.UpdateCalls++
	if m.UpdateFn != nil {
		return m.UpdateFn(budget)
	}
	existing, ok := m.Budgets[budget.ID]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	if exists, _ := m.ExistsByDescriptionAndUser(budget.Description, budget.UserID, budget.ID); exists {
		return nil, domain.ErrDuplicateBudgetName
	}
	if m.expenses != nil && existing.UserID != budget.UserID && m.expenses.movingCollides(budget.ID, budget.UserID) {
		return nil, domain.ErrDuplicateExpenseName
	}
	stored := *budget
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.Budgets[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(id int64) error {
	m.DeleteCalls++
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	if _, ok := m.Budgets[id]; !ok {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	// ON DELETE SET NULL
	if m.expenses != nil {
		for _, expense := range m.expenses.Expenses {
			if expense.BudgetID != nil && *expense.BudgetID == id {
				expense.BudgetID = nil
			}
		}
	}
	return nil
}

// AddBudget adds a budget directly to the mock (for test setup)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	stored := *budget
	m.Budgets[stored.ID] = &stored
	if stored.ID >= m.NextID {
		m.NextID = stored.ID + 1
	}
}

// MockExpenseRepository is an in-memory implementation of domain.ExpenseRepository.
// It resolves budget ownership through the budget mock, the way the SQL
// implementation joins the budgets table.
type MockExpenseRepository struct {
	Expenses map[int64]*domain.Expense
	NextID   int64
	budgets  *MockBudgetRepository

	GetAllFn func() ([]*domain.Expense, error)
	CreateFn func(expense *domain.Expense, userID int64) (*domain.Expense, error)
	UpdateFn func(expense *domain.Expense, userID int64) (*domain.Expense, error)
	DeleteFn func(id int64) error

	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewMockExpenseRepository creates a new MockExpenseRepository backed by budgets
func NewMockExpenseRepository(budgets *MockBudgetRepository) *MockExpenseRepository {
	m := &MockExpenseRepository{
		Expenses: make(map[int64]*domain.Expense),
		NextID:   1,
		budgets:  budgets,
	}
	if budgets != nil {
		budgets.expenses = m
	}
	return m
}

func (m *MockExpenseRepository) ownerOf(expense *domain.Expense) int64 {
	if expense.BudgetID == nil || m.budgets == nil {
		return 0
	}
	if budget, ok := m.budgets.Budgets[*expense.BudgetID]; ok {
		return budget.UserID
	}
	return 0
}

func (m *MockExpenseRepository) sorted(keep func(*domain.Expense) bool) []*domain.Expense {
	result := make([]*domain.Expense, 0)
	for _, expense := range m.Expenses {
		if keep(expense) {
			result = append(result, cloneExpense(expense))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetByID retrieves an expense by ID
func (m *MockExpenseRepository) GetByID(id int64) (*domain.Expense, error) {
	if expense, ok := m.Expenses[id]; ok {
		return cloneExpense(expense), nil
	}
	return nil, domain.ErrExpenseNotFound
}

// ExistsByID reports whether an expense with the ID exists
func (m *MockExpenseRepository) ExistsByID(id int64) (bool, error) {
	_, ok := m.Expenses[id]
	return ok, nil
}

// GetAll returns every expense ordered by ID
func (m *MockExpenseRepository) GetAll() ([]*domain.Expense, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn()
	}
	return m.sorted(func(*domain.Expense) bool { return true }), nil
}

// GetAllByUser returns the expenses in budgets owned by the user
func (m *MockExpenseRepository) GetAllByUser(userID int64) ([]*domain.Expense, error) {
	return m.sorted(func(e *domain.Expense) bool { return m.ownerOf(e) == userID }), nil
}

// GetAllByBudget returns the expenses charged against the budget
func (m *MockExpenseRepository) GetAllByBudget(budgetID int64) ([]*domain.Expense, error) {
	return m.sorted(func(e *domain.Expense) bool { return e.BudgetID != nil && *e.BudgetID == budgetID }), nil
}

// movingCollides reports whether any expense of budgetID shares a description
// with an expense userID already owns in another budget
func (m *MockExpenseRepository) movingCollides(budgetID, userID int64) bool {
	for _, moved := range m.Expenses {
		if moved.BudgetID == nil || *moved.BudgetID != budgetID {
			continue
		}
		for _, other := range m.Expenses {
			if other.ID == moved.ID || other.Description != moved.Description {
				continue
			}
			if other.BudgetID != nil && *other.BudgetID != budgetID && m.ownerOf(other) == userID {
				return true
			}
		}
	}
	return false
}

// ExistsByDescriptionAndUser checks the description across the user's budgets
func (m *MockExpenseRepository) ExistsByDescriptionAndUser(description string, userID int64, excludeID int64) (bool, error) {
	for _, expense := range m.Expenses {
		if expense.ID == excludeID || expense.Description != description {
			continue
		}
		if m.ownerOf(expense) == userID {
			return true, nil
		}
	}
	return false, nil
}

// Create stores a new expense
func (m *MockExpenseRepository) Create(expense *domain.Expense, userID int64) (*domain.Expense, error) {
	m.CreateCalls++
	if m.CreateFn != nil {
		return m.CreateFn(expense, userID)
	}
	if exists, _ := m.ExistsByDescriptionAndUser(expense.Description, userID, 0); exists {
		return nil, domain.ErrDuplicateExpenseName
	}
	stored := cloneExpense(expense)
	stored.ID = m.NextID
	m.NextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Expenses[stored.ID] = stored
	return cloneExpense(stored), nil
}

// Update replaces a stored expense
func (m *MockExpenseRepository) Update(expense *domain.Expense, userID int64) (*domain.Expense, error) {
	m.UpdateCalls++
	if m.UpdateFn != nil {
		return m.UpdateFn(expense, userID)
	}
	existing, ok := m.Expenses[expense.ID]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	if userID != 0 {
		if exists, _ := m.ExistsByDescriptionAndUser(expense.Description, userID, expense.ID); exists {
			return nil, domain.ErrDuplicateExpenseName
		}
	}
	stored := cloneExpense(expense)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.Expenses[stored.ID] = stored
	return cloneExpense(stored), nil
}

// Delete removes an expense
func (m *MockExpenseRepository) Delete(id int64) error {
	m.DeleteCalls++
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	if _, ok := m.Expenses[id]; !ok {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// AddExpense adds an expense directly to the mock (for test setup)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	stored := cloneExpense(expense)
	m.Expenses[stored.ID] = stored
	if stored.ID >= m.NextID {
		m.NextID = stored.ID + 1
	}
}

func cloneExpense(e *domain.Expense) *domain.Expense {
	copied := *e
	if e.BudgetID != nil {
		id := *e.BudgetID
		copied.BudgetID = &id
	}
	return &copied
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}
