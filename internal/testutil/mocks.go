package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// MockTx is a no-op pgx.Tx for exercising transactional service paths
// without a database. Commit and Rollback calls are counted so tests can
// assert on transaction outcomes.
type MockTx struct {
	Commits   int
	Rollbacks int
	CommitErr error
}

func (t *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *MockTx) Commit(ctx context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Commits++
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	t.Rollbacks++
	return nil
}

func (t *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *MockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (t *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *MockTx) Conn() *pgx.Conn { return nil }

// MockTxStarter satisfies service.TxStarter, handing out MockTx values.
type MockTxStarter struct {
	Tx       *MockTx
	BeginErr error
}

// NewMockTxStarter creates a MockTxStarter with a fresh MockTx
func NewMockTxStarter() *MockTxStarter {
	return &MockTxStarter{Tx: &MockTx{}}
}

func (s *MockTxStarter) Begin(ctx context.Context) (pgx.Tx, error) {
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}
	return s.Tx, nil
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[uuid.UUID]*domain.Account
	UpdateFn func(account *domain.Account) (*domain.Account, error)
	Refs     map[uuid.UUID]bool
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[uuid.UUID]*domain.Account),
		Refs:     make(map[uuid.UUID]bool),
	}
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.Accounts[account.ID] = account
}

// Create creates a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(userID string, id uuid.UUID) (*domain.Account, error) {
	if account, ok := m.Accounts[id]; ok && account.UserID == userID {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetByName retrieves an account by name
func (m *MockAccountRepository) GetByName(userID string, name string) (*domain.Account, error) {
	for _, account := range m.Accounts {
		if account.UserID == userID && account.Name == name {
			return account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// GetAllByUser retrieves all accounts for a user
func (m *MockAccountRepository) GetAllByUser(userID string) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// Update updates an existing account
func (m *MockAccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(account)
	}
	existing, ok := m.Accounts[account.ID]
	if !ok || existing.UserID != account.UserID {
		return nil, domain.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	m.Accounts[account.ID] = account
	return account, nil
}

// Delete removes an account
func (m *MockAccountRepository) Delete(userID string, id uuid.UUID) error {
	if account, ok := m.Accounts[id]; ok && account.UserID == userID {
		delete(m.Accounts, id)
		return nil
	}
	return domain.ErrAccountNotFound
}

// HasReferences reports whether budgets, incomes or transactions reference the account
func (m *MockAccountRepository) HasReferences(userID string, id uuid.UUID) (bool, error) {
	return m.Refs[id], nil
}

// GetByIDForUpdateTx retrieves an account by ID inside a transaction
func (m *MockAccountRepository) GetByIDForUpdateTx(tx interface{}, userID string, id uuid.UUID) (*domain.Account, error) {
	return m.GetByID(userID, id)
}

// AdjustBalanceTx applies a balance delta inside a transaction
func (m *MockAccountRepository) AdjustBalanceTx(tx interface{}, userID string, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(delta)
	account.UpdatedAt = time.Now()
	return account, nil
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets    map[uuid.UUID]*domain.Budget
	CreateErr  error
	UpdateTxFn func(tx interface{}, budget *domain.Budget) (*domain.Budget, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[uuid.UUID]*domain.Budget)}
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.Budgets[budget.ID] = budget
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(userID string, id uuid.UUID) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok && budget.UserID == userID {
		return budget, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetActiveByUser retrieves all active budgets for a user
func (m *MockBudgetRepository) GetActiveByUser(userID string) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.IsActive {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Name < budgets[j].Name })
	return budgets, nil
}

// GetAllByUser retrieves all budgets for a user
func (m *MockBudgetRepository) GetAllByUser(userID string) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Name < budgets[j].Name })
	return budgets, nil
}

// CreateTx inserts a budget inside a transaction
func (m *MockBudgetRepository) CreateTx(tx interface{}, budget *domain.Budget) (*domain.Budget, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByIDForUpdateTx retrieves a budget by ID inside a transaction
func (m *MockBudgetRepository) GetByIDForUpdateTx(tx interface{}, userID string, id uuid.UUID) (*domain.Budget, error) {
	return m.GetByID(userID, id)
}

// UpdateTx updates a budget inside a transaction
func (m *MockBudgetRepository) UpdateTx(tx interface{}, budget *domain.Budget) (*domain.Budget, error) {
	if m.UpdateTxFn != nil {
		return m.UpdateTxFn(tx, budget)
	}
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID {
		return nil, domain.ErrBudgetNotFound
	}
	budget.UpdatedAt = time.Now()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetExpiredActiveForUpdateTx retrieves active budgets whose end date has passed
func (m *MockBudgetRepository) GetExpiredActiveForUpdateTx(tx interface{}, userID string, now time.Time) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID && budget.IsActive && budget.EndDate.Before(now) {
			budgets = append(budgets, budget)
		}
	}
	return budgets, nil
}

// DeactivateTx marks a budget inactive inside a transaction
func (m *MockBudgetRepository) DeactivateTx(tx interface{}, userID string, id uuid.UUID) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	budget.IsActive = false
	budget.UpdatedAt = time.Now()
	return nil
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[uuid.UUID]*domain.Category
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[uuid.UUID]*domain.Category)}
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(userID string, id uuid.UUID) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok && category.UserID == userID {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByName retrieves a category by name under a given parent
func (m *MockCategoryRepository) GetByName(userID string, name string, parentID *uuid.UUID) (*domain.Category, error) {
	for _, category := range m.Categories {
		if category.UserID != userID || category.Name != name {
			continue
		}
		if sameParent(category.ParentID, parentID) {
			return category, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GetAllByUser retrieves all categories for a user
func (m *MockCategoryRepository) GetAllByUser(userID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// Update updates an existing category
func (m *MockCategoryRepository) Update(category *domain.Category) (*domain.Category, error) {
	existing, ok := m.Categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return nil, domain.ErrCategoryNotFound
	}
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(userID string, id uuid.UUID) error {
	if category, ok := m.Categories[id]; ok && category.UserID == userID {
		delete(m.Categories, id)
		return nil
	}
	return domain.ErrCategoryNotFound
}

// HasChildren reports whether any category names this one as parent
func (m *MockCategoryRepository) HasChildren(userID string, id uuid.UUID) (bool, error) {
	for _, category := range m.Categories {
		if category.UserID == userID && category.ParentID != nil && *category.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

// Exists reports whether the category exists for the user
func (m *MockCategoryRepository) Exists(userID string, id uuid.UUID) (bool, error) {
	category, ok := m.Categories[id]
	return ok && category.UserID == userID, nil
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[uuid.UUID]*domain.Expense
	Stats    []*domain.EntryStat
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{Expenses: make(map[uuid.UUID]*domain.Expense)}
}

// AddExpense adds an expense to the mock repository (helper for tests)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	m.Expenses[expense.ID] = expense
}

// GetByID retrieves an expense by ID
func (m *MockExpenseRepository) GetByID(userID string, id uuid.UUID) (*domain.Expense, error) {
	if expense, ok := m.Expenses[id]; ok && expense.UserID == userID {
		return expense, nil
	}
	return nil, domain.ErrExpenseNotFound
}

// GetByUser retrieves a filtered page of expenses
func (m *MockExpenseRepository) GetByUser(userID string, filters *domain.EntryFilters) (*domain.PaginatedExpenses, error) {
	var expenses []*domain.Expense
	for _, expense := range m.Expenses {
		if expense.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && expense.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && expense.Date.After(*filters.EndDate) {
				continue
			}
			if filters.CategoryID != nil && expense.CategoryID != *filters.CategoryID {
				continue
			}
		}
		expenses = append(expenses, expense)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
	var page, perPage int32
	if filters != nil {
		page, perPage = filters.Page, filters.PerPage
	}
	return &domain.PaginatedExpenses{
		Expenses:   expenses,
		Pagination: domain.NewPagination(int64(len(expenses)), page, perPage),
	}, nil
}

// Update updates an existing expense
func (m *MockExpenseRepository) Update(expense *domain.Expense) (*domain.Expense, error) {
	existing, ok := m.Expenses[expense.ID]
	if !ok || existing.UserID != expense.UserID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.UpdatedAt = time.Now()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// SetReceiptURL stores or clears the receipt base path
func (m *MockExpenseRepository) SetReceiptURL(userID string, id uuid.UUID, receiptURL *string) error {
	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	expense.ReceiptURL = receiptURL
	return nil
}

// GetStats returns the configured aggregation buckets
func (m *MockExpenseRepository) GetStats(userID string, startDate, endDate time.Time) ([]*domain.EntryStat, error) {
	return m.Stats, nil
}

// CreateTx inserts an expense inside a transaction
func (m *MockExpenseRepository) CreateTx(tx interface{}, expense *domain.Expense) (*domain.Expense, error) {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// UpdateTx updates an expense inside a transaction
func (m *MockExpenseRepository) UpdateTx(tx interface{}, expense *domain.Expense) (*domain.Expense, error) {
	return m.Update(expense)
}

// DeleteTx removes an expense inside a transaction
func (m *MockExpenseRepository) DeleteTx(tx interface{}, userID string, id uuid.UUID) error {
	if expense, ok := m.Expenses[id]; ok && expense.UserID == userID {
		delete(m.Expenses, id)
		return nil
	}
	return domain.ErrExpenseNotFound
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	Incomes map[uuid.UUID]*domain.Income
	Stats   []*domain.EntryStat
	Monthly []*domain.MonthlyTotal
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{Incomes: make(map[uuid.UUID]*domain.Income)}
}

// AddIncome adds an income to the mock repository (helper for tests)
func (m *MockIncomeRepository) AddIncome(income *domain.Income) {
	m.Incomes[income.ID] = income
}

// GetByID retrieves an income by ID
func (m *MockIncomeRepository) GetByID(userID string, id uuid.UUID) (*domain.Income, error) {
	if income, ok := m.Incomes[id]; ok && income.UserID == userID {
		return income, nil
	}
	return nil, domain.ErrIncomeNotFound
}

// GetByUser retrieves a filtered page of incomes
func (m *MockIncomeRepository) GetByUser(userID string, filters *domain.EntryFilters) (*domain.PaginatedIncomes, error) {
	var incomes []*domain.Income
	for _, income := range m.Incomes {
		if income.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && income.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && income.Date.After(*filters.EndDate) {
				continue
			}
			if filters.CategoryID != nil && income.CategoryID != *filters.CategoryID {
				continue
			}
		}
		incomes = append(incomes, income)
	}
	sort.Slice(incomes, func(i, j int) bool { return incomes[i].Date.After(incomes[j].Date) })
	var page, perPage int32
	if filters != nil {
		page, perPage = filters.Page, filters.PerPage
	}
	return &domain.PaginatedIncomes{
		Incomes:    incomes,
		Pagination: domain.NewPagination(int64(len(incomes)), page, perPage),
	}, nil
}

// GetStats returns the configured aggregation buckets
func (m *MockIncomeRepository) GetStats(userID string, startDate, endDate time.Time) ([]*domain.EntryStat, error) {
	return m.Stats, nil
}

// GetMonthlyTotals returns the configured monthly totals
func (m *MockIncomeRepository) GetMonthlyTotals(userID string, year int) ([]*domain.MonthlyTotal, error) {
	return m.Monthly, nil
}

// CreateTx inserts an income inside a transaction
func (m *MockIncomeRepository) CreateTx(tx interface{}, income *domain.Income) (*domain.Income, error) {
	if income.ID == uuid.Nil {
		income.ID = uuid.New()
	}
	income.CreatedAt = time.Now()
	income.UpdatedAt = income.CreatedAt
	m.Incomes[income.ID] = income
	return income, nil
}

// UpdateTx updates an income inside a transaction
func (m *MockIncomeRepository) UpdateTx(tx interface{}, income *domain.Income) (*domain.Income, error) {
	existing, ok := m.Incomes[income.ID]
	if !ok || existing.UserID != income.UserID {
		return nil, domain.ErrIncomeNotFound
	}
	income.UpdatedAt = time.Now()
	m.Incomes[income.ID] = income
	return income, nil
}

// DeleteTx removes an income inside a transaction
func (m *MockIncomeRepository) DeleteTx(tx interface{}, userID string, id uuid.UUID) error {
	if income, ok := m.Incomes[id]; ok && income.UserID == userID {
		delete(m.Incomes, id)
		return nil
	}
	return domain.ErrIncomeNotFound
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	Stats        []*domain.TransactionStat
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[uuid.UUID]*domain.Transaction)}
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.Transactions[transaction.ID] = transaction
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(userID string, id uuid.UUID) (*domain.Transaction, error) {
	if transaction, ok := m.Transactions[id]; ok && transaction.UserID == userID {
		return transaction, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// GetByUser retrieves a filtered page of transactions
func (m *MockTransactionRepository) GetByUser(userID string, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var transactions []*domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && transaction.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && transaction.Date.After(*filters.EndDate) {
				continue
			}
			if filters.Type != nil && transaction.Type != *filters.Type {
				continue
			}
			if filters.AccountID != nil && transaction.AccountID != *filters.AccountID {
				continue
			}
		}
		transactions = append(transactions, transaction)
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].Date.After(transactions[j].Date) })
	var page, perPage int32
	if filters != nil {
		page, perPage = filters.Page, filters.PerPage
	}
	return &domain.PaginatedTransactions{
		Transactions: transactions,
		Pagination:   domain.NewPagination(int64(len(transactions)), page, perPage),
	}, nil
}

// GetByDateRange retrieves transactions within a date range, oldest first
func (m *MockTransactionRepository) GetByDateRange(userID string, startDate, endDate time.Time) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID {
			continue
		}
		if transaction.Date.Before(startDate) || transaction.Date.After(endDate) {
			continue
		}
		transactions = append(transactions, transaction)
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].Date.Before(transactions[j].Date) })
	return transactions, nil
}

// GetStats returns the configured aggregation buckets
func (m *MockTransactionRepository) GetStats(userID string, startDate, endDate time.Time) ([]*domain.TransactionStat, error) {
	return m.Stats, nil
}

// ExistsByAccount reports whether any transaction references the account
func (m *MockTransactionRepository) ExistsByAccount(userID string, accountID uuid.UUID) (bool, error) {
	for _, transaction := range m.Transactions {
		if transaction.UserID == userID && transaction.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

// CreateTx inserts a transaction inside a transaction
func (m *MockTransactionRepository) CreateTx(tx interface{}, transaction *domain.Transaction) (*domain.Transaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// DeleteTx removes a transaction inside a transaction
func (m *MockTransactionRepository) DeleteTx(tx interface{}, userID string, id uuid.UUID) error {
	if transaction, ok := m.Transactions[id]; ok && transaction.UserID == userID {
		delete(m.Transactions, id)
		return nil
	}
	return domain.ErrTransactionNotFound
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository
type MockNotificationRepository struct {
	Notifications []*domain.Notification
	CreateErr     error
}

// NewMockNotificationRepository creates a new MockNotificationRepository
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

// Create appends a notification
func (m *MockNotificationRepository) Create(notification *domain.Notification) (*domain.Notification, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now()
	m.Notifications = append(m.Notifications, notification)
	return notification, nil
}

// GetByUser retrieves a page of notifications, newest first
func (m *MockNotificationRepository) GetByUser(userID string, page, perPage int32) (*domain.PaginatedNotifications, error) {
	var notifications []*domain.Notification
	for _, notification := range m.Notifications {
		if notification.UserID == userID {
			notifications = append(notifications, notification)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return &domain.PaginatedNotifications{
		Notifications: notifications,
		Pagination:    domain.NewPagination(int64(len(notifications)), page, perPage),
	}, nil
}

// MarkRead marks a notification as read
func (m *MockNotificationRepository) MarkRead(userID string, id uuid.UUID) (*domain.Notification, error) {
	for _, notification := range m.Notifications {
		if notification.ID == id && notification.UserID == userID {
			notification.IsRead = true
			return notification, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

// MockReceiptRepository is an in-memory mock of storage.ReceiptRepository
type MockReceiptRepository struct {
	Objects   map[string][]byte
	UploadErr error
	DeleteErr error
}

// NewMockReceiptRepository creates a new MockReceiptRepository
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object bytes in memory
func (m *MockReceiptRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf.Bytes()
	return objectPath, nil
}

// Delete removes the object
func (m *MockReceiptRepository) Delete(ctx context.Context, objectPath string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake presigned URL for the object
func (m *MockReceiptRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://receipts.test/%s?expires=%d", objectPath, int64(expiry.Seconds())), nil
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	Events []PublishedEvent
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	UserID string
	Event  websocket.Event
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID string, event websocket.Event) {
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}
