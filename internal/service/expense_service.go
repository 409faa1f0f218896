package service

import (
	"context"
	"strings"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense business logic. Every expense is booked
// against a budget: creating an expense records the amount as budget
// spending, deleting reverses it, and an amount change re-books the
// difference. Booking and row mutation commit in the same transaction so an
// expense row never exists without its spending being counted.
type ExpenseService struct {
	pool         TxStarter
	expenseRepo  domain.ExpenseRepository
	categoryRepo domain.CategoryRepository
	budgetSvc    *BudgetService
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	pool TxStarter,
	expenseRepo domain.ExpenseRepository,
	categoryRepo domain.CategoryRepository,
	budgetSvc *BudgetService,
) *ExpenseService {
	return &ExpenseService{
		pool:         pool,
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		budgetSvc:    budgetSvc,
	}
}

// CreateExpenseInput carries the fields for creating an expense
type CreateExpenseInput struct {
	Title       string
	Amount      decimal.Decimal
	CategoryID  uuid.UUID
	BudgetID    uuid.UUID
	Description *string
	Date        time.Time
}

func validateEntryTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.ErrTitleRequired
	}
	if len(title) > domain.MaxTitleLength {
		return "", domain.ErrNameTooLong
	}
	return title, nil
}

// CreateExpense records spending against the budget and inserts the expense
// in one transaction. If the booking would push the budget past its amount
// the whole operation fails and no expense row is written.
func (s *ExpenseService) CreateExpense(userID string, input CreateExpenseInput) (*domain.Expense, error) {
	title, err := validateEntryTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrAmountInvalid
	}
	if input.Date.IsZero() {
		return nil, domain.ErrDateRequired
	}

	exists, err := s.categoryRepo.Exists(userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrCategoryNotFound
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	budget, alerted, err := s.budgetSvc.RecordSpendingTx(tx, userID, input.BudgetID, input.Amount)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.CreateTx(tx, &domain.Expense{
		UserID:      userID,
		Title:       title,
		Amount:      input.Amount,
		CategoryID:  input.CategoryID,
		BudgetID:    input.BudgetID,
		Description: input.Description,
		Date:        input.Date,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if alerted {
		s.budgetSvc.notifyBudgetAlert(budget)
	}

	return expense, nil
}

// ListExpenses retrieves a filtered, paginated list of the user's expenses
func (s *ExpenseService) ListExpenses(userID string, filters *domain.EntryFilters) (*domain.PaginatedExpenses, error) {
	if filters == nil {
		filters = &domain.EntryFilters{}
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, domain.ErrDateRangeInvalid
	}
	return s.expenseRepo.GetByUser(userID, filters)
}

// GetExpenseByID retrieves a single expense
func (s *ExpenseService) GetExpenseByID(userID string, id uuid.UUID) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(userID, id)
}

// UpdateExpenseInput carries the updatable expense fields; nil means
// "leave unchanged". The budget reference is fixed at creation.
type UpdateExpenseInput struct {
	Title       *string
	Amount      *decimal.Decimal
	CategoryID  *uuid.UUID
	Description *string
	Date        *time.Time
}

// UpdateExpense updates an expense. An amount change re-books the difference
// against the budget atomically with the row update.
func (s *ExpenseService) UpdateExpense(userID string, id uuid.UUID, input UpdateExpenseInput) (*domain.Expense, error) {
	expense, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateEntryTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		expense.Title = title
	}
	if input.CategoryID != nil {
		exists, err := s.categoryRepo.Exists(userID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrCategoryNotFound
		}
		expense.CategoryID = *input.CategoryID
	}
	if input.Description != nil {
		expense.Description = input.Description
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, domain.ErrDateRequired
		}
		expense.Date = *input.Date
	}

	delta := decimal.Zero
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, domain.ErrAmountInvalid
		}
		delta = input.Amount.Sub(expense.Amount)
		expense.Amount = *input.Amount
	}

	if delta.IsZero() {
		return s.expenseRepo.Update(expense)
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		budget  *domain.Budget
		alerted bool
	)
	if delta.IsPositive() {
		budget, alerted, err = s.budgetSvc.RecordSpendingTx(tx, userID, expense.BudgetID, delta)
	} else {
		_, err = s.budgetSvc.ReverseSpendingTx(tx, userID, expense.BudgetID, delta.Neg())
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.expenseRepo.UpdateTx(tx, expense)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if alerted {
		s.budgetSvc.notifyBudgetAlert(budget)
	}

	return updated, nil
}

// DeleteExpense removes an expense and reverses its budget booking in one
// transaction
func (s *ExpenseService) DeleteExpense(userID string, id uuid.UUID) error {
	expense, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.budgetSvc.ReverseSpendingTx(tx, userID, expense.BudgetID, expense.Amount); err != nil {
		return err
	}

	if err := s.expenseRepo.DeleteTx(tx, userID, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetExpenseStats aggregates the user's expenses in [startDate, endDate]
// by year, month and category
func (s *ExpenseService) GetExpenseStats(userID string, startDate, endDate time.Time) ([]*domain.EntryStat, error) {
	if startDate.IsZero() || endDate.IsZero() || endDate.Before(startDate) {
		return nil, domain.ErrDateRangeInvalid
	}
	return s.expenseRepo.GetStats(userID, startDate, endDate)
}
