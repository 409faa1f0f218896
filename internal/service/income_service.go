package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeService handles income business logic. An income credits its account
// at creation and the credit is taken back when the income is deleted, both
// atomically with the row mutation. Notifications about either movement are
// best effort and sent after commit.
type IncomeService struct {
	pool            TxStarter
	incomeRepo      domain.IncomeRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
	notificationSvc *NotificationService
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(
	pool TxStarter,
	incomeRepo domain.IncomeRepository,
	accountRepo domain.AccountRepository,
	categoryRepo domain.CategoryRepository,
	notificationSvc *NotificationService,
) *IncomeService {
	return &IncomeService{
		pool:            pool,
		incomeRepo:      incomeRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		notificationSvc: notificationSvc,
	}
}

// CreateIncomeInput carries the fields for creating an income
type CreateIncomeInput struct {
	Title       string
	Amount      decimal.Decimal
	CategoryID  uuid.UUID
	AccountID   uuid.UUID
	Description *string
	Date        time.Time
}

// CreateIncome inserts the income and credits its account in one transaction
func (s *IncomeService) CreateIncome(userID string, input CreateIncomeInput) (*domain.Income, error) {
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

	if _, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, input.AccountID); err != nil {
		return nil, err
	}

	income, err := s.incomeRepo.CreateTx(tx, &domain.Income{
		UserID:      userID,
		Title:       title,
		Amount:      input.Amount,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		Description: input.Description,
		Date:        input.Date,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, input.AccountID, input.Amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.notificationSvc != nil {
		id := income.ID
		message := fmt.Sprintf("Income %q of %s recorded", income.Title, income.Amount.StringFixed(2))
		s.notificationSvc.Notify(userID, domain.NotificationTypeIncome, message, &id)
	}

	return income, nil
}

// ListIncomes retrieves a filtered, paginated list of the user's incomes
func (s *IncomeService) ListIncomes(userID string, filters *domain.EntryFilters) (*domain.PaginatedIncomes, error) {
	if filters == nil {
		filters = &domain.EntryFilters{}
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, domain.ErrDateRangeInvalid
	}
	return s.incomeRepo.GetByUser(userID, filters)
}

// GetIncomeByID retrieves a single income
func (s *IncomeService) GetIncomeByID(userID string, id uuid.UUID) (*domain.Income, error) {
	return s.incomeRepo.GetByID(userID, id)
}

// UpdateIncomeInput carries the updatable income fields; nil means
// "leave unchanged"
type UpdateIncomeInput struct {
	Title       *string
	Amount      *decimal.Decimal
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	Description *string
	Date        *time.Time
}

// UpdateIncome updates an income. Amount or account changes re-book the
// credit: the old amount leaves the old account and the new amount enters
// the new one, in a single transaction. Taking a credit back fails with
// InsufficientFunds if the account has since dropped below it.
func (s *IncomeService) UpdateIncome(userID string, id uuid.UUID, input UpdateIncomeInput) (*domain.Income, error) {
	income, err := s.incomeRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	oldAmount := income.Amount
	oldAccountID := income.AccountID

	if input.Title != nil {
		title, err := validateEntryTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		income.Title = title
	}
	if input.CategoryID != nil {
		exists, err := s.categoryRepo.Exists(userID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrCategoryNotFound
		}
		income.CategoryID = *input.CategoryID
	}
	if input.Description != nil {
		income.Description = input.Description
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, domain.ErrDateRequired
		}
		income.Date = *input.Date
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, domain.ErrAmountInvalid
		}
		income.Amount = *input.Amount
	}
	if input.AccountID != nil {
		income.AccountID = *input.AccountID
	}

	rebook := !income.Amount.Equal(oldAmount) || income.AccountID != oldAccountID

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if rebook {
		if income.AccountID == oldAccountID {
			delta := income.Amount.Sub(oldAmount)
			account, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, oldAccountID)
			if err != nil {
				return nil, err
			}
			if delta.IsNegative() && account.Balance.Add(delta).IsNegative() {
				return nil, domain.ErrInsufficientFunds
			}
			if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, oldAccountID, delta); err != nil {
				return nil, err
			}
		} else {
			oldAccount, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, oldAccountID)
			if err != nil {
				return nil, err
			}
			if oldAccount.Balance.LessThan(oldAmount) {
				return nil, domain.ErrInsufficientFunds
			}
			if _, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, income.AccountID); err != nil {
				return nil, err
			}
			if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, oldAccountID, oldAmount.Neg()); err != nil {
				return nil, err
			}
			if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, income.AccountID, income.Amount); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.incomeRepo.UpdateTx(tx, income)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteIncome removes an income and debits its account by the income
// amount in one transaction. Fails with InsufficientFunds when the account
// can no longer cover the credit being taken back.
func (s *IncomeService) DeleteIncome(userID string, id uuid.UUID) error {
	income, err := s.incomeRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, income.AccountID)
	if err != nil {
		return err
	}
	if account.Balance.LessThan(income.Amount) {
		return domain.ErrInsufficientFunds
	}

	if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, income.AccountID, income.Amount.Neg()); err != nil {
		return err
	}

	if err := s.incomeRepo.DeleteTx(tx, userID, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if s.notificationSvc != nil {
		incomeID := income.ID
		message := fmt.Sprintf("Income %q of %s deleted", income.Title, income.Amount.StringFixed(2))
		s.notificationSvc.Notify(userID, domain.NotificationTypeIncomeDeleted, message, &incomeID)
	}

	return nil
}

// GetIncomeStats aggregates the user's incomes in [startDate, endDate] by
// year, month and category
func (s *IncomeService) GetIncomeStats(userID string, startDate, endDate time.Time) ([]*domain.EntryStat, error) {
	if startDate.IsZero() || endDate.IsZero() || endDate.Before(startDate) {
		return nil, domain.ErrDateRangeInvalid
	}
	return s.incomeRepo.GetStats(userID, startDate, endDate)
}

// GetMonthlyIncome returns per-month income totals for a year
func (s *IncomeService) GetMonthlyIncome(userID string, year int) ([]*domain.MonthlyTotal, error) {
	if year < 1970 || year > 9999 {
		return nil, domain.ErrDateRangeInvalid
	}
	return s.incomeRepo.GetMonthlyTotals(userID, year)
}
