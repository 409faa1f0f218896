package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget lifecycle business logic. A budget reserves
// funds from its account at creation and releases the unspent remainder when
// it expires or is deleted. All balance movements happen inside a single pgx
// transaction with the affected rows locked.
type BudgetService struct {
	pool            TxStarter
	budgetRepo      domain.BudgetRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
	notificationSvc *NotificationService
	eventPublisher  websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	pool TxStarter,
	budgetRepo domain.BudgetRepository,
	accountRepo domain.AccountRepository,
	categoryRepo domain.CategoryRepository,
	notificationSvc *NotificationService,
) *BudgetService {
	return &BudgetService{
		pool:            pool,
		budgetRepo:      budgetRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		notificationSvc: notificationSvc,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateBudgetInput carries the fields for creating a budget
type CreateBudgetInput struct {
	Name        string
	Amount      decimal.Decimal
	Limit       decimal.Decimal
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Description *string
	StartDate   time.Time
	EndDate     time.Time
}

// CreateBudget reserves input.Amount from the account and creates the budget.
// The debit and the insert commit together; if the account cannot cover the
// amount nothing changes.
func (s *BudgetService) CreateBudget(userID string, input CreateBudgetInput) (*domain.Budget, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrAmountInvalid
	}
	if input.Limit.IsNegative() {
		return nil, domain.ErrAmountInvalid
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, domain.ErrDateRangeInvalid
	}

	if input.CategoryID != nil {
		exists, err := s.categoryRepo.Exists(userID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrCategoryNotFound
		}
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Balance.LessThan(input.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, input.AccountID, input.Amount.Neg()); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.CreateTx(tx, &domain.Budget{
		UserID:      userID,
		Name:        name,
		Amount:      input.Amount,
		Limit:       input.Limit,
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return budget, nil
}

// GetActiveBudgets lists the user's active budgets, expiring overdue ones
// first so the listing never shows a budget past its end date as active.
func (s *BudgetService) GetActiveBudgets(userID string) ([]*domain.Budget, error) {
	if _, err := s.ExpireBudgets(userID); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetActiveByUser(userID)
}

// GetAllBudgets lists all the user's budgets, active and inactive
func (s *BudgetService) GetAllBudgets(userID string) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(userID)
}

// GetBudgetByID retrieves a single budget
func (s *BudgetService) GetBudgetByID(userID string, id uuid.UUID) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(userID, id)
}

// RecordSpendingTx increments the budget's spending inside the caller's
// transaction. The budget row must not yet be locked. Returns the updated
// budget and whether the alert limit was crossed by this booking; the caller
// emits the alert notification after its transaction commits.
func (s *BudgetService) RecordSpendingTx(tx interface{}, userID string, budgetID uuid.UUID, amount decimal.Decimal) (*domain.Budget, bool, error) {
	if !amount.IsPositive() {
		return nil, false, domain.ErrAmountInvalid
	}

	budget, err := s.budgetRepo.GetByIDForUpdateTx(tx, userID, budgetID)
	if err != nil {
		return nil, false, err
	}
	if !budget.IsActive {
		return nil, false, domain.ErrBudgetNotFound
	}

	newSpending := budget.CurrentSpending.Add(amount)
	if newSpending.GreaterThan(budget.Amount) {
		return nil, false, domain.ErrBudgetLimitExceeded
	}

	budget.CurrentSpending = newSpending

	alerted := false
	if !budget.NotificationsSent && budget.Limit.IsPositive() && newSpending.GreaterThanOrEqual(budget.Limit) {
		budget.NotificationsSent = true
		alerted = true
	}

	updated, err := s.budgetRepo.UpdateTx(tx, budget)
	if err != nil {
		return nil, false, err
	}
	return updated, alerted, nil
}

// ReverseSpendingTx decrements the budget's spending inside the caller's
// transaction, clamping at zero. Reversals on inactive budgets are accepted:
// the expense being removed was booked while the budget was still active.
func (s *BudgetService) ReverseSpendingTx(tx interface{}, userID string, budgetID uuid.UUID, amount decimal.Decimal) (*domain.Budget, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrAmountInvalid
	}

	budget, err := s.budgetRepo.GetByIDForUpdateTx(tx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	newSpending := budget.CurrentSpending.Sub(amount)
	if newSpending.IsNegative() {
		newSpending = decimal.Zero
	}
	budget.CurrentSpending = newSpending

	return s.budgetRepo.UpdateTx(tx, budget)
}

// RecordSpending books spending against a budget in its own transaction
func (s *BudgetService) RecordSpending(userID string, budgetID uuid.UUID, amount decimal.Decimal) (*domain.Budget, error) {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	budget, alerted, err := s.RecordSpendingTx(tx, userID, budgetID, amount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if alerted {
		s.notifyBudgetAlert(budget)
	}

	return budget, nil
}

func (s *BudgetService) notifyBudgetAlert(budget *domain.Budget) {
	if s.notificationSvc == nil {
		return
	}
	id := budget.ID
	message := fmt.Sprintf("Budget %q has reached its alert limit of %s", budget.Name, budget.Limit.StringFixed(2))
	s.notificationSvc.Notify(budget.UserID, domain.NotificationTypeBudgetAlert, message, &id)
}

// UpdateBudgetInput carries the updatable budget fields; nil means
// "leave unchanged"
type UpdateBudgetInput struct {
	Name        *string
	Amount      *decimal.Decimal
	Limit       *decimal.Decimal
	Description *string
	EndDate     *time.Time
}

// UpdateBudget updates an active budget. An amount change moves the
// difference between the budget and its account: raising the amount debits
// the account further, lowering it refunds the account. The new amount must
// still cover what has already been spent.
func (s *BudgetService) UpdateBudget(userID string, id uuid.UUID, input UpdateBudgetInput) (*domain.Budget, error) {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	budget, err := s.budgetRepo.GetByIDForUpdateTx(tx, userID, id)
	if err != nil {
		return nil, err
	}
	if !budget.IsActive {
		return nil, domain.ErrBudgetInactive
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxAccountNameLength {
			return nil, domain.ErrNameTooLong
		}
		budget.Name = name
	}
	if input.Description != nil {
		budget.Description = input.Description
	}
	if input.EndDate != nil {
		if !input.EndDate.After(budget.StartDate) {
			return nil, domain.ErrDateRangeInvalid
		}
		budget.EndDate = *input.EndDate
	}
	if input.Limit != nil {
		if input.Limit.IsNegative() {
			return nil, domain.ErrAmountInvalid
		}
		budget.Limit = *input.Limit
	}

	if input.Amount != nil {
		newAmount := *input.Amount
		if !newAmount.IsPositive() {
			return nil, domain.ErrAmountInvalid
		}
		if newAmount.LessThan(budget.CurrentSpending) {
			return nil, domain.ErrAmountBelowSpending
		}

		delta := newAmount.Sub(budget.Amount)
		if !delta.IsZero() {
			account, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, budget.AccountID)
			if err != nil {
				return nil, err
			}
			if delta.IsPositive() && account.Balance.LessThan(delta) {
				return nil, domain.ErrInsufficientFunds
			}
			if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, budget.AccountID, delta.Neg()); err != nil {
				return nil, err
			}
		}
		budget.Amount = newAmount
	}

	updated, err := s.budgetRepo.UpdateTx(tx, budget)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// ExpireBudgets deactivates every active budget past its end date and
// credits the unspent remainder back to its account. Safe to call
// repeatedly: an already expired budget is inactive and never picked up
// again.
func (s *BudgetService) ExpireBudgets(userID string) ([]*domain.Budget, error) {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	expired, err := s.budgetRepo.GetExpiredActiveForUpdateTx(tx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, tx.Commit(ctx)
	}

	for _, budget := range expired {
		refund := budget.Remaining()
		if refund.IsPositive() {
			if _, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, budget.AccountID); err != nil {
				return nil, err
			}
			if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, budget.AccountID, refund); err != nil {
				return nil, err
			}
		}
		if err := s.budgetRepo.DeactivateTx(tx, userID, budget.ID); err != nil {
			return nil, err
		}
		budget.IsActive = false
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for _, budget := range expired {
		s.publishEvent(userID, websocket.BudgetExpired(budget))
	}

	return expired, nil
}

// DeleteBudget releases an active budget: the unspent remainder goes back to
// the account and the budget is deactivated. Deleting an already inactive
// budget is a no-op so retries always succeed.
func (s *BudgetService) DeleteBudget(userID string, id uuid.UUID) error {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	budget, err := s.budgetRepo.GetByIDForUpdateTx(tx, userID, id)
	if err != nil {
		return err
	}
	if !budget.IsActive {
		return tx.Commit(ctx)
	}

	refund := budget.Remaining()
	if refund.IsPositive() {
		if _, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, budget.AccountID); err != nil {
			return err
		}
		if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, budget.AccountID, refund); err != nil {
			return err
		}
	}

	if err := s.budgetRepo.DeactivateTx(tx, userID, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
