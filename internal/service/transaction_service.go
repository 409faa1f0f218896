package service

import (
	"context"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles the unified transaction ledger. Creating a
// transaction moves its signed amount on the account; deleting it moves the
// amount back. Row and balance always commit together.
type TransactionService struct {
	pool            TxStarter
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	pool TxStarter,
	transactionRepo domain.TransactionRepository,
	accountRepo domain.AccountRepository,
	categoryRepo domain.CategoryRepository,
) *TransactionService {
	return &TransactionService{
		pool:            pool,
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
	}
}

// CreateTransactionInput carries the fields for creating a transaction
type CreateTransactionInput struct {
	Amount      decimal.Decimal
	Type        domain.TransactionType
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Description *string
	Date        time.Time
}

// CreateTransaction inserts the transaction and applies its balance effect
// in one transaction. An expense fails with InsufficientFunds rather than
// driving the account negative.
func (s *TransactionService) CreateTransaction(userID string, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrAmountInvalid
	}
	if !domain.ValidTransactionType(input.Type) {
		return nil, domain.ErrInvalidType
	}
	if input.Date.IsZero() {
		return nil, domain.ErrDateRequired
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

	transaction := &domain.Transaction{
		UserID:      userID,
		Amount:      input.Amount,
		Type:        input.Type,
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Date:        input.Date,
	}

	delta := transaction.BalanceDelta()
	if delta.IsNegative() && account.Balance.Add(delta).IsNegative() {
		return nil, domain.ErrInsufficientFunds
	}

	created, err := s.transactionRepo.CreateTx(tx, transaction)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, input.AccountID, delta); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

// ListTransactions retrieves a filtered, paginated list of the user's
// transactions
func (s *TransactionService) ListTransactions(userID string, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, domain.ErrDateRangeInvalid
	}
	if filters.Type != nil && !domain.ValidTransactionType(*filters.Type) {
		return nil, domain.ErrInvalidType
	}
	return s.transactionRepo.GetByUser(userID, filters)
}

// GetTransactionByID retrieves a single transaction
func (s *TransactionService) GetTransactionByID(userID string, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

// DeleteTransaction removes a transaction and reverses its balance effect
// in one transaction. Reversing an income debits the account, which fails
// with InsufficientFunds when the balance no longer covers it.
func (s *TransactionService) DeleteTransaction(userID string, id uuid.UUID) error {
	transaction, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := s.accountRepo.GetByIDForUpdateTx(tx, userID, transaction.AccountID)
	if err != nil {
		return err
	}

	reversal := transaction.BalanceDelta().Neg()
	if reversal.IsNegative() && account.Balance.Add(reversal).IsNegative() {
		return domain.ErrInsufficientFunds
	}

	if err := s.transactionRepo.DeleteTx(tx, userID, id); err != nil {
		return err
	}

	if _, err := s.accountRepo.AdjustBalanceTx(tx, userID, transaction.AccountID, reversal); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetTransactionStats aggregates the user's transactions in
// [startDate, endDate] by type, year and month
func (s *TransactionService) GetTransactionStats(userID string, startDate, endDate time.Time) ([]*domain.TransactionStat, error) {
	if startDate.IsZero() || endDate.IsZero() || endDate.Before(startDate) {
		return nil, domain.ErrDateRangeInvalid
	}
	return s.transactionRepo.GetStats(userID, startDate, endDate)
}
