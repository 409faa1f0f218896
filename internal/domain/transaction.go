package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a unifying ledger entry: creating one adjusts the account
// balance by +amount (income) or -amount (expense); deleting one reverses
// the adjustment.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	AccountID   uuid.UUID       `json:"accountId"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	AccountName  string  `json:"accountName,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
}

// BalanceDelta returns the signed effect of the transaction on its account.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Type == TransactionTypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// TransactionFilters narrows transaction list queries.
type TransactionFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *TransactionType
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Page       int32
	PerPage    int32
}

// PaginatedTransactions is one page of transactions plus pagination metadata.
type PaginatedTransactions struct {
	Transactions []*Transaction `json:"transactions"`
	Pagination   Pagination     `json:"pagination"`
}

// TransactionStat is one (type, year, month) aggregation bucket.
type TransactionStat struct {
	Type  TransactionType `json:"type"`
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"totalAmount"`
	Count int64           `json:"count"`
}

type TransactionRepository interface {
	GetByID(userID string, id uuid.UUID) (*Transaction, error)
	GetByUser(userID string, filters *TransactionFilters) (*PaginatedTransactions, error)
	GetByDateRange(userID string, startDate, endDate time.Time) ([]*Transaction, error)
	GetStats(userID string, startDate, endDate time.Time) ([]*TransactionStat, error)
	ExistsByAccount(userID string, accountID uuid.UUID) (bool, error)

	// Transactional variants. tx must be a pgx.Tx.
	CreateTx(tx interface{}, transaction *Transaction) (*Transaction, error)
	DeleteTx(tx interface{}, userID string, id uuid.UUID) error
}
