package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Income is a dated earning entry credited to an account. Creating one
// increases the account balance; deleting it decreases it by the same
// amount. Both paths emit a notification.
type Income struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	AccountID   uuid.UUID       `json:"accountId"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MonthlyTotal is the income total for one month of a year.
type MonthlyTotal struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// PaginatedIncomes is one page of incomes plus pagination metadata.
type PaginatedIncomes struct {
	Incomes    []*Income  `json:"incomes"`
	Pagination Pagination `json:"pagination"`
}

type IncomeRepository interface {
	GetByID(userID string, id uuid.UUID) (*Income, error)
	GetByUser(userID string, filters *EntryFilters) (*PaginatedIncomes, error)
	GetStats(userID string, startDate, endDate time.Time) ([]*EntryStat, error)
	GetMonthlyTotals(userID string, year int) ([]*MonthlyTotal, error)

	// Transactional variants. tx must be a pgx.Tx.
	CreateTx(tx interface{}, income *Income) (*Income, error)
	UpdateTx(tx interface{}, income *Income) (*Income, error)
	DeleteTx(tx interface{}, userID string, id uuid.UUID) error
}
