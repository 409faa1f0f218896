package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a dated spending entry booked against a budget. Creating one
// increases the budget's current spending; deleting it reverses that.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	BudgetID    uuid.UUID       `json:"budgetId"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	ReceiptURL  *string         `json:"receiptUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// EntryFilters narrows expense/income list queries. Zero values mean
// "no filter". Page/PerPage control pagination.
type EntryFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uuid.UUID
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Page       int32
	PerPage    int32
}

// EntryStat is one (year, month, category) aggregation bucket.
type EntryStat struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	CategoryID uuid.UUID       `json:"categoryId"`
	Total      decimal.Decimal `json:"totalAmount"`
	Count      int64           `json:"count"`
	Average    decimal.Decimal `json:"avgAmount"`
}

// PaginatedExpenses is one page of expenses plus pagination metadata.
type PaginatedExpenses struct {
	Expenses   []*Expense `json:"expenses"`
	Pagination Pagination `json:"pagination"`
}

type ExpenseRepository interface {
	GetByID(userID string, id uuid.UUID) (*Expense, error)
	GetByUser(userID string, filters *EntryFilters) (*PaginatedExpenses, error)
	Update(expense *Expense) (*Expense, error)
	SetReceiptURL(userID string, id uuid.UUID, receiptURL *string) error
	GetStats(userID string, startDate, endDate time.Time) ([]*EntryStat, error)

	// Transactional variants. tx must be a pgx.Tx.
	CreateTx(tx interface{}, expense *Expense) (*Expense, error)
	UpdateTx(tx interface{}, expense *Expense) (*Expense, error)
	DeleteTx(tx interface{}, userID string, id uuid.UUID) error
}
