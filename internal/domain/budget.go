package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget reserves funds from an account for a period of time. Lifecycle is
// active -> inactive, terminal; an inactive budget is never updated again.
//
// Amount is the total reservation and the hard ceiling for spending. Limit
// is the alert threshold: crossing it emits a one-time budget_alert
// notification tracked by NotificationsSent.
type Budget struct {
	ID                uuid.UUID       `json:"id"`
	UserID            string          `json:"userId"`
	Name              string          `json:"name"`
	Amount            decimal.Decimal `json:"amount"`
	Limit             decimal.Decimal `json:"limit"`
	CurrentSpending   decimal.Decimal `json:"currentSpending"`
	AccountID         uuid.UUID       `json:"accountId"`
	CategoryID        *uuid.UUID      `json:"categoryId,omitempty"`
	Description       *string         `json:"description,omitempty"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           time.Time       `json:"endDate"`
	NotificationsSent bool            `json:"notificationsSent"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`

	// Joined display names, populated on reads.
	AccountName  string  `json:"accountName,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
}

// Remaining returns the unspent part of the reservation.
func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.CurrentSpending)
}

type BudgetRepository interface {
	GetByID(userID string, id uuid.UUID) (*Budget, error)
	GetActiveByUser(userID string) ([]*Budget, error)
	GetAllByUser(userID string) ([]*Budget, error)

	// Transactional variants. tx must be a pgx.Tx.
	CreateTx(tx interface{}, budget *Budget) (*Budget, error)
	GetByIDForUpdateTx(tx interface{}, userID string, id uuid.UUID) (*Budget, error)
	UpdateTx(tx interface{}, budget *Budget) (*Budget, error)
	GetExpiredActiveForUpdateTx(tx interface{}, userID string, now time.Time) ([]*Budget, error)
	DeactivateTx(tx interface{}, userID string, id uuid.UUID) error
}
