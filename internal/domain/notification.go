package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the financial operations.
const (
	NotificationTypeIncome        = "income"
	NotificationTypeIncomeDeleted = "income_deleted"
	NotificationTypeBudgetAlert   = "budget_alert"
)

// Notification is an append-only user-facing event record; only the IsRead
// flag is ever updated.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"isRead"`
	RelatedID *uuid.UUID `json:"relatedId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PaginatedNotifications is one page of notifications plus pagination
// metadata, newest first.
type PaginatedNotifications struct {
	Notifications []*Notification `json:"notifications"`
	Pagination    Pagination      `json:"pagination"`
}

type NotificationRepository interface {
	Create(notification *Notification) (*Notification, error)
	GetByUser(userID string, page, perPage int32) (*PaginatedNotifications, error)
	MarkRead(userID string, id uuid.UUID) (*Notification, error)
}
