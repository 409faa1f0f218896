package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the balance-bearing ledger entity. Balance is mutated only
// through AccountRepository.AdjustBalanceTx inside the transaction of the
// operation that triggered the change.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(userID string, id uuid.UUID) (*Account, error)
	GetByName(userID string, name string) (*Account, error)
	GetAllByUser(userID string) ([]*Account, error)
	Update(account *Account) (*Account, error)
	Delete(userID string, id uuid.UUID) error
	HasReferences(userID string, id uuid.UUID) (bool, error)

	// Transactional variants. tx must be a pgx.Tx.
	GetByIDForUpdateTx(tx interface{}, userID string, id uuid.UUID) (*Account, error)
	AdjustBalanceTx(tx interface{}, userID string, id uuid.UUID, delta decimal.Decimal) (*Account, error)
}
