package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxStarter matches pgxpool.Pool's transaction entry point. Services that
// move money hold one of these instead of the pool itself so tests can
// substitute a fake.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
