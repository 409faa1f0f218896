package postgres

import (
	"context"
	"fmt"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, user_id, name, type, balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		id        pgtype.UUID
		a         domain.Account
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &a.UserID, &a.Name, &a.Type, &balance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.ID = uuidFromPg(id)
	a.Balance = pgNumericToDecimal(balance)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return &a, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()

	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, user_id, name, type, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		pgUUID(uuid.New()), account.UserID, account.Name, account.Type, balance)

	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountNameTaken
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an account by its ID for a user
func (r *AccountRepository) GetByID(userID string, id uuid.UUID) (*domain.Account, error) {
	return r.getByID(context.Background(), r.pool, userID, id, false)
}

func (r *AccountRepository) getByID(ctx context.Context, q dbtx, userID string, id uuid.UUID, forUpdate bool) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	account, err := scanAccount(q.QueryRow(ctx, query, userID, pgUUID(id)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetByName retrieves an account by name for a user
func (r *AccountRepository) GetByName(userID string, name string) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND name = $2`,
		userID, name)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByUser retrieves all accounts for a user sorted by name
func (r *AccountRepository) GetAllByUser(userID string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY name`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update updates an account's name and type
func (r *AccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE accounts SET name = $3, type = $4, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+accountColumns,
		account.UserID, pgUUID(account.ID), account.Name, account.Type)

	updated, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountNameTaken
		}
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes an account
func (r *AccountRepository) Delete(userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM accounts WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// HasReferences reports whether active budgets or transactions still point
// at the account.
func (r *AccountRepository) HasReferences(userID string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(), `
		SELECT EXISTS (
			SELECT 1 FROM budgets WHERE user_id = $1 AND account_id = $2 AND is_active
			UNION ALL
			SELECT 1 FROM transactions WHERE user_id = $1 AND account_id = $2
			UNION ALL
			SELECT 1 FROM incomes WHERE user_id = $1 AND account_id = $2
		)`,
		userID, pgUUID(id)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetByIDForUpdateTx retrieves an account inside tx with its row locked
func (r *AccountRepository) GetByIDForUpdateTx(tx interface{}, userID string, id uuid.UUID) (*domain.Account, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.getByID(context.Background(), pgxTx, userID, id, true)
}

// AdjustBalanceTx applies delta to the account balance inside tx. This is
// the sole balance mutation path; callers hold the row lock via
// GetByIDForUpdateTx before deciding on the delta.
func (r *AccountRepository) AdjustBalanceTx(tx interface{}, userID string, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	num, err := decimalToPgNumeric(delta)
	if err != nil {
		return nil, fmt.Errorf("invalid delta: %w", err)
	}

	row := pgxTx.QueryRow(context.Background(), `
		UPDATE accounts SET balance = balance + $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+accountColumns,
		userID, pgUUID(id), num)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
