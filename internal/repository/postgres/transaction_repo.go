package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	t.id, t.user_id, t.amount, t.type, t.account_id, t.category_id,
	t.description, t.date, t.created_at, t.updated_at,
	a.name AS account_name, c.name AS category_name`

const transactionJoins = `
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		id           pgtype.UUID
		t            domain.Transaction
		amount       pgtype.Numeric
		accountID    pgtype.UUID
		categoryID   pgtype.UUID
		description  pgtype.Text
		date         pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		categoryName pgtype.Text
	)
	err := row.Scan(&id, &t.UserID, &amount, &t.Type, &accountID, &categoryID,
		&description, &date, &createdAt, &updatedAt, &t.AccountName, &categoryName)
	if err != nil {
		return nil, err
	}
	t.ID = uuidFromPg(id)
	t.Amount = pgNumericToDecimal(amount)
	t.AccountID = uuidFromPg(accountID)
	t.CategoryID = uuidPtrFromPg(categoryID)
	t.Description = textPtrFromPg(description)
	t.Date = date.Time
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	t.CategoryName = textPtrFromPg(categoryName)
	return &t, nil
}

// GetByID retrieves a transaction by ID for a user
func (r *TransactionRepository) GetByID(userID string, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+transactionColumns+transactionJoins+` WHERE t.user_id = $1 AND t.id = $2`,
		userID, pgUUID(id))

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// GetByUser retrieves transactions for a user with filters and pagination,
// sorted by date descending.
func (r *TransactionRepository) GetByUser(userID string, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	args := []any{userID}
	clause := ""
	if filters != nil {
		if filters.StartDate != nil {
			args = append(args, *filters.StartDate)
			clause += fmt.Sprintf(" AND t.date >= $%d", len(args))
		}
		if filters.EndDate != nil {
			args = append(args, *filters.EndDate)
			clause += fmt.Sprintf(" AND t.date <= $%d", len(args))
		}
		if filters.Type != nil {
			args = append(args, string(*filters.Type))
			clause += fmt.Sprintf(" AND t.type = $%d", len(args))
		}
		if filters.AccountID != nil {
			args = append(args, pgUUID(*filters.AccountID))
			clause += fmt.Sprintf(" AND t.account_id = $%d", len(args))
		}
		if filters.CategoryID != nil {
			args = append(args, pgUUID(*filters.CategoryID))
			clause += fmt.Sprintf(" AND t.category_id = $%d", len(args))
		}
		if filters.MinAmount != nil {
			args = append(args, filters.MinAmount.String())
			clause += fmt.Sprintf(" AND t.amount >= $%d", len(args))
		}
		if filters.MaxAmount != nil {
			args = append(args, filters.MaxAmount.String())
			clause += fmt.Sprintf(" AND t.amount <= $%d", len(args))
		}
	}

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM transactions t WHERE t.user_id = $1`+clause, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	var page, perPage int32 = 1, domain.DefaultPageSize
	if filters != nil {
		page, perPage = normalizePage(filters.Page, filters.PerPage)
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s %s WHERE t.user_id = $1%s
		ORDER BY t.date DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, transactionJoins, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedTransactions{
		Transactions: transactions,
		Pagination:   domain.NewPagination(total, page, perPage),
	}, nil
}

// GetByDateRange retrieves every transaction in [startDate, endDate]
func (r *TransactionRepository) GetByDateRange(userID string, startDate, endDate time.Time) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+transactionColumns+transactionJoins+`
		 WHERE t.user_id = $1 AND t.date >= $2 AND t.date <= $3
		 ORDER BY t.date DESC`,
		userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

// GetStats aggregates transactions by (type, year, month) within a range
func (r *TransactionRepository) GetStats(userID string, startDate, endDate time.Time) ([]*domain.TransactionStat, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT type, EXTRACT(YEAR FROM date)::int AS year,
			EXTRACT(MONTH FROM date)::int AS month,
			sum(amount), count(*)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		GROUP BY type, year, month
		ORDER BY year, month`,
		userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*domain.TransactionStat
	for rows.Next() {
		var (
			s     domain.TransactionStat
			total pgtype.Numeric
		)
		if err := rows.Scan(&s.Type, &s.Year, &s.Month, &total, &s.Count); err != nil {
			return nil, err
		}
		s.Total = pgNumericToDecimal(total)
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ExistsByAccount reports whether any transaction references the account
func (r *TransactionRepository) ExistsByAccount(userID string, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = $1 AND account_id = $2)`,
		userID, pgUUID(accountID)).Scan(&exists)
	return exists, err
}

// CreateTx inserts a new transaction within a transaction
func (r *TransactionRepository) CreateTx(tx interface{}, transaction *domain.Transaction) (*domain.Transaction, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	id := uuid.New()
	_, err = pgxTx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, account_id, category_id, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pgUUID(id), transaction.UserID, amount, string(transaction.Type),
		pgUUID(transaction.AccountID), pgUUIDPtr(transaction.CategoryID),
		pgText(transaction.Description), transaction.Date)
	if err != nil {
		return nil, err
	}

	row := pgxTx.QueryRow(ctx,
		`SELECT `+transactionColumns+transactionJoins+` WHERE t.user_id = $1 AND t.id = $2`,
		transaction.UserID, pgUUID(id))
	return scanTransaction(row)
}

// DeleteTx removes a transaction within a transaction
func (r *TransactionRepository) DeleteTx(tx interface{}, userID string, id uuid.UUID) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(context.Background(),
		`DELETE FROM transactions WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
