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

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

const incomeColumns = `id, user_id, title, amount, category_id, account_id,
	description, date, created_at, updated_at`

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		id          pgtype.UUID
		in          domain.Income
		amount      pgtype.Numeric
		categoryID  pgtype.UUID
		accountID   pgtype.UUID
		description pgtype.Text
		date        pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(&id, &in.UserID, &in.Title, &amount, &categoryID, &accountID,
		&description, &date, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	in.ID = uuidFromPg(id)
	in.Amount = pgNumericToDecimal(amount)
	in.CategoryID = uuidFromPg(categoryID)
	in.AccountID = uuidFromPg(accountID)
	in.Description = textPtrFromPg(description)
	in.Date = date.Time
	in.CreatedAt = createdAt.Time
	in.UpdatedAt = updatedAt.Time
	return &in, nil
}

// GetByID retrieves an income by ID for a user
func (r *IncomeRepository) GetByID(userID string, id uuid.UUID) (*domain.Income, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))

	income, err := scanIncome(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	return income, nil
}

// GetByUser retrieves incomes for a user with filters and pagination,
// sorted by date descending.
func (r *IncomeRepository) GetByUser(userID string, filters *domain.EntryFilters) (*domain.PaginatedIncomes, error) {
	ctx := context.Background()

	args := []any{userID}
	clause, args := entryFilterClauses(filters, args)

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM incomes WHERE user_id = $1`+clause, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	var page, perPage int32 = 1, domain.DefaultPageSize
	if filters != nil {
		page, perPage = normalizePage(filters.Page, filters.PerPage)
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM incomes WHERE user_id = $1%s
		ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		incomeColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := []*domain.Income{}
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedIncomes{
		Incomes:    incomes,
		Pagination: domain.NewPagination(total, page, perPage),
	}, nil
}

// GetStats aggregates incomes by (year, month, category) within a range
func (r *IncomeRepository) GetStats(userID string, startDate, endDate time.Time) ([]*domain.EntryStat, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT EXTRACT(YEAR FROM date)::int AS year,
			EXTRACT(MONTH FROM date)::int AS month,
			category_id, sum(amount), count(*), avg(amount)
		FROM incomes
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		GROUP BY year, month, category_id
		ORDER BY year, month, sum(amount) DESC`,
		userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntryStats(rows)
}

// GetMonthlyTotals returns per-month income totals for a calendar year
func (r *IncomeRepository) GetMonthlyTotals(userID string, year int) ([]*domain.MonthlyTotal, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	rows, err := r.pool.Query(context.Background(), `
		SELECT EXTRACT(MONTH FROM date)::int AS month, sum(amount)
		FROM incomes
		WHERE user_id = $1 AND date >= $2 AND date < $3
		GROUP BY month
		ORDER BY month`,
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []*domain.MonthlyTotal
	for rows.Next() {
		var (
			t     domain.MonthlyTotal
			total pgtype.Numeric
		)
		if err := rows.Scan(&t.Month, &total); err != nil {
			return nil, err
		}
		t.Total = pgNumericToDecimal(total)
		totals = append(totals, &t)
	}
	return totals, rows.Err()
}

// CreateTx inserts a new income within a transaction
func (r *IncomeRepository) CreateTx(tx interface{}, income *domain.Income) (*domain.Income, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := pgxTx.QueryRow(context.Background(), `
		INSERT INTO incomes (id, user_id, title, amount, category_id, account_id, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+incomeColumns,
		pgUUID(uuid.New()), income.UserID, income.Title, amount,
		pgUUID(income.CategoryID), pgUUID(income.AccountID),
		pgText(income.Description), income.Date)

	return scanIncome(row)
}

// UpdateTx persists income fields inside tx
func (r *IncomeRepository) UpdateTx(tx interface{}, income *domain.Income) (*domain.Income, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := pgxTx.QueryRow(context.Background(), `
		UPDATE incomes SET title = $3, amount = $4, category_id = $5,
			account_id = $6, description = $7, date = $8, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+incomeColumns,
		income.UserID, pgUUID(income.ID), income.Title, amount,
		pgUUID(income.CategoryID), pgUUID(income.AccountID),
		pgText(income.Description), income.Date)

	updated, err := scanIncome(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	return updated, nil
}

// DeleteTx removes an income within a transaction
func (r *IncomeRepository) DeleteTx(tx interface{}, userID string, id uuid.UUID) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(context.Background(),
		`DELETE FROM incomes WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}
