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

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, title, amount, category_id, budget_id,
	description, date, receipt_url, created_at, updated_at`

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		id          pgtype.UUID
		e           domain.Expense
		amount      pgtype.Numeric
		categoryID  pgtype.UUID
		budgetID    pgtype.UUID
		description pgtype.Text
		date        pgtype.Timestamptz
		receiptURL  pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(&id, &e.UserID, &e.Title, &amount, &categoryID, &budgetID,
		&description, &date, &receiptURL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.ID = uuidFromPg(id)
	e.Amount = pgNumericToDecimal(amount)
	e.CategoryID = uuidFromPg(categoryID)
	e.BudgetID = uuidFromPg(budgetID)
	e.Description = textPtrFromPg(description)
	e.Date = date.Time
	e.ReceiptURL = textPtrFromPg(receiptURL)
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return &e, nil
}

// entryFilterClauses appends WHERE fragments for the shared expense/income
// filters, starting after the user_id placeholder.
func entryFilterClauses(filters *domain.EntryFilters, args []any) (string, []any) {
	clause := ""
	if filters == nil {
		return clause, args
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		clause += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		clause += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, pgUUID(*filters.CategoryID))
		clause += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filters.MinAmount != nil {
		args = append(args, filters.MinAmount.String())
		clause += fmt.Sprintf(" AND amount >= $%d", len(args))
	}
	if filters.MaxAmount != nil {
		args = append(args, filters.MaxAmount.String())
		clause += fmt.Sprintf(" AND amount <= $%d", len(args))
	}
	return clause, args
}

// normalizePage clamps pagination inputs to sane defaults.
func normalizePage(page, perPage int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = domain.DefaultPageSize
	}
	if perPage > domain.MaxPageSize {
		perPage = domain.MaxPageSize
	}
	return page, perPage
}

// GetByID retrieves an expense by ID for a user
func (r *ExpenseRepository) GetByID(userID string, id uuid.UUID) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))

	expense, err := scanExpense(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense, nil
}

// GetByUser retrieves expenses for a user with filters and pagination,
// sorted by date descending.
func (r *ExpenseRepository) GetByUser(userID string, filters *domain.EntryFilters) (*domain.PaginatedExpenses, error) {
	ctx := context.Background()

	args := []any{userID}
	clause, args := entryFilterClauses(filters, args)

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM expenses WHERE user_id = $1`+clause, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	var page, perPage int32 = 1, domain.DefaultPageSize
	if filters != nil {
		page, perPage = normalizePage(filters.Page, filters.PerPage)
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE user_id = $1%s
		ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		expenseColumns, clause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*domain.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedExpenses{
		Expenses:   expenses,
		Pagination: domain.NewPagination(total, page, perPage),
	}, nil
}

// Update persists expense fields outside any transaction
func (r *ExpenseRepository) Update(expense *domain.Expense) (*domain.Expense, error) {
	return r.update(context.Background(), r.pool, expense)
}

// UpdateTx persists expense fields inside tx
func (r *ExpenseRepository) UpdateTx(tx interface{}, expense *domain.Expense) (*domain.Expense, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.update(context.Background(), pgxTx, expense)
}

func (r *ExpenseRepository) update(ctx context.Context, q dbtx, expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := q.QueryRow(ctx, `
		UPDATE expenses SET title = $3, amount = $4, category_id = $5,
			budget_id = $6, description = $7, date = $8, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+expenseColumns,
		expense.UserID, pgUUID(expense.ID), expense.Title, amount,
		pgUUID(expense.CategoryID), pgUUID(expense.BudgetID),
		pgText(expense.Description), expense.Date)

	updated, err := scanExpense(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SetReceiptURL stores or clears the receipt object path for an expense
func (r *ExpenseRepository) SetReceiptURL(userID string, id uuid.UUID, receiptURL *string) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE expenses SET receipt_url = $3, updated_at = now() WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id), pgText(receiptURL))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// GetStats aggregates expenses by (year, month, category) within a range,
// sorted chronologically then by descending total.
func (r *ExpenseRepository) GetStats(userID string, startDate, endDate time.Time) ([]*domain.EntryStat, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT EXTRACT(YEAR FROM date)::int AS year,
			EXTRACT(MONTH FROM date)::int AS month,
			category_id, sum(amount), count(*), avg(amount)
		FROM expenses
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

func scanEntryStats(rows pgx.Rows) ([]*domain.EntryStat, error) {
	var stats []*domain.EntryStat
	for rows.Next() {
		var (
			s          domain.EntryStat
			categoryID pgtype.UUID
			total      pgtype.Numeric
			average    pgtype.Numeric
		)
		if err := rows.Scan(&s.Year, &s.Month, &categoryID, &total, &s.Count, &average); err != nil {
			return nil, err
		}
		s.CategoryID = uuidFromPg(categoryID)
		s.Total = pgNumericToDecimal(total)
		s.Average = pgNumericToDecimal(average)
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// CreateTx inserts a new expense within a transaction
func (r *ExpenseRepository) CreateTx(tx interface{}, expense *domain.Expense) (*domain.Expense, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := pgxTx.QueryRow(context.Background(), `
		INSERT INTO expenses (id, user_id, title, amount, category_id, budget_id, description, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+expenseColumns,
		pgUUID(uuid.New()), expense.UserID, expense.Title, amount,
		pgUUID(expense.CategoryID), pgUUID(expense.BudgetID),
		pgText(expense.Description), expense.Date)

	return scanExpense(row)
}

// DeleteTx removes an expense within a transaction
func (r *ExpenseRepository) DeleteTx(tx interface{}, userID string, id uuid.UUID) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(context.Background(),
		`DELETE FROM expenses WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}
