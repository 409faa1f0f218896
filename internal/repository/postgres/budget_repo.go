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

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// budgetColumns joins against accounts and categories for display names.
const budgetColumns = `
	b.id, b.user_id, b.name, b.amount, b.spending_limit, b.current_spending,
	b.account_id, b.category_id, b.description, b.start_date, b.end_date,
	b.notifications_sent, b.is_active, b.created_at, b.updated_at,
	a.name AS account_name, c.name AS category_name`

const budgetJoins = `
	FROM budgets b
	JOIN accounts a ON a.id = b.account_id
	LEFT JOIN categories c ON c.id = b.category_id`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		id           pgtype.UUID
		b            domain.Budget
		amount       pgtype.Numeric
		limit        pgtype.Numeric
		spending     pgtype.Numeric
		accountID    pgtype.UUID
		categoryID   pgtype.UUID
		description  pgtype.Text
		startDate    pgtype.Timestamptz
		endDate      pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		categoryName pgtype.Text
	)
	err := row.Scan(&id, &b.UserID, &b.Name, &amount, &limit, &spending,
		&accountID, &categoryID, &description, &startDate, &endDate,
		&b.NotificationsSent, &b.IsActive, &createdAt, &updatedAt,
		&b.AccountName, &categoryName)
	if err != nil {
		return nil, err
	}
	b.ID = uuidFromPg(id)
	b.Amount = pgNumericToDecimal(amount)
	b.Limit = pgNumericToDecimal(limit)
	b.CurrentSpending = pgNumericToDecimal(spending)
	b.AccountID = uuidFromPg(accountID)
	b.CategoryID = uuidPtrFromPg(categoryID)
	b.Description = textPtrFromPg(description)
	b.StartDate = startDate.Time
	b.EndDate = endDate.Time
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	b.CategoryName = textPtrFromPg(categoryName)
	return &b, nil
}

func (r *BudgetRepository) queryBudgets(ctx context.Context, q dbtx, query string, args ...any) ([]*domain.Budget, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// GetByID retrieves a budget by ID for a user
func (r *BudgetRepository) GetByID(userID string, id uuid.UUID) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 AND b.id = $2`,
		userID, pgUUID(id))

	budget, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetActiveByUser retrieves all active budgets for a user
func (r *BudgetRepository) GetActiveByUser(userID string) ([]*domain.Budget, error) {
	return r.queryBudgets(context.Background(), r.pool,
		`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 AND b.is_active ORDER BY b.end_date`,
		userID)
}

// GetAllByUser retrieves all budgets for a user, active and inactive
func (r *BudgetRepository) GetAllByUser(userID string) ([]*domain.Budget, error) {
	return r.queryBudgets(context.Background(), r.pool,
		`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 ORDER BY b.created_at DESC`,
		userID)
}

// CreateTx inserts a new budget within a transaction
func (r *BudgetRepository) CreateTx(tx interface{}, budget *domain.Budget) (*domain.Budget, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	limit, err := decimalToPgNumeric(budget.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	spending, err := decimalToPgNumeric(budget.CurrentSpending)
	if err != nil {
		return nil, fmt.Errorf("invalid current spending: %w", err)
	}

	id := uuid.New()
	_, err = pgxTx.Exec(ctx, `
		INSERT INTO budgets (id, user_id, name, amount, spending_limit, current_spending,
			account_id, category_id, description, start_date, end_date,
			notifications_sent, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		pgUUID(id), budget.UserID, budget.Name, amount, limit, spending,
		pgUUID(budget.AccountID), pgUUIDPtr(budget.CategoryID), pgText(budget.Description),
		budget.StartDate, budget.EndDate, budget.NotificationsSent, budget.IsActive)
	if err != nil {
		return nil, err
	}

	row := pgxTx.QueryRow(ctx,
		`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 AND b.id = $2`,
		budget.UserID, pgUUID(id))
	return scanBudget(row)
}

// GetByIDForUpdateTx retrieves a budget inside tx with its row locked
func (r *BudgetRepository) GetByIDForUpdateTx(tx interface{}, userID string, id uuid.UUID) (*domain.Budget, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	// Lock the budget row first, then read it joined; FOR UPDATE cannot be
	// combined with the LEFT JOIN on the nullable category side.
	var locked pgtype.UUID
	err = pgxTx.QueryRow(context.Background(),
		`SELECT id FROM budgets WHERE user_id = $1 AND id = $2 FOR UPDATE`,
		userID, pgUUID(id)).Scan(&locked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}

	row := pgxTx.QueryRow(context.Background(),
		`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 AND b.id = $2`,
		userID, pgUUID(id))
	budget, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// UpdateTx persists budget fields inside tx
func (r *BudgetRepository) UpdateTx(tx interface{}, budget *domain.Budget) (*domain.Budget, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	limit, err := decimalToPgNumeric(budget.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	spending, err := decimalToPgNumeric(budget.CurrentSpending)
	if err != nil {
		return nil, fmt.Errorf("invalid current spending: %w", err)
	}

	tag, err := pgxTx.Exec(ctx, `
		UPDATE budgets SET name = $3, amount = $4, spending_limit = $5,
			current_spending = $6, description = $7, end_date = $8,
			notifications_sent = $9, is_active = $10, updated_at = now()
		WHERE user_id = $1 AND id = $2`,
		budget.UserID, pgUUID(budget.ID), budget.Name, amount, limit, spending,
		pgText(budget.Description), budget.EndDate, budget.NotificationsSent, budget.IsActive)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetNotFound
	}

	row := pgxTx.QueryRow(ctx,
		`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 AND b.id = $2`,
		budget.UserID, pgUUID(budget.ID))
	return scanBudget(row)
}

// GetExpiredActiveForUpdateTx retrieves, with row locks, every active budget
// whose end date has passed.
func (r *BudgetRepository) GetExpiredActiveForUpdateTx(tx interface{}, userID string, now time.Time) ([]*domain.Budget, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	rows, err := pgxTx.Query(ctx,
		`SELECT id FROM budgets WHERE user_id = $1 AND is_active AND end_date < $2 FOR UPDATE`,
		userID, now)
	if err != nil {
		return nil, err
	}
	var ids []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var budgets []*domain.Budget
	for _, id := range ids {
		row := pgxTx.QueryRow(ctx,
			`SELECT `+budgetColumns+budgetJoins+` WHERE b.user_id = $1 AND b.id = $2`,
			userID, id)
		budget, err := scanBudget(row)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, nil
}

// DeactivateTx flips is_active to false inside tx
func (r *BudgetRepository) DeactivateTx(tx interface{}, userID string, id uuid.UUID) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(context.Background(),
		`UPDATE budgets SET is_active = false, updated_at = now() WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}
