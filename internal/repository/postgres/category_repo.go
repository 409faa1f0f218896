package postgres

import (
	"context"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `
	c.id, c.user_id, c.name, c.parent_id, c.type, c.description, c.is_active,
	c.created_at, c.updated_at, p.name AS parent_name`

const categoryJoins = `
	FROM categories c
	LEFT JOIN categories p ON p.id = c.parent_id`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		id          pgtype.UUID
		c           domain.Category
		parentID    pgtype.UUID
		description pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
		parentName  pgtype.Text
	)
	err := row.Scan(&id, &c.UserID, &c.Name, &parentID, &c.Type, &description,
		&c.IsActive, &createdAt, &updatedAt, &parentName)
	if err != nil {
		return nil, err
	}
	c.ID = uuidFromPg(id)
	c.ParentID = uuidPtrFromPg(parentID)
	c.Description = textPtrFromPg(description)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	c.ParentName = textPtrFromPg(parentName)
	return &c, nil
}

// Create inserts a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()
	id := uuid.New()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, user_id, name, parent_id, type, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pgUUID(id), category.UserID, category.Name, pgUUIDPtr(category.ParentID),
		string(category.Type), pgText(category.Description), category.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryNameTaken
		}
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+categoryJoins+` WHERE c.user_id = $1 AND c.id = $2`,
		category.UserID, pgUUID(id))
	return scanCategory(row)
}

// GetByID retrieves a category by ID for a user
func (r *CategoryRepository) GetByID(userID string, id uuid.UUID) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+categoryJoins+` WHERE c.user_id = $1 AND c.id = $2`,
		userID, pgUUID(id))

	category, err := scanCategory(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetByName retrieves a category by name under a given parent
func (r *CategoryRepository) GetByName(userID string, name string, parentID *uuid.UUID) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+categoryJoins+`
		 WHERE c.user_id = $1 AND c.name = $2 AND c.parent_id IS NOT DISTINCT FROM $3`,
		userID, name, pgUUIDPtr(parentID))

	category, err := scanCategory(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetAllByUser retrieves all categories for a user sorted by name
func (r *CategoryRepository) GetAllByUser(userID string) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+categoryColumns+categoryJoins+` WHERE c.user_id = $1 ORDER BY c.name`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update updates a category's mutable fields
func (r *CategoryRepository) Update(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $3, parent_id = $4, type = $5,
			description = $6, is_active = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2`,
		category.UserID, pgUUID(category.ID), category.Name, pgUUIDPtr(category.ParentID),
		string(category.Type), pgText(category.Description), category.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryNameTaken
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrCategoryNotFound
	}

	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+categoryJoins+` WHERE c.user_id = $1 AND c.id = $2`,
		category.UserID, pgUUID(category.ID))
	return scanCategory(row)
}

// Delete permanently removes a category
func (r *CategoryRepository) Delete(userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM categories WHERE user_id = $1 AND id = $2`,
		userID, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasChildren reports whether any category has this one as parent
func (r *CategoryRepository) HasChildren(userID string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND parent_id = $2)`,
		userID, pgUUID(id)).Scan(&exists)
	return exists, err
}

// Exists reports whether the category exists for the user
func (r *CategoryRepository) Exists(userID string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND id = $2)`,
		userID, pgUUID(id)).Scan(&exists)
	return exists, err
}
