package postgres

import (
	"context"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository implements domain.NotificationRepository using PostgreSQL
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = `id, user_id, type, message, is_read, related_id, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		id        pgtype.UUID
		n         domain.Notification
		relatedID pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &n.UserID, &n.Type, &n.Message, &n.IsRead, &relatedID, &createdAt); err != nil {
		return nil, err
	}
	n.ID = uuidFromPg(id)
	n.RelatedID = uuidPtrFromPg(relatedID)
	n.CreatedAt = createdAt.Time
	return &n, nil
}

// Create inserts a new notification
func (r *NotificationRepository) Create(notification *domain.Notification) (*domain.Notification, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO notifications (id, user_id, type, message, related_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+notificationColumns,
		pgUUID(uuid.New()), notification.UserID, notification.Type,
		notification.Message, pgUUIDPtr(notification.RelatedID))

	return scanNotification(row)
}

// GetByUser retrieves notifications for a user, newest first
func (r *NotificationRepository) GetByUser(userID string, page, perPage int32) (*domain.PaginatedNotifications, error) {
	ctx := context.Background()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = domain.DefaultNotificationPageSize
	}
	if perPage > domain.MaxPageSize {
		perPage = domain.MaxPageSize
	}

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedNotifications{
		Notifications: notifications,
		Pagination:    domain.NewPagination(total, page, perPage),
	}, nil
}

// MarkRead flips the is_read flag for a notification owned by the user
func (r *NotificationRepository) MarkRead(userID string, id uuid.UUID) (*domain.Notification, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE notifications SET is_read = true
		WHERE user_id = $1 AND id = $2
		RETURNING `+notificationColumns,
		userID, pgUUID(id))

	notification, err := scanNotification(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return notification, nil
}
