package service

import (
	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationService handles notification business logic
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	eventPublisher   websocket.EventPublisher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo domain.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *NotificationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// Notify records a notification and pushes it to the user's connected
// clients. A persistence failure is logged but never propagated: the
// financial operation that triggered the notification has already
// committed and must not be failed retroactively.
func (s *NotificationService) Notify(userID, notificationType, message string, relatedID *uuid.UUID) {
	notification, err := s.notificationRepo.Create(&domain.Notification{
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		RelatedID: relatedID,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("type", notificationType).
			Msg("Failed to record notification")
		return
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, websocket.NotificationCreated(notification))
	}
}

// GetNotifications retrieves a page of the user's notifications, newest first
func (s *NotificationService) GetNotifications(userID string, page, perPage int32) (*domain.PaginatedNotifications, error) {
	return s.notificationRepo.GetByUser(userID, page, perPage)
}

// MarkRead marks a notification as read
func (s *NotificationService) MarkRead(userID string, id uuid.UUID) (*domain.Notification, error) {
	return s.notificationRepo.MarkRead(userID, id)
}
