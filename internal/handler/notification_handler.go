package handler

import (
	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications handles GET /notification
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	page, perPage := parsePageQuery(c)

	notifications, err := h.notificationService.GetNotifications(userID, page, perPage)
	if err != nil {
		return NewDomainError(c, err, "Failed to get notifications")
	}

	return OK(c, "Notifications retrieved successfully", notifications)
}

// MarkRead handles PATCH /notification/:id/read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid notification id")
	}

	notification, err := h.notificationService.MarkRead(userID, id)
	if err != nil {
		return NewDomainError(c, err, "Failed to mark notification as read")
	}

	return OK(c, "Notification marked as read", notification)
}
