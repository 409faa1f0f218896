package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/finwise-app/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newNotificationHandlerForTest() (*NotificationHandler, *testutil.MockNotificationRepository) {
	notificationRepo := testutil.NewMockNotificationRepository()
	return NewNotificationHandler(service.NewNotificationService(notificationRepo)), notificationRepo
}

func TestGetNotificationsHandler(t *testing.T) {
	e := echo.New()
	handler, notificationRepo := newNotificationHandlerForTest()
	notificationRepo.Create(&domain.Notification{UserID: testUserID, Type: "budget_alert", Message: "mine"})
	notificationRepo.Create(&domain.Notification{UserID: "auth0|other", Type: "budget_alert", Message: "theirs"})

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := handler.GetNotifications(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Data domain.PaginatedNotifications `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data.Notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(response.Data.Notifications))
	}
	if response.Data.Notifications[0].Message != "mine" {
		t.Errorf("Expected own notification, got %q", response.Data.Notifications[0].Message)
	}
}

func TestMarkReadHandler(t *testing.T) {
	e := echo.New()
	handler, notificationRepo := newNotificationHandlerForTest()
	notification, err := notificationRepo.Create(&domain.Notification{UserID: testUserID, Type: "budget_alert", Message: "mine"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/notification/"+notification.ID.String()+"/read", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(notification.ID.String())

	setupAuthContext(c, testUserID)

	if err := handler.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Data domain.Notification `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Data.IsRead {
		t.Error("Expected notification marked read")
	}
}

func TestMarkReadHandler_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newNotificationHandlerForTest()

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPatch, "/notification/"+id+"/read", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	setupAuthContext(c, testUserID)

	if err := handler.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
