package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/finwise-app/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type budgetHandlerFixture struct {
	handler    *BudgetHandler
	budgetRepo *testutil.MockBudgetRepository
	account    *domain.Account
}

func newBudgetHandlerFixture(balance string) *budgetHandlerFixture {
	budgetRepo := testutil.NewMockBudgetRepository()
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	notificationSvc := service.NewNotificationService(testutil.NewMockNotificationRepository())
	budgetSvc := service.NewBudgetService(testutil.NewMockTxStarter(), budgetRepo, accountRepo, categoryRepo, notificationSvc)

	account := &domain.Account{
		ID:      uuid.New(),
		UserID:  testUserID,
		Name:    "Checking",
		Type:    "bank",
		Balance: decimal.RequireFromString(balance),
	}
	accountRepo.AddAccount(account)

	return &budgetHandlerFixture{
		handler:    NewBudgetHandler(budgetSvc),
		budgetRepo: budgetRepo,
		account:    account,
	}
}

func (f *budgetHandlerFixture) addBudget(amount, limit, spent string) *domain.Budget {
	budget := &domain.Budget{
		ID:              uuid.New(),
		UserID:          testUserID,
		Name:            "Groceries",
		Amount:          decimal.RequireFromString(amount),
		Limit:           decimal.RequireFromString(limit),
		CurrentSpending: decimal.RequireFromString(spent),
		AccountID:       f.account.ID,
		StartDate:       time.Now().Add(-24 * time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		IsActive:        true,
	}
	f.budgetRepo.AddBudget(budget)
	return budget
}

func TestCreateBudgetHandler_Success(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")

	reqBody := `{"name": "Groceries", "amount": "400", "limit": "350", "accountId": "` + f.account.ID.String() + `", "startDate": "2026-01-01", "endDate": "2026-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/add-budget", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Data domain.Budget `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Data.Amount.Equal(decimal.RequireFromString("400")) {
		t.Errorf("Expected budget amount 400, got %s", response.Data.Amount)
	}
	if !f.account.Balance.Equal(decimal.RequireFromString("600")) {
		t.Errorf("Expected account debited to 600, got %s", f.account.Balance)
	}
}

func TestCreateBudgetHandler_InsufficientFunds(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("100")

	reqBody := `{"name": "Groceries", "amount": "400", "accountId": "` + f.account.ID.String() + `", "startDate": "2026-01-01", "endDate": "2026-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/add-budget", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateBudgetHandler_BadAmount(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")

	reqBody := `{"name": "Groceries", "amount": "four hundred", "accountId": "` + f.account.ID.String() + `", "startDate": "2026-01-01", "endDate": "2026-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/add-budget", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var response ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Message != "Amount must be a valid decimal number" {
		t.Errorf("Expected amount message, got %q", response.Message)
	}
}

func TestCreateBudgetHandler_BadDate(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")

	reqBody := `{"name": "Groceries", "amount": "400", "accountId": "` + f.account.ID.String() + `", "startDate": "January 1st", "endDate": "2026-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/add-budget", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetBudgetsHandler_ActiveOnly(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")
	f.addBudget("400", "0", "0")
	inactive := f.addBudget("200", "0", "0")
	inactive.IsActive = false

	req := httptest.NewRequest(http.MethodGet, "/get-budgets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.GetBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response struct {
		Data []domain.Budget `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data) != 1 {
		t.Errorf("Expected 1 active budget, got %d", len(response.Data))
	}
}

func TestGetAllBudgetsHandler_IncludesInactive(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")
	f.addBudget("400", "0", "0")
	inactive := f.addBudget("200", "0", "0")
	inactive.IsActive = false

	req := httptest.NewRequest(http.MethodGet, "/get-all-budgets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.GetAllBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response struct {
		Data []domain.Budget `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 budgets, got %d", len(response.Data))
	}
}

func TestRecordSpendingHandler_Success(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")
	budget := f.addBudget("400", "0", "100")

	reqBody := `{"amount": "50"}`
	req := httptest.NewRequest(http.MethodPost, "/delete-budget/"+budget.ID.String()+"/spending", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("budgetId")
	c.SetParamValues(budget.ID.String())

	setupAuthContext(c, testUserID)

	if err := f.handler.RecordSpending(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Data domain.Budget `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Data.CurrentSpending.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Expected spending 150, got %s", response.Data.CurrentSpending)
	}
}

func TestRecordSpendingHandler_ExceedsBudget(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")
	budget := f.addBudget("400", "0", "380")

	reqBody := `{"amount": "50"}`
	req := httptest.NewRequest(http.MethodPost, "/delete-budget/"+budget.ID.String()+"/spending", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("budgetId")
	c.SetParamValues(budget.ID.String())

	setupAuthContext(c, testUserID)

	if err := f.handler.RecordSpending(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDeleteBudgetHandler_RefundsAccount(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("600")
	budget := f.addBudget("400", "0", "100")

	req := httptest.NewRequest(http.MethodDelete, "/delete-budget/"+budget.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(budget.ID.String())

	setupAuthContext(c, testUserID)

	if err := f.handler.DeleteBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !f.account.Balance.Equal(decimal.RequireFromString("900")) {
		t.Errorf("Expected remainder refunded to 900, got %s", f.account.Balance)
	}
}

func TestCheckExpiredHandler(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("600")
	budget := f.addBudget("400", "0", "100")
	budget.EndDate = time.Now().Add(-time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/budgets/check-expired", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CheckExpired(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Data []domain.Budget `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data) != 1 {
		t.Errorf("Expected 1 expired budget, got %d", len(response.Data))
	}
	if !f.account.Balance.Equal(decimal.RequireFromString("900")) {
		t.Errorf("Expected remainder refunded to 900, got %s", f.account.Balance)
	}
}

func TestBudgetHandler_Unauthenticated(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture("1000")

	req := httptest.NewRequest(http.MethodGet, "/get-budgets", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.GetBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
