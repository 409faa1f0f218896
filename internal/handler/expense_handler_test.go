package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
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

type expenseHandlerFixture struct {
	handler     *ExpenseHandler
	expenseRepo *testutil.MockExpenseRepository
	receiptRepo *testutil.MockReceiptRepository
	category    *domain.Category
	budget      *domain.Budget
}

func newExpenseHandlerFixture() *expenseHandlerFixture {
	budgetRepo := testutil.NewMockBudgetRepository()
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	receiptRepo := testutil.NewMockReceiptRepository()
	notificationSvc := service.NewNotificationService(testutil.NewMockNotificationRepository())

	budgetSvc := service.NewBudgetService(testutil.NewMockTxStarter(), budgetRepo, accountRepo, categoryRepo, notificationSvc)
	expenseSvc := service.NewExpenseService(testutil.NewMockTxStarter(), expenseRepo, categoryRepo, budgetSvc)
	receiptSvc := service.NewReceiptService(receiptRepo, expenseRepo)

	account := &domain.Account{
		ID:      uuid.New(),
		UserID:  testUserID,
		Name:    "Checking",
		Type:    "bank",
		Balance: decimal.RequireFromString("600"),
	}
	accountRepo.AddAccount(account)

	category := &domain.Category{
		ID:     uuid.New(),
		UserID: testUserID,
		Name:   "Food",
		Type:   domain.CategoryTypeExpense,
	}
	categoryRepo.AddCategory(category)

	budget := &domain.Budget{
		ID:        uuid.New(),
		UserID:    testUserID,
		Name:      "Groceries",
		Amount:    decimal.RequireFromString("400"),
		AccountID: account.ID,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  true,
	}
	budgetRepo.AddBudget(budget)

	return &expenseHandlerFixture{
		handler:     NewExpenseHandler(expenseSvc, receiptSvc),
		expenseRepo: expenseRepo,
		receiptRepo: receiptRepo,
		category:    category,
		budget:      budget,
	}
}

func TestCreateExpenseHandler_Success(t *testing.T) {
	e := echo.New()
	f := newExpenseHandlerFixture()

	reqBody := `{"title": "Weekly shop", "amount": "120", "categoryId": "` + f.category.ID.String() + `", "budgetId": "` + f.budget.ID.String() + `", "date": "2026-08-15"}`
	req := httptest.NewRequest(http.MethodPost, "/add-expense", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !f.budget.CurrentSpending.Equal(decimal.RequireFromString("120")) {
		t.Errorf("Expected budget spending 120, got %s", f.budget.CurrentSpending)
	}
}

func TestCreateExpenseHandler_OverBudget(t *testing.T) {
	e := echo.New()
	f := newExpenseHandlerFixture()
	f.budget.CurrentSpending = decimal.RequireFromString("390")

	reqBody := `{"title": "Weekly shop", "amount": "20", "categoryId": "` + f.category.ID.String() + `", "budgetId": "` + f.budget.ID.String() + `", "date": "2026-08-15"}`
	req := httptest.NewRequest(http.MethodPost, "/add-expense", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateExpenseHandler_BadBudgetID(t *testing.T) {
	e := echo.New()
	f := newExpenseHandlerFixture()

	reqBody := `{"title": "Weekly shop", "amount": "20", "categoryId": "` + f.category.ID.String() + `", "budgetId": "nope", "date": "2026-08-15"}`
	req := httptest.NewRequest(http.MethodPost, "/add-expense", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, testUserID)

	if err := f.handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func (f *expenseHandlerFixture) addExpense() *domain.Expense {
	expense := &domain.Expense{
		ID:         uuid.New(),
		UserID:     testUserID,
		Title:      "Weekly shop",
		Amount:     decimal.RequireFromString("120"),
		CategoryID: f.category.ID,
		BudgetID:   f.budget.ID,
		Date:       time.Now(),
	}
	f.expenseRepo.AddExpense(expense)
	return expense
}

func receiptForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for x := 0; x < 200; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var imgBuf bytes.Buffer
	if err := jpeg.Encode(&imgBuf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("receipt", "receipt.jpg")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(imgBuf.Bytes()); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close form writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestUploadReceiptHandler_Success(t *testing.T) {
	e := echo.New()
	f := newExpenseHandlerFixture()
	expense := f.addExpense()

	body, contentType := receiptForm(t)
	req := httptest.NewRequest(http.MethodPost, "/expenses/"+expense.ID.String()+"/receipt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(expense.ID.String())

	setupAuthContext(c, testUserID)

	if err := f.handler.UploadReceipt(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.receiptRepo.Objects) != 3 {
		t.Errorf("Expected 3 stored variants, got %d", len(f.receiptRepo.Objects))
	}

	var response struct {
		Data service.ReceiptMetadata `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Data.ThumbnailURL == "" {
		t.Error("Expected a thumbnail URL")
	}
}

func TestUploadReceiptHandler_MissingFile(t *testing.T) {
	e := echo.New()
	f := newExpenseHandlerFixture()
	expense := f.addExpense()

	req := httptest.NewRequest(http.MethodPost, "/expenses/"+expense.ID.String()+"/receipt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(expense.ID.String())

	setupAuthContext(c, testUserID)

	if err := f.handler.UploadReceipt(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetReceiptHandler_NoReceipt(t *testing.T) {
	e := echo.New()
	f := newExpenseHandlerFixture()
	expense := f.addExpense()

	req := httptest.NewRequest(http.MethodGet, "/expenses/"+expense.ID.String()+"/receipt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(expense.ID.String())

	setupAuthContext(c, testUserID)

	if err := f.handler.GetReceipt(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
