package handler

import (
	"io"
	"time"

	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	receiptService *service.ReceiptService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, receiptService *service.ReceiptService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		receiptService: receiptService,
	}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Title       string  `json:"title"`
	Amount      string  `json:"amount"`
	CategoryID  string  `json:"categoryId"`
	BudgetID    string  `json:"budgetId"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
}

// UpdateExpenseRequest represents the update expense request body
type UpdateExpenseRequest struct {
	Title       *string `json:"title"`
	Amount      *string `json:"amount"`
	CategoryID  *string `json:"categoryId"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

// CreateExpense handles POST /add-expense
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Amount must be a valid decimal number")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return NewValidationError(c, "Invalid category id")
	}
	budgetID, err := uuid.Parse(req.BudgetID)
	if err != nil {
		return NewValidationError(c, "Invalid budget id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return NewDomainError(c, err, "Invalid date")
	}

	expense, err := h.expenseService.CreateExpense(userID, service.CreateExpenseInput{
		Title:       req.Title,
		Amount:      amount,
		CategoryID:  categoryID,
		BudgetID:    budgetID,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to create expense")
	}

	log.Info().
		Str("user_id", userID).
		Str("expense_id", expense.ID.String()).
		Str("amount", expense.Amount.String()).
		Msg("Expense created")

	return Created(c, "Expense created successfully", expense)
}

// GetExpenses handles GET /get-expenses
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := entryFiltersFromQuery(c)
	if err != nil {
		return NewDomainError(c, err, "Invalid query parameters")
	}

	expenses, err := h.expenseService.ListExpenses(userID, filters)
	if err != nil {
		return NewDomainError(c, err, "Failed to get expenses")
	}

	return OK(c, "Expenses retrieved successfully", expenses)
}

// GetExpense handles GET /get-expense/:id
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id")
	}

	expense, err := h.expenseService.GetExpenseByID(userID, id)
	if err != nil {
		return NewDomainError(c, err, "Failed to get expense")
	}

	return OK(c, "Expense retrieved successfully", expense)
}

// UpdateExpense handles PUT /update-expense/:id
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id")
	}

	var req UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	input := service.UpdateExpenseInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Amount must be a valid decimal number")
		}
		input.Amount = &amount
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return NewValidationError(c, "Invalid category id")
		}
		input.CategoryID = &categoryID
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return NewDomainError(c, err, "Invalid date")
		}
		input.Date = &date
	}

	expense, err := h.expenseService.UpdateExpense(userID, id, input)
	if err != nil {
		return NewDomainError(c, err, "Failed to update expense")
	}

	return OK(c, "Expense updated successfully", expense)
}

// DeleteExpense handles DELETE /delete-expense/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id")
	}

	if err := h.expenseService.DeleteExpense(userID, id); err != nil {
		return NewDomainError(c, err, "Failed to delete expense")
	}

	log.Info().Str("user_id", userID).Str("expense_id", id.String()).Msg("Expense deleted")

	return OK(c, "Expense deleted successfully", nil)
}

// GetExpenseStats handles GET /get-expenses/stats
func (h *ExpenseHandler) GetExpenseStats(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	startDate, endDate, err := statsRange(c)
	if err != nil {
		return NewDomainError(c, err, "Invalid date range")
	}

	stats, err := h.expenseService.GetExpenseStats(userID, startDate, endDate)
	if err != nil {
		return NewDomainError(c, err, "Failed to get expense stats")
	}

	return OK(c, "Expense stats retrieved successfully", stats)
}

// statsRange resolves the startDate/endDate query pair for stats endpoints,
// defaulting to the trailing year
func statsRange(c echo.Context) (time.Time, time.Time, error) {
	start, err := parseDateQuery(c, "startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateQuery(c, "endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := time.Now()
	if end == nil {
		end = &now
	}
	if start == nil {
		s := end.AddDate(-1, 0, 0)
		start = &s
	}
	return *start, *end, nil
}

// UploadReceipt handles POST /expenses/:id/receipt
func (h *ExpenseHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id")
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return NewValidationError(c, "Receipt file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Failed to read receipt file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
	if err != nil {
		return NewValidationError(c, "Failed to read receipt file")
	}

	metadata, err := h.receiptService.UploadReceipt(c.Request().Context(), userID, id, data, fileHeader.Filename)
	if err != nil {
		return receiptError(c, err, "Failed to upload receipt")
	}

	log.Info().Str("user_id", userID).Str("expense_id", id.String()).Msg("Receipt uploaded")

	return Created(c, "Receipt uploaded successfully", metadata)
}

// GetReceipt handles GET /expenses/:id/receipt
func (h *ExpenseHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id")
	}

	metadata, err := h.receiptService.GetReceipt(c.Request().Context(), userID, id)
	if err != nil {
		return receiptError(c, err, "Failed to get receipt")
	}

	return OK(c, "Receipt retrieved successfully", metadata)
}

// DeleteReceipt handles DELETE /expenses/:id/receipt
func (h *ExpenseHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid expense id")
	}

	if err := h.receiptService.DeleteReceipt(c.Request().Context(), userID, id); err != nil {
		return receiptError(c, err, "Failed to delete receipt")
	}

	return OK(c, "Receipt deleted successfully", nil)
}

// receiptError maps receipt pipeline errors before falling back to the
// shared domain error mapping
func receiptError(c echo.Context, err error, fallback string) error {
	switch err {
	case service.ErrReceiptTooLarge, service.ErrInvalidFormat, service.ErrReceiptTooSmall, service.ErrInvalidImageData:
		return NewValidationError(c, err.Error())
	case service.ErrNoReceipt:
		return NewNotFoundError(c, err.Error())
	case service.ErrStorageUnavailable:
		return NewValidationError(c, err.Error())
	}
	return NewDomainError(c, err, fallback)
}
