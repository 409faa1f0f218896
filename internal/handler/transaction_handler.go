package handler

import (
	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	reportService      *service.ReportService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, reportService *service.ReportService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		reportService:      reportService,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	AccountID   string  `json:"accountId"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
}

// CreateTransaction handles POST /add-transaction
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Amount must be a valid decimal number")
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return NewValidationError(c, "Invalid account id")
	}
	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		parsed, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return NewValidationError(c, "Invalid category id")
		}
		categoryID = &parsed
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return NewDomainError(c, err, "Invalid date")
	}

	transaction, err := h.transactionService.CreateTransaction(userID, service.CreateTransactionInput{
		Amount:      amount,
		Type:        domain.TransactionType(req.Type),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to create transaction")
	}

	log.Info().
		Str("user_id", userID).
		Str("transaction_id", transaction.ID.String()).
		Str("type", string(transaction.Type)).
		Str("amount", transaction.Amount.String()).
		Msg("Transaction created")

	return Created(c, "Transaction created successfully", transaction)
}

// GetTransactions handles GET /get-transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := transactionFiltersFromQuery(c)
	if err != nil {
		return NewDomainError(c, err, "Invalid query parameters")
	}

	transactions, err := h.transactionService.ListTransactions(userID, filters)
	if err != nil {
		return NewDomainError(c, err, "Failed to get transactions")
	}

	return OK(c, "Transactions retrieved successfully", transactions)
}

// GetTransaction handles GET /get-transaction/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction id")
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, id)
	if err != nil {
		return NewDomainError(c, err, "Failed to get transaction")
	}

	return OK(c, "Transaction retrieved successfully", transaction)
}

// DeleteTransaction handles DELETE /delete-transaction/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction id")
	}

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		return NewDomainError(c, err, "Failed to delete transaction")
	}

	log.Info().Str("user_id", userID).Str("transaction_id", id.String()).Msg("Transaction deleted")

	return OK(c, "Transaction deleted successfully", nil)
}

// GetTransactionStats handles GET /get-transactions/stats
func (h *TransactionHandler) GetTransactionStats(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	startDate, endDate, err := statsRange(c)
	if err != nil {
		return NewDomainError(c, err, "Invalid date range")
	}

	stats, err := h.transactionService.GetTransactionStats(userID, startDate, endDate)
	if err != nil {
		return NewDomainError(c, err, "Failed to get transaction stats")
	}

	return OK(c, "Transaction stats retrieved successfully", stats)
}

// GetReport handles GET /transactions/report
func (h *TransactionHandler) GetReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	startDate, err := parseDateQuery(c, "startDate")
	if err != nil {
		return NewDomainError(c, err, "Invalid start date")
	}
	endDate, err := parseDateQuery(c, "endDate")
	if err != nil {
		return NewDomainError(c, err, "Invalid end date")
	}

	report, err := h.reportService.BuildReport(userID, service.ReportInput{
		TimePeriod: c.QueryParam("timePeriod"),
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to build report")
	}

	return OK(c, "Report generated successfully", report)
}

// transactionFiltersFromQuery builds TransactionFilters from query parameters
func transactionFiltersFromQuery(c echo.Context) (*domain.TransactionFilters, error) {
	startDate, err := parseDateQuery(c, "startDate")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateQuery(c, "endDate")
	if err != nil {
		return nil, err
	}
	accountID, err := parseUUIDQuery(c, "account")
	if err != nil {
		return nil, err
	}
	categoryID, err := parseUUIDQuery(c, "category")
	if err != nil {
		return nil, err
	}
	minAmount, err := parseDecimalQuery(c, "minAmount")
	if err != nil {
		return nil, err
	}
	maxAmount, err := parseDecimalQuery(c, "maxAmount")
	if err != nil {
		return nil, err
	}

	var txType *domain.TransactionType
	if raw := c.QueryParam("type"); raw != "" {
		t := domain.TransactionType(raw)
		txType = &t
	}

	page, perPage := parsePageQuery(c)

	return &domain.TransactionFilters{
		StartDate:  startDate,
		EndDate:    endDate,
		Type:       txType,
		AccountID:  accountID,
		CategoryID: categoryID,
		MinAmount:  minAmount,
		MaxAmount:  maxAmount,
		Page:       page,
		PerPage:    perPage,
	}, nil
}
