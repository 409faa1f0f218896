package handler

import (
	"strconv"
	"time"

	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// IncomeHandler handles income-related HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest represents the create income request body
type CreateIncomeRequest struct {
	Title       string  `json:"title"`
	Amount      string  `json:"amount"`
	CategoryID  string  `json:"categoryId"`
	AccountID   string  `json:"accountId"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
}

// UpdateIncomeRequest represents the update income request body
type UpdateIncomeRequest struct {
	Title       *string `json:"title"`
	Amount      *string `json:"amount"`
	CategoryID  *string `json:"categoryId"`
	AccountID   *string `json:"accountId"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

// CreateIncome handles POST /add-income
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateIncomeRequest
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
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return NewValidationError(c, "Invalid account id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return NewDomainError(c, err, "Invalid date")
	}

	income, err := h.incomeService.CreateIncome(userID, service.CreateIncomeInput{
		Title:       req.Title,
		Amount:      amount,
		CategoryID:  categoryID,
		AccountID:   accountID,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to create income")
	}

	log.Info().
		Str("user_id", userID).
		Str("income_id", income.ID.String()).
		Str("amount", income.Amount.String()).
		Msg("Income created")

	return Created(c, "Income created successfully", income)
}

// GetIncomes handles GET /get-incomes
func (h *IncomeHandler) GetIncomes(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := entryFiltersFromQuery(c)
	if err != nil {
		return NewDomainError(c, err, "Invalid query parameters")
	}

	incomes, err := h.incomeService.ListIncomes(userID, filters)
	if err != nil {
		return NewDomainError(c, err, "Failed to get incomes")
	}

	return OK(c, "Incomes retrieved successfully", incomes)
}

// GetIncome handles GET /get-income/:id
func (h *IncomeHandler) GetIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid income id")
	}

	income, err := h.incomeService.GetIncomeByID(userID, id)
	if err != nil {
		return NewDomainError(c, err, "Failed to get income")
	}

	return OK(c, "Income retrieved successfully", income)
}

// UpdateIncome handles PUT /update-income/:id
func (h *IncomeHandler) UpdateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid income id")
	}

	var req UpdateIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	input := service.UpdateIncomeInput{
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
	if req.AccountID != nil {
		accountID, err := uuid.Parse(*req.AccountID)
		if err != nil {
			return NewValidationError(c, "Invalid account id")
		}
		input.AccountID = &accountID
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return NewDomainError(c, err, "Invalid date")
		}
		input.Date = &date
	}

	income, err := h.incomeService.UpdateIncome(userID, id, input)
	if err != nil {
		return NewDomainError(c, err, "Failed to update income")
	}

	return OK(c, "Income updated successfully", income)
}

// DeleteIncome handles DELETE /delete-income/:id
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid income id")
	}

	if err := h.incomeService.DeleteIncome(userID, id); err != nil {
		return NewDomainError(c, err, "Failed to delete income")
	}

	log.Info().Str("user_id", userID).Str("income_id", id.String()).Msg("Income deleted")

	return OK(c, "Income deleted successfully", nil)
}

// GetIncomeStats handles GET /get-incomes/stats
func (h *IncomeHandler) GetIncomeStats(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	startDate, endDate, err := statsRange(c)
	if err != nil {
		return NewDomainError(c, err, "Invalid date range")
	}

	stats, err := h.incomeService.GetIncomeStats(userID, startDate, endDate)
	if err != nil {
		return NewDomainError(c, err, "Failed to get income stats")
	}

	return OK(c, "Income stats retrieved successfully", stats)
}

// GetMonthlyIncome handles GET /get-incomes/monthly
func (h *IncomeHandler) GetMonthlyIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year := time.Now().Year()
	if raw := c.QueryParam("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Invalid year")
		}
		year = n
	}

	totals, err := h.incomeService.GetMonthlyIncome(userID, year)
	if err != nil {
		return NewDomainError(c, err, "Failed to get monthly income")
	}

	return OK(c, "Monthly income retrieved successfully", totals)
}
