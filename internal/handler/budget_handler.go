package handler

import (
	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	Name        string  `json:"name"`
	Amount      string  `json:"amount"`
	Limit       string  `json:"limit,omitempty"`
	AccountID   string  `json:"accountId"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	Name        *string `json:"name"`
	Amount      *string `json:"amount"`
	Limit       *string `json:"limit"`
	Description *string `json:"description"`
	EndDate     *string `json:"endDate"`
}

// SpendingRequest represents the record-spending request body
type SpendingRequest struct {
	Amount string `json:"amount"`
}

// CreateBudget handles POST /add-budget
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Amount must be a valid decimal number")
	}

	limit := decimal.Zero
	if req.Limit != "" {
		limit, err = decimal.NewFromString(req.Limit)
		if err != nil {
			return NewValidationError(c, "Limit must be a valid decimal number")
		}
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return NewValidationError(c, "Invalid account id")
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return NewValidationError(c, "Invalid category id")
		}
		categoryID = &id
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return NewDomainError(c, err, "Invalid start date")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return NewDomainError(c, err, "Invalid end date")
	}

	budget, err := h.budgetService.CreateBudget(userID, service.CreateBudgetInput{
		Name:        req.Name,
		Amount:      amount,
		Limit:       limit,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to create budget")
	}

	log.Info().
		Str("user_id", userID).
		Str("budget_id", budget.ID.String()).
		Str("amount", budget.Amount.String()).
		Msg("Budget created")

	return Created(c, "Budget created successfully", budget)
}

// GetBudgets handles GET /get-budgets (active budgets only)
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetActiveBudgets(userID)
	if err != nil {
		return NewDomainError(c, err, "Failed to get budgets")
	}

	return OK(c, "Budgets retrieved successfully", budgets)
}

// GetAllBudgets handles GET /get-all-budgets (active and inactive)
func (h *BudgetHandler) GetAllBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetAllBudgets(userID)
	if err != nil {
		return NewDomainError(c, err, "Failed to get budgets")
	}

	return OK(c, "Budgets retrieved successfully", budgets)
}

// UpdateBudget handles PUT /update-budget/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget id")
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	input := service.UpdateBudgetInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Amount must be a valid decimal number")
		}
		input.Amount = &amount
	}
	if req.Limit != nil {
		limit, err := decimal.NewFromString(*req.Limit)
		if err != nil {
			return NewValidationError(c, "Limit must be a valid decimal number")
		}
		input.Limit = &limit
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			return NewDomainError(c, err, "Invalid end date")
		}
		input.EndDate = &endDate
	}

	budget, err := h.budgetService.UpdateBudget(userID, id, input)
	if err != nil {
		return NewDomainError(c, err, "Failed to update budget")
	}

	return OK(c, "Budget updated successfully", budget)
}

// DeleteBudget handles DELETE /delete-budget/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid budget id")
	}

	if err := h.budgetService.DeleteBudget(userID, id); err != nil {
		return NewDomainError(c, err, "Failed to delete budget")
	}

	log.Info().Str("user_id", userID).Str("budget_id", id.String()).Msg("Budget deleted")

	return OK(c, "Budget deleted successfully", nil)
}

// RecordSpending handles POST /delete-budget/:budgetId/spending
func (h *BudgetHandler) RecordSpending(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "budgetId")
	if err != nil {
		return NewValidationError(c, "Invalid budget id")
	}

	var req SpendingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Amount must be a valid decimal number")
	}

	budget, err := h.budgetService.RecordSpending(userID, id, amount)
	if err != nil {
		return NewDomainError(c, err, "Failed to record spending")
	}

	return OK(c, "Budget spending updated successfully", budget)
}

// CheckExpired handles POST /budgets/check-expired
func (h *BudgetHandler) CheckExpired(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	expired, err := h.budgetService.ExpireBudgets(userID)
	if err != nil {
		return NewDomainError(c, err, "Failed to check expired budgets")
	}

	return OK(c, "Expired budgets processed successfully", expired)
}
