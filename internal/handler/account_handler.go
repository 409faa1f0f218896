package handler

import (
	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance,omitempty"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// CreateAccount handles POST /add-account
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	balance := decimal.Zero
	if req.Balance != "" {
		var err error
		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			return NewValidationError(c, "Balance must be a valid decimal number")
		}
	}

	account, err := h.accountService.CreateAccount(userID, service.CreateAccountInput{
		Name:    req.Name,
		Type:    req.Type,
		Balance: balance,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to create account")
	}

	log.Info().Str("user_id", userID).Str("account_id", account.ID.String()).Str("name", account.Name).Msg("Account created")

	return Created(c, "Account created successfully", account)
}

// GetAccounts handles GET /get-accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	accounts, err := h.accountService.GetAccounts(userID)
	if err != nil {
		return NewDomainError(c, err, "Failed to get accounts")
	}

	return OK(c, "Accounts retrieved successfully", accounts)
}

// GetAccount handles GET /get-account/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid account id")
	}

	account, err := h.accountService.GetAccountByID(userID, id)
	if err != nil {
		return NewDomainError(c, err, "Failed to get account")
	}

	return OK(c, "Account retrieved successfully", account)
}

// UpdateAccount handles PUT /update-account/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid account id")
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	account, err := h.accountService.UpdateAccount(userID, id, service.UpdateAccountInput{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to update account")
	}

	return OK(c, "Account updated successfully", account)
}

// DeleteAccount handles DELETE /delete-account/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid account id")
	}

	if err := h.accountService.DeleteAccount(userID, id); err != nil {
		return NewDomainError(c, err, "Failed to delete account")
	}

	log.Info().Str("user_id", userID).Str("account_id", id.String()).Msg("Account deleted")

	return OK(c, "Account deleted successfully", nil)
}
