package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")

	ErrAccountNotFound      = errors.New("account not found")
	ErrBudgetNotFound       = errors.New("budget not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrParentNotFound       = errors.New("parent category not found")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrIncomeNotFound       = errors.New("income not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrAccountNameTaken  = errors.New("account with this name already exists")
	ErrCategoryNameTaken = errors.New("category with this name already exists")
	ErrAccountInUse      = errors.New("account is still referenced by budgets or transactions")

	ErrInsufficientFunds   = errors.New("insufficient funds in the associated account")
	ErrBudgetLimitExceeded = errors.New("budget limit exceeded")
	ErrBudgetInactive      = errors.New("budget is inactive")
	ErrAmountBelowSpending = errors.New("budget amount cannot be below current spending")
	ErrCategoryHasChildren = errors.New("cannot delete category with subcategories")
	ErrCategorySelfParent  = errors.New("category cannot be its own parent")

	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name exceeds maximum length")
	ErrTitleRequired    = errors.New("title is required")
	ErrAmountInvalid    = errors.New("amount must be greater than zero")
	ErrDateRequired     = errors.New("date is required")
	ErrDateRangeInvalid = errors.New("invalid start or end date")
	ErrInvalidPeriod    = errors.New("invalid time period")
	ErrInvalidType      = errors.New("invalid type")
)

// Validation constants
const (
	MaxAccountNameLength  = 255
	MaxCategoryNameLength = 255
	MaxTitleLength        = 100
	MaxDescriptionLength  = 500
)
