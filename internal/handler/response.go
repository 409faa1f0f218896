package handler

import (
	"errors"
	"net/http"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Response is the success envelope: {message, data}
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope: {message, error?}
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// OK writes a 200 success envelope
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Message: message, Data: data})
}

// Created writes a 201 success envelope
func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Message: message, Data: data})
}

// NewValidationError creates a 400 validation error response
func NewValidationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// NewNotFoundError creates a 404 not found error response
func NewNotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Message: message})
}

// NewUnauthorizedError creates a 401 unauthorized error response
func NewUnauthorizedError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: message})
}

// NewInternalError creates a 500 internal error response
func NewInternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: message})
}

// notFoundErrors map to 404
var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrAccountNotFound,
	domain.ErrBudgetNotFound,
	domain.ErrCategoryNotFound,
	domain.ErrParentNotFound,
	domain.ErrExpenseNotFound,
	domain.ErrIncomeNotFound,
	domain.ErrTransactionNotFound,
	domain.ErrNotificationNotFound,
}

// badRequestErrors map to 400: validation failures, business rule
// violations and duplicate names all share the status per the API contract
var badRequestErrors = []error{
	domain.ErrAccountNameTaken,
	domain.ErrCategoryNameTaken,
	domain.ErrAccountInUse,
	domain.ErrInsufficientFunds,
	domain.ErrBudgetLimitExceeded,
	domain.ErrBudgetInactive,
	domain.ErrAmountBelowSpending,
	domain.ErrCategoryHasChildren,
	domain.ErrCategorySelfParent,
	domain.ErrNameRequired,
	domain.ErrNameTooLong,
	domain.ErrTitleRequired,
	domain.ErrAmountInvalid,
	domain.ErrDateRequired,
	domain.ErrDateRangeInvalid,
	domain.ErrInvalidPeriod,
	domain.ErrInvalidType,
}

// NewDomainError maps a service error to the response envelope: sentinel
// domain errors carry their own message and status, anything else is logged
// and wrapped as a 500
func NewDomainError(c echo.Context, err error, fallback string) error {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return NewNotFoundError(c, sentinel.Error())
		}
	}
	for _, sentinel := range badRequestErrors {
		if errors.Is(err, sentinel) {
			return NewValidationError(c, sentinel.Error())
		}
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
	return NewInternalError(c, fallback)
}
