package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var errInvalidID = errors.New("invalid id")

// parseIDParam parses a UUID path parameter
func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// parseDateQuery parses an optional RFC 3339 or YYYY-MM-DD date query
// parameter; missing returns (nil, nil)
func parseDateQuery(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.ErrDateRangeInvalid
	}
	return &t, nil
}

// parseDate parses a required date value from a request body field
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, domain.ErrDateRequired
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, domain.ErrDateRangeInvalid
	}
	return t, nil
}

// parseDecimalQuery parses an optional decimal query parameter
func parseDecimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.ErrAmountInvalid
	}
	return &d, nil
}

// parseUUIDQuery parses an optional UUID query parameter
func parseUUIDQuery(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errInvalidID
	}
	return &id, nil
}

// parsePageQuery parses page/limit query parameters, zero when absent so
// repositories apply their defaults
func parsePageQuery(c echo.Context) (page, perPage int32) {
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = int32(n)
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			perPage = int32(n)
		}
	}
	return page, perPage
}

// entryFiltersFromQuery builds expense/income list filters from query
// parameters
func entryFiltersFromQuery(c echo.Context) (*domain.EntryFilters, error) {
	startDate, err := parseDateQuery(c, "startDate")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateQuery(c, "endDate")
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
	page, perPage := parsePageQuery(c)

	return &domain.EntryFilters{
		StartDate:  startDate,
		EndDate:    endDate,
		CategoryID: categoryID,
		MinAmount:  minAmount,
		MaxAmount:  maxAmount,
		Page:       page,
		PerPage:    perPage,
	}, nil
}
