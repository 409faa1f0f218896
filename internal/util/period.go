package util

import (
	"strings"
	"time"
)

// Report periods
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ValidPeriod returns true if period is one of daily, weekly or monthly
func ValidPeriod(period string) bool {
	switch strings.ToLower(period) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// PeriodRange returns the [start, end] window ending at now for a named
// period: the last 24 hours for daily, the last 7 days for weekly and the
// last calendar month for monthly
func PeriodRange(period string, now time.Time) (time.Time, time.Time) {
	switch strings.ToLower(period) {
	case PeriodDaily:
		return now.AddDate(0, 0, -1), now
	case PeriodWeekly:
		return now.AddDate(0, 0, -7), now
	default:
		return now.AddDate(0, -1, 0), now
	}
}

// DayBounds returns midnight at the start of t's day and the start of the
// next day, both in t's location
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
