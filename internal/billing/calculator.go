// Package billing derives what a trainer is owed for a training from its date range
// and the per-day rate of the trainer's level.
package billing

import (
	"time"

	"trainingdesk/internal/apperr"

	"github.com/shopspring/decimal"
)

// MaxSpanYears bounds how long a single billed date range may be.
const MaxSpanYears = 10

// DateOnly drops the time of day and location, keeping the calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ServiceDays returns the billable days between start and end.
// A same-day training counts as one day; otherwise the count is end minus start,
// so a training from day 0 to day N bills N days, not N+1.
func ServiceDays(start, end time.Time) (int, error) {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return 0, apperr.Validation("end date %s is before start date %s", e.Format(time.DateOnly), s.Format(time.DateOnly))
	}
	if e.After(s.AddDate(MaxSpanYears, 0, 0)) {
		return 0, apperr.Validation("date range %s to %s is longer than %d years",
			s.Format(time.DateOnly), e.Format(time.DateOnly), MaxSpanYears)
	}
	if e.Equal(s) {
		return 1, nil
	}
	return int(e.Sub(s) / (24 * time.Hour)), nil
}

// Compute returns perDay multiplied by the service days of [start, end].
func Compute(start, end time.Time, perDay decimal.Decimal) (decimal.Decimal, int, error) {
	if perDay.IsNegative() {
		return decimal.Zero, 0, apperr.Validation("per-day rate must not be negative")
	}
	days, err := ServiceDays(start, end)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return perDay.Mul(decimal.NewFromInt(int64(days))), days, nil
}
