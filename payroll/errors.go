/*
errors.go - Error types for the payroll engine

ERROR CATEGORIES:
  1. Input errors - malformed time literals, negative rates, bad percentages
  2. Store errors - missing regimes, schedules or runs

  Incomplete days (only one of entrance/exit) are not errors: they are
  treated as days off. Negative adjusted durations are not errors either:
  they are clamped and reported as Anomaly values on the Result.

USAGE:
  if payroll.IsClientError(err) {
      // 400
  }
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/clock"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeOfDay is re-exported from clock for callers that only
	// import payroll.
	ErrInvalidTimeOfDay = clock.ErrInvalidTimeOfDay

	ErrNegativeRate       = errors.New("rate must not be negative")
	ErrInvalidWithholding = errors.New("withholding must be between 0 and 100 percent")
	ErrTooManyDays        = errors.New("schedule has more than 7 days")

	ErrRegimeNotFound   = errors.New("rate regime not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrRunNotFound      = errors.New("payroll run not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RateError names the rate that failed validation.
type RateError struct {
	Field string
	Value decimal.Decimal
}

func (e *RateError) Error() string {
	return fmt.Sprintf("invalid %s rate %s: must not be negative", e.Field, e.Value)
}

func (e *RateError) Unwrap() error { return ErrNegativeRate }

// WithholdingError names the percentage that failed validation.
type WithholdingError struct {
	Field string
	Value decimal.Decimal
}

func (e *WithholdingError) Error() string {
	return fmt.Sprintf("invalid withholding %s %s%%: must be between 0 and 100", e.Field, e.Value)
}

func (e *WithholdingError) Unwrap() error { return ErrInvalidWithholding }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeOfDay) ||
		errors.Is(err, ErrNegativeRate) ||
		errors.Is(err, ErrInvalidWithholding) ||
		errors.Is(err, ErrTooManyDays)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRegimeNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrRunNotFound)
}
