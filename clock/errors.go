package clock

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeOfDay is returned for any literal that is not a valid "HH:MM".
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// LiteralError describes why a time literal was rejected.
type LiteralError struct {
	Literal string
	Reason  string
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("invalid time of day %q: %s", e.Literal, e.Reason)
}

func (e *LiteralError) Unwrap() error {
	return ErrInvalidTimeOfDay
}
