/*
Package clock models wall-clock minutes and the shifts built from them.

PURPOSE:
  A payroll day is described by an entrance and an exit read off a 24-hour
  clock. This package turns those "HH:MM" literals into minute-of-day values
  and pairs them into shift intervals that may run past midnight.

KEY CONCEPTS:
  - TimeOfDay:     minute of the day in [0, 1440)
  - ShiftInterval: half-open [Start, End) on the clock; End <= Start wraps
                   into the next day
  - NightWindow:   the premium window (22:00 to 06:00 by default)

INTERVAL CONVENTION:
  Every interval is half-open. A shift 22:00→06:00 covers minute 22:00 and
  stops right before 06:00, so it is exactly 480 minutes long.

  A shift whose exit equals its entrance is a full 24 hours, never zero.

USAGE:
  shift, err := clock.ParseShift("18:50", "02:00")
  shift.Duration()          // 430
  clock.NightMinutes(shift) // 240

SEE ALSO:
  - night.go: night window overlap
  - payroll/engine.go: consumer of shifts
*/
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
)

// =============================================================================
// TIME OF DAY
// =============================================================================

// TimeOfDay is a minute of the day in [0, 1440).
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour in 0-23 and a minute in 0-59.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return 0, &LiteralError{Literal: fmt.Sprintf("%d:%d", hour, minute), Reason: "hour out of range"}
	}
	if minute < 0 || minute > 59 {
		return 0, &LiteralError{Literal: fmt.Sprintf("%d:%d", hour, minute), Reason: "minute out of range"}
	}
	return TimeOfDay(hour*MinutesPerHour + minute), nil
}

// Parse reads an "HH:MM" literal. The hour may be written with one digit
// ("8:05"); the minute always takes two.
func Parse(s string) (TimeOfDay, error) {
	literal := strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(literal, ":")
	if !ok {
		return 0, &LiteralError{Literal: s, Reason: "expected HH:MM"}
	}
	if len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, &LiteralError{Literal: s, Reason: "expected HH:MM"}
	}

	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, &LiteralError{Literal: s, Reason: "hour is not a number"}
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, &LiteralError{Literal: s, Reason: "minute is not a number"}
	}

	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		var lit *LiteralError
		if errors.As(err, &lit) {
			return 0, &LiteralError{Literal: s, Reason: lit.Reason}
		}
		return 0, err
	}
	return t, nil
}

// MustParse is Parse for literals known at compile time. It panics on error.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (t TimeOfDay) Hour() int    { return int(t) / MinutesPerHour }
func (t TimeOfDay) Minute() int  { return int(t) % MinutesPerHour }
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// =============================================================================
// SHIFT INTERVAL
// =============================================================================

// ShiftInterval is a clocked shift. When End is not after Start the shift
// crosses midnight and finishes on the following day.
type ShiftInterval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewShift(start, end TimeOfDay) ShiftInterval {
	return ShiftInterval{Start: start, End: end}
}

// ParseShift parses an entrance and an exit literal into a shift.
func ParseShift(entrance, exit string) (ShiftInterval, error) {
	start, err := Parse(entrance)
	if err != nil {
		return ShiftInterval{}, fmt.Errorf("entrance: %w", err)
	}
	end, err := Parse(exit)
	if err != nil {
		return ShiftInterval{}, fmt.Errorf("exit: %w", err)
	}
	return NewShift(start, end), nil
}

// CrossesMidnight reports whether the shift finishes on the next day.
func (s ShiftInterval) CrossesMidnight() bool { return s.End <= s.Start }

// Bounds returns the shift on an absolute minute timeline starting at
// midnight of the entrance day. end is always in (start, start+1440].
func (s ShiftInterval) Bounds() (start, end int) {
	start, end = int(s.Start), int(s.End)
	if end <= start {
		end += MinutesPerDay
	}
	return start, end
}

// Duration is the clocked length of the shift in minutes, in (0, 1440].
func (s ShiftInterval) Duration() int {
	start, end := s.Bounds()
	return end - start
}

func (s ShiftInterval) String() string {
	return s.Start.String() + "→" + s.End.String()
}
