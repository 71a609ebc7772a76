/*
Package payroll provides the weekly payroll computation engine.

PURPOSE:
  Estimates a worker's weekly gross and net pay from a per-day work
  schedule. Each worked day earns the base rate plus whichever premiums
  apply (night, holiday, weekend); a flat withholding turns gross into net.

KEY CONCEPTS IN THIS FILE (types.go):
  - RateTable:      four hourly rates (base, night, holiday, weekend)
  - Withholding:    income tax estimate + additional social contribution
  - DayEntry:       one day of the week, optionally with a clocked shift
  - WeeklySchedule: up to seven ordered days
  - Result:         gross, net and hours, plus a per-day breakdown

DESIGN PRINCIPLES:
  1. Immutability: inputs are values, results are never mutated in place
  2. Precision: money is decimal.Decimal, rounded only at the output step
  3. Validation at construction: rates and percentages are checked when the
     typed inputs are built, so Compute itself cannot fail

USAGE:
  rates, _ := payroll.NewRateTable(base, night, holiday, weekend)
  withholding, _ := payroll.NewWithholding(pct(14), pct(11))
  schedule, _ := payroll.NewWeeklySchedule(days...)
  result := payroll.Compute(schedule, rates, withholding)

SEE ALSO:
  - engine.go: the per-day fold
  - cache.go: memoized computation
  - clock/night.go: night overlap
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/clock"
)

var (
	sixty   = decimal.NewFromInt(clock.MinutesPerHour)
	hundred = decimal.NewFromInt(100)
)

// MaxDays is the length of a full week.
const MaxDays = 7

// =============================================================================
// MONEY HELPERS
// =============================================================================

// MinutesAt prices a number of minutes at an hourly rate.
func MinutesAt(minutes int, hourlyRate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Mul(hourlyRate).Div(sixty)
}

// RoundMoney rounds half away from zero to two places. Amounts in this
// package are never negative, so that is round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// RATE TABLE
// =============================================================================

// RateTable holds the hourly rates of a pay regime. Premiums are paid on
// top of the base rate, never instead of it.
type RateTable struct {
	Base    decimal.Decimal `json:"base"`
	Night   decimal.Decimal `json:"night"`
	Holiday decimal.Decimal `json:"holiday"`
	Weekend decimal.Decimal `json:"weekend"`
}

// NewRateTable validates and builds a rate table.
func NewRateTable(base, night, holiday, weekend decimal.Decimal) (RateTable, error) {
	r := RateTable{Base: base, Night: night, Holiday: holiday, Weekend: weekend}
	if err := r.Validate(); err != nil {
		return RateTable{}, err
	}
	return r, nil
}

// Validate rejects negative rates.
func (r RateTable) Validate() error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"base", r.Base},
		{"night", r.Night},
		{"holiday", r.Holiday},
		{"weekend", r.Weekend},
	} {
		if f.value.IsNegative() {
			return &RateError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// =============================================================================
// WITHHOLDING
// =============================================================================

// Withholding is the share of gross pay deducted to reach net pay. Percent
// is the income tax estimate, AdditionalPercent the social contribution.
type Withholding struct {
	Percent           decimal.Decimal `json:"percent"`
	AdditionalPercent decimal.Decimal `json:"additional_percent"`
}

// NewWithholding validates both percentages. Each must lie in [0, 100] and
// together they may not exceed 100.
func NewWithholding(percent, additional decimal.Decimal) (Withholding, error) {
	w := Withholding{Percent: percent, AdditionalPercent: additional}
	if err := w.Validate(); err != nil {
		return Withholding{}, err
	}
	return w, nil
}

func (w Withholding) Validate() error {
	if w.Percent.IsNegative() || w.Percent.GreaterThan(hundred) {
		return &WithholdingError{Field: "percent", Value: w.Percent}
	}
	if w.AdditionalPercent.IsNegative() || w.AdditionalPercent.GreaterThan(hundred) {
		return &WithholdingError{Field: "additional_percent", Value: w.AdditionalPercent}
	}
	if w.Total().GreaterThan(hundred) {
		return &WithholdingError{Field: "total", Value: w.Total()}
	}
	return nil
}

// Total is the combined withholding percentage.
func (w Withholding) Total() decimal.Decimal {
	return w.Percent.Add(w.AdditionalPercent)
}

// NetFactor is the fraction of gross pay that reaches the worker.
func (w Withholding) NetFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(w.Percent.Div(hundred)).Sub(w.AdditionalPercent.Div(hundred))
}

// =============================================================================
// DAY ENTRY
// =============================================================================

// DayEntry is one calendar day of the schedule. A nil Shift means the day
// was not worked; it contributes no pay and no hours.
type DayEntry struct {
	Weekday time.Weekday
	Shift   *clock.ShiftInterval

	// FlexibleMinutes is a signed adjustment to the paid duration. It never
	// moves the clocked interval.
	FlexibleMinutes int

	Holiday bool
	Weekend bool
}

// Worked returns a day with the given shift.
func Worked(weekday time.Weekday, shift clock.ShiftInterval) DayEntry {
	return DayEntry{Weekday: weekday, Shift: &shift}
}

// Off returns a day without a shift.
func Off(weekday time.Weekday) DayEntry {
	return DayEntry{Weekday: weekday}
}

func (d DayEntry) HasShift() bool { return d.Shift != nil }

// WithFlexible returns a copy of the day with the flexible adjustment set.
func (d DayEntry) WithFlexible(minutes int) DayEntry {
	d.FlexibleMinutes = minutes
	return d
}

func (d DayEntry) AsHoliday() DayEntry {
	d.Holiday = true
	return d
}

func (d DayEntry) AsWeekend() DayEntry {
	d.Weekend = true
	return d
}

// clone detaches the shift pointer so the schedule owns its copy.
func (d DayEntry) clone() DayEntry {
	if d.Shift != nil {
		s := *d.Shift
		d.Shift = &s
	}
	return d
}

// =============================================================================
// WEEKLY SCHEDULE
// =============================================================================

// WeeklySchedule is an ordered, immutable sequence of at most seven days.
type WeeklySchedule struct {
	days []DayEntry
}

// NewWeeklySchedule copies the given days into a schedule.
func NewWeeklySchedule(days ...DayEntry) (WeeklySchedule, error) {
	if len(days) > MaxDays {
		return WeeklySchedule{}, fmt.Errorf("%w: got %d", ErrTooManyDays, len(days))
	}
	owned := make([]DayEntry, len(days))
	for i, d := range days {
		owned[i] = d.clone()
	}
	return WeeklySchedule{days: owned}, nil
}

// Len returns the number of days in the schedule.
func (s WeeklySchedule) Len() int { return len(s.days) }

// Day returns a copy of the i-th day.
func (s WeeklySchedule) Day(i int) DayEntry { return s.days[i].clone() }

// Days returns a copy of all days.
func (s WeeklySchedule) Days() []DayEntry {
	out := make([]DayEntry, len(s.days))
	for i, d := range s.days {
		out[i] = d.clone()
	}
	return out
}

// =============================================================================
// RESULT
// =============================================================================

// DayPay is the full-precision breakdown of one day.
type DayPay struct {
	Index   int          `json:"index"`
	Weekday time.Weekday `json:"weekday"`
	Worked  bool         `json:"worked"`

	ShiftMinutes  int `json:"shift_minutes"`
	WorkedMinutes int `json:"worked_minutes"`
	NightMinutes  int `json:"night_minutes"`

	Base    decimal.Decimal `json:"base"`
	Night   decimal.Decimal `json:"night"`
	Holiday decimal.Decimal `json:"holiday"`
	Weekend decimal.Decimal `json:"weekend"`
}

// Total is the unrounded pay for the day.
func (d DayPay) Total() decimal.Decimal {
	return d.Base.Add(d.Night).Add(d.Holiday).Add(d.Weekend)
}

// AnomalyKind classifies a non-fatal problem found while computing.
type AnomalyKind string

const (
	// AnomalyNegativeDuration: the flexible adjustment pushed the paid
	// duration below zero and it was clamped.
	AnomalyNegativeDuration AnomalyKind = "negative_duration"
)

// Anomaly records a day whose input was corrected during computation.
type Anomaly struct {
	Kind            AnomalyKind  `json:"kind"`
	Index           int          `json:"index"`
	Weekday         time.Weekday `json:"weekday"`
	ShiftMinutes    int          `json:"shift_minutes"`
	FlexibleMinutes int          `json:"flexible_minutes"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s on day %d (%s): shift %d min, flexible %+d min",
		a.Kind, a.Index, a.Weekday, a.ShiftMinutes, a.FlexibleMinutes)
}

// Result is the outcome of a payroll computation. Gross, Net and Hours are
// rounded to two places; Days keeps full precision.
type Result struct {
	Gross         decimal.Decimal
	Net           decimal.Decimal
	Hours         decimal.Decimal
	WorkedMinutes int

	Days      []DayPay
	Anomalies []Anomaly
}

// Withheld is the amount deducted from gross pay.
func (r Result) Withheld() decimal.Decimal {
	return r.Gross.Sub(r.Net)
}

// HasAnomalies reports whether any day was corrected.
func (r Result) HasAnomalies() bool { return len(r.Anomalies) > 0 }

func (r Result) clone() Result {
	r.Days = append([]DayPay(nil), r.Days...)
	r.Anomalies = append([]Anomaly(nil), r.Anomalies...)
	return r
}
