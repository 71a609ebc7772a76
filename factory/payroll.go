/*
Package factory provides JSON to Go conversion for payroll inputs.

PURPOSE:
  Converts the raw form data of the presentation layer (entrance/exit
  strings, flexible markers, checkboxes) into the typed inputs of the
  payroll engine. The presentation layer keeps a mutable draft and submits
  a JSON snapshot; the factory turns that snapshot into immutable values.

JSON SCHEMA:
  {
    "schedule": {
      "id": "turno-4b",
      "name": "Turno 4B",
      "derive_weekend": false,
      "days": [
        {"weekday": "monday", "entrance": "18:50", "exit": "02:00",
         "flexible": "azul", "flexible_minutes": 0,
         "holiday": false, "weekend": false}
      ]
    },
    "rates": {"base": 14.64, "night": 3.72, "holiday": 10.98, "weekend": 5.80},
    "withholding": {"percent": 14, "additional_percent": 11}
  }

DAY RULES:
  - entrance and exit both blank:   day off
  - only one of them present:       day off (partial data while editing)
  - malformed literal:              DayError wrapping clock.ErrInvalidTimeOfDay
  - weekday blank:                  Monday + position in the list
  - flexible markers "azul"/"rojo": +60 minutes each, added to
                                    flexible_minutes
  - derive_weekend:                 Saturday and Sunday get the weekend flag

USAGE:
  f := factory.NewPayrollFactory()
  input, err := f.ParsePayroll(jsonString)
  result := payroll.Compute(input.Schedule, input.Rates, input.Withholding)

SEE ALSO:
  - payroll/types.go: typed inputs
  - regimes/presets.go: ready-made JSON
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/clock"
	"github.com/warp/payroll-engine/payroll"
)

// FlexibleMarkerMinutes is what a legacy flexible marker adds to a day.
const FlexibleMarkerMinutes = 60

var (
	ErrUnknownWeekday  = errors.New("unknown weekday")
	ErrUnknownFlexible = errors.New("unknown flexible marker")
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PayrollJSON is a complete computation request.
type PayrollJSON struct {
	Schedule    ScheduleJSON    `json:"schedule"`
	Rates       RateTableJSON   `json:"rates"`
	Withholding WithholdingJSON `json:"withholding"`
}

// ScheduleJSON is the JSON representation of a week.
type ScheduleJSON struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name,omitempty"`
	DeriveWeekend bool      `json:"derive_weekend,omitempty"`
	Days          []DayJSON `json:"days"`
}

// DayJSON is one day as captured by the form.
type DayJSON struct {
	Weekday         string `json:"weekday,omitempty"`
	Entrance        string `json:"entrance,omitempty"`
	Exit            string `json:"exit,omitempty"`
	FlexibleMinutes int    `json:"flexible_minutes,omitempty"`
	Flexible        string `json:"flexible,omitempty"` // "", "azul", "rojo"
	Holiday         bool   `json:"holiday,omitempty"`
	Weekend         bool   `json:"weekend,omitempty"`
}

// RateTableJSON is the JSON representation of a rate regime.
type RateTableJSON struct {
	Base    decimal.Decimal `json:"base"`
	Night   decimal.Decimal `json:"night"`
	Holiday decimal.Decimal `json:"holiday"`
	Weekend decimal.Decimal `json:"weekend"`
}

// WithholdingJSON holds both withholding percentages.
type WithholdingJSON struct {
	Percent           decimal.Decimal `json:"percent"`
	AdditionalPercent decimal.Decimal `json:"additional_percent"`
}

// PayrollInput is the typed form of PayrollJSON.
type PayrollInput struct {
	Schedule    payroll.WeeklySchedule
	Rates       payroll.RateTable
	Withholding payroll.Withholding
}

// IsClientError reports whether err comes from bad caller input, either in
// the JSON itself or in the values it describes.
func IsClientError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return payroll.IsClientError(err) ||
		errors.Is(err, ErrUnknownWeekday) ||
		errors.Is(err, ErrUnknownFlexible) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr)
}

// DayError points at the day of the schedule that failed to parse.
type DayError struct {
	Index int
	Err   error
}

func (e *DayError) Error() string {
	return fmt.Sprintf("day %d: %v", e.Index, e.Err)
}

func (e *DayError) Unwrap() error { return e.Err }

// =============================================================================
// PAYROLL FACTORY
// =============================================================================

// PayrollFactory converts JSON payroll inputs to engine types.
type PayrollFactory struct{}

// NewPayrollFactory creates a new factory.
func NewPayrollFactory() *PayrollFactory {
	return &PayrollFactory{}
}

// ParsePayroll parses a JSON string into typed engine inputs.
func (f *PayrollFactory) ParsePayroll(jsonStr string) (*PayrollInput, error) {
	var pj PayrollJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse payroll JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PayrollJSON into engine inputs.
func (f *PayrollFactory) FromJSON(pj PayrollJSON) (*PayrollInput, error) {
	schedule, err := f.Schedule(pj.Schedule)
	if err != nil {
		return nil, err
	}
	rates, err := f.Rates(pj.Rates)
	if err != nil {
		return nil, err
	}
	withholding, err := f.Withholding(pj.Withholding)
	if err != nil {
		return nil, err
	}
	return &PayrollInput{Schedule: schedule, Rates: rates, Withholding: withholding}, nil
}

// ParseSchedule parses a schedule JSON string.
func (f *PayrollFactory) ParseSchedule(jsonStr string) (payroll.WeeklySchedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return payroll.WeeklySchedule{}, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.Schedule(sj)
}

// Schedule converts ScheduleJSON into a WeeklySchedule.
func (f *PayrollFactory) Schedule(sj ScheduleJSON) (payroll.WeeklySchedule, error) {
	if len(sj.Days) > payroll.MaxDays {
		return payroll.WeeklySchedule{}, fmt.Errorf("%w: got %d", payroll.ErrTooManyDays, len(sj.Days))
	}

	days := make([]payroll.DayEntry, 0, len(sj.Days))
	for i, dj := range sj.Days {
		day, err := parseDay(i, dj, sj.DeriveWeekend)
		if err != nil {
			return payroll.WeeklySchedule{}, &DayError{Index: i, Err: err}
		}
		days = append(days, day)
	}
	return payroll.NewWeeklySchedule(days...)
}

// Rates converts RateTableJSON into a validated RateTable.
func (f *PayrollFactory) Rates(rj RateTableJSON) (payroll.RateTable, error) {
	return payroll.NewRateTable(rj.Base, rj.Night, rj.Holiday, rj.Weekend)
}

// Withholding converts WithholdingJSON into a validated Withholding.
func (f *PayrollFactory) Withholding(wj WithholdingJSON) (payroll.Withholding, error) {
	return payroll.NewWithholding(wj.Percent, wj.AdditionalPercent)
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDay(index int, dj DayJSON, deriveWeekend bool) (payroll.DayEntry, error) {
	weekday := time.Weekday((int(time.Monday) + index) % 7)
	if strings.TrimSpace(dj.Weekday) != "" {
		wd, err := ParseWeekday(dj.Weekday)
		if err != nil {
			return payroll.DayEntry{}, err
		}
		weekday = wd
	}

	flexible, err := parseFlexible(dj.Flexible)
	if err != nil {
		return payroll.DayEntry{}, err
	}

	day := payroll.DayEntry{
		Weekday:         weekday,
		FlexibleMinutes: dj.FlexibleMinutes + flexible,
		Holiday:         dj.Holiday,
		Weekend:         dj.Weekend || (deriveWeekend && isWeekend(weekday)),
	}

	entrance, exit := strings.TrimSpace(dj.Entrance), strings.TrimSpace(dj.Exit)
	start, err := parseOptionalTime("entrance", entrance)
	if err != nil {
		return payroll.DayEntry{}, err
	}
	end, err := parseOptionalTime("exit", exit)
	if err != nil {
		return payroll.DayEntry{}, err
	}
	if entrance == "" || exit == "" {
		// Incomplete days are days off, not errors. A malformed literal on
		// the other side has already been rejected above.
		return day, nil
	}

	shift := clock.NewShift(start, end)
	day.Shift = &shift
	return day, nil
}

// parseOptionalTime parses a non-blank literal; a blank one yields zero.
func parseOptionalTime(field, literal string) (clock.TimeOfDay, error) {
	if literal == "" {
		return 0, nil
	}
	t, err := clock.Parse(literal)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func parseFlexible(marker string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "", "none", "ninguna":
		return 0, nil
	case "azul", "done":
		return FlexibleMarkerMinutes, nil
	case "rojo", "not_done":
		return FlexibleMarkerMinutes, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFlexible, marker)
	}
}

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday, "lunes": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "martes": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "miercoles": time.Wednesday, "miércoles": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "jueves": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "viernes": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "sabado": time.Saturday, "sábado": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday, "domingo": time.Sunday,
}

// ParseWeekday accepts English names, their three-letter abbreviations and
// Spanish names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
	}
	return wd, nil
}

func isWeekend(wd time.Weekday) bool {
	return wd == time.Saturday || wd == time.Sunday
}

// =============================================================================
// REVERSE CONVERSION
// =============================================================================

// RatesToJSON converts a RateTable back to its JSON form.
func RatesToJSON(r payroll.RateTable) RateTableJSON {
	return RateTableJSON{Base: r.Base, Night: r.Night, Holiday: r.Holiday, Weekend: r.Weekend}
}

// WithholdingToJSON converts a Withholding back to its JSON form.
func WithholdingToJSON(w payroll.Withholding) WithholdingJSON {
	return WithholdingJSON{Percent: w.Percent, AdditionalPercent: w.AdditionalPercent}
}

// ScheduleToJSON converts a WeeklySchedule back to its JSON form. Flexible
// markers are folded into flexible_minutes.
func ScheduleToJSON(id, name string, s payroll.WeeklySchedule) ScheduleJSON {
	sj := ScheduleJSON{ID: id, Name: name, Days: make([]DayJSON, 0, s.Len())}
	for _, d := range s.Days() {
		dj := DayJSON{
			Weekday:         strings.ToLower(d.Weekday.String()),
			FlexibleMinutes: d.FlexibleMinutes,
			Holiday:         d.Holiday,
			Weekend:         d.Weekend,
		}
		if d.Shift != nil {
			dj.Entrance = d.Shift.Start.String()
			dj.Exit = d.Shift.End.String()
		}
		sj.Days = append(sj.Days, dj)
	}
	return sj
}
