/*
Package regimes provides ready-made rate regimes and week templates.

PURPOSE:
  The engine is parameterized by a RateTable, a Withholding and a schedule.
  The variants a payroll office actually uses (the fixed five-day 4B shift,
  a configurable seven-day week) are just configurations of those inputs,
  collected here.

AVAILABLE PRESETS:
  ReferenceRates:       14.64 base, 3.72 night, 10.98 holiday, 5.80 weekend
  ReferenceWithholding: 14% income tax estimate + 11% social contribution
  Turno4BWeek:          Monday to Friday, 18:50→02:00
  SevenDayWeek:         Monday to Sunday, same shift every day, weekend
                        flag on Saturday and Sunday

EXAMPLE:
  result := payroll.Compute(regimes.Turno4BWeek(), regimes.ReferenceRates(),
      regimes.ReferenceWithholding())
  result.Gross // 599.00

SEE ALSO:
  - factory/payroll.go: JSON forms
*/
package regimes

import (
	"time"

	"github.com/warp/payroll-engine/clock"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

const (
	ReferenceRegimeID   = "reference"
	ReferenceRegimeName = "Reference jurisdiction"

	Turno4BEntrance = "18:50"
	Turno4BExit     = "02:00"
)

// =============================================================================
// RATES & WITHHOLDING
// =============================================================================

// ReferenceRates returns the rates of the reference jurisdiction.
func ReferenceRates() payroll.RateTable {
	return payroll.RateTable{
		Base:    payroll.MustParseDecimal("14.64"),
		Night:   payroll.MustParseDecimal("3.72"),
		Holiday: payroll.MustParseDecimal("10.98"),
		Weekend: payroll.MustParseDecimal("5.80"),
	}
}

// ReferenceWithholding returns the 14% + 11% estimate.
func ReferenceWithholding() payroll.Withholding {
	return payroll.Withholding{
		Percent:           payroll.MustParseDecimal("14"),
		AdditionalPercent: payroll.MustParseDecimal("11"),
	}
}

func ReferenceRatesJSON() factory.RateTableJSON {
	return factory.RatesToJSON(ReferenceRates())
}

func ReferenceWithholdingJSON() factory.WithholdingJSON {
	return factory.WithholdingToJSON(ReferenceWithholding())
}

// ReferenceRegime is the reference rate table as a storable record.
func ReferenceRegime() payroll.RegimeRecord {
	return payroll.RegimeRecord{
		ID:        ReferenceRegimeID,
		Name:      ReferenceRegimeName,
		Rates:     ReferenceRates(),
		CreatedAt: time.Now().UTC(),
	}
}

// =============================================================================
// WEEK TEMPLATES
// =============================================================================

// Turno4BWeek is the fixed five-day week, every day 18:50→02:00.
func Turno4BWeek() payroll.WeeklySchedule {
	shift := clock.NewShift(clock.MustParse(Turno4BEntrance), clock.MustParse(Turno4BExit))

	days := make([]payroll.DayEntry, 0, 5)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		days = append(days, payroll.Worked(wd, shift))
	}
	return mustSchedule(days)
}

// SevenDayWeek works the same shift every day of the week and flags
// Saturday and Sunday as weekend.
func SevenDayWeek(shift clock.ShiftInterval) payroll.WeeklySchedule {
	days := make([]payroll.DayEntry, 0, payroll.MaxDays)
	for i := 0; i < payroll.MaxDays; i++ {
		wd := time.Weekday((int(time.Monday) + i) % 7)
		d := payroll.Worked(wd, shift)
		if wd == time.Saturday || wd == time.Sunday {
			d = d.AsWeekend()
		}
		days = append(days, d)
	}
	return mustSchedule(days)
}

// Turno4BJSON is Turno4BWeek in the form the presentation layer edits.
func Turno4BJSON(id, name string) factory.ScheduleJSON {
	return factory.ScheduleToJSON(id, name, Turno4BWeek())
}

// SevenDayJSON is SevenDayWeek in JSON form.
func SevenDayJSON(id, name string, shift clock.ShiftInterval) factory.ScheduleJSON {
	return factory.ScheduleToJSON(id, name, SevenDayWeek(shift))
}

func mustSchedule(days []payroll.DayEntry) payroll.WeeklySchedule {
	s, err := payroll.NewWeeklySchedule(days...)
	if err != nil {
		panic(err)
	}
	return s
}
