/*
engine.go - Weekly payroll fold

PURPOSE:
  Folds a WeeklySchedule into a Result. Each worked day is priced on its
  own and the subtotals are summed in full precision; rounding happens once,
  on the weekly totals.

PER-DAY RULES:
  worked   = shift duration + flexible minutes, clamped at 0
  night    = night minutes of the clocked shift (flexible time never
             extends the interval)

  base     = worked × base/60
  night    = night × night/60                       (always, when > 0)
  holiday  = night × (holiday+night)/60
           + max(worked − night, 0) × holiday/60    (holiday days only)
  weekend  = worked × weekend/60                    (weekend days only)

WEEKLY TOTALS:
  gross = Σ day totals
  net   = gross × (1 − percent/100 − additional/100)
  hours = Σ worked / 60

EXAMPLE:
  18:50→02:00 at 14.64 base / 3.72 night:
    base  = 430 × 14.64/60 = 104.92
    night = 240 ×  3.72/60 =  14.88
    total                  = 119.80

SEE ALSO:
  - types.go: inputs and Result
  - clock/night.go: night overlap
*/
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/clock"
)

// NightCounter counts the night minutes of a shift.
type NightCounter func(clock.ShiftInterval) int

// Engine computes payroll results. The zero value uses the closed-form
// night counter.
type Engine struct {
	Night NightCounter
}

// NewEngine returns an engine using the given night counter, or the
// closed-form one when nil.
func NewEngine(night NightCounter) *Engine {
	return &Engine{Night: night}
}

var defaultEngine = &Engine{}

// Compute runs the default engine.
func Compute(schedule WeeklySchedule, rates RateTable, withholding Withholding) Result {
	return defaultEngine.Compute(schedule, rates, withholding)
}

// Compute folds the schedule into a Result. It is pure: identical inputs
// always yield identical results.
func (e *Engine) Compute(schedule WeeklySchedule, rates RateTable, withholding Withholding) Result {
	gross := decimal.Zero
	totalMinutes := 0

	var days []DayPay
	var anomalies []Anomaly

	for i, day := range schedule.days {
		pay, anomaly := e.priceDay(i, day, rates)
		days = append(days, pay)
		if anomaly != nil {
			anomalies = append(anomalies, *anomaly)
		}
		gross = gross.Add(pay.Total())
		totalMinutes += pay.WorkedMinutes
	}

	return Result{
		Gross:         RoundMoney(gross),
		Net:           RoundMoney(gross.Mul(withholding.NetFactor())),
		Hours:         RoundMoney(decimal.NewFromInt(int64(totalMinutes)).Div(sixty)),
		WorkedMinutes: totalMinutes,
		Days:          days,
		Anomalies:     anomalies,
	}
}

func (e *Engine) priceDay(index int, day DayEntry, rates RateTable) (DayPay, *Anomaly) {
	pay := DayPay{
		Index:   index,
		Weekday: day.Weekday,
		Base:    decimal.Zero,
		Night:   decimal.Zero,
		Holiday: decimal.Zero,
		Weekend: decimal.Zero,
	}
	if !day.HasShift() {
		return pay, nil
	}

	shift := *day.Shift
	pay.Worked = true
	pay.ShiftMinutes = shift.Duration()
	pay.NightMinutes = e.nightMinutes(shift)

	var anomaly *Anomaly
	worked := pay.ShiftMinutes + day.FlexibleMinutes
	if worked < 0 {
		anomaly = &Anomaly{
			Kind:            AnomalyNegativeDuration,
			Index:           index,
			Weekday:         day.Weekday,
			ShiftMinutes:    pay.ShiftMinutes,
			FlexibleMinutes: day.FlexibleMinutes,
		}
		worked = 0
	}
	pay.WorkedMinutes = worked

	pay.Base = MinutesAt(worked, rates.Base)
	if pay.NightMinutes > 0 {
		pay.Night = MinutesAt(pay.NightMinutes, rates.Night)
	}
	if day.Holiday {
		// A negative flexible adjustment can leave fewer paid minutes than
		// night minutes; the day-hour share then contributes nothing.
		dayMinutes := max(worked-pay.NightMinutes, 0)
		pay.Holiday = MinutesAt(pay.NightMinutes, rates.Holiday.Add(rates.Night)).
			Add(MinutesAt(dayMinutes, rates.Holiday))
	}
	if day.Weekend {
		pay.Weekend = MinutesAt(worked, rates.Weekend)
	}
	return pay, anomaly
}

func (e *Engine) nightMinutes(s clock.ShiftInterval) int {
	if e == nil || e.Night == nil {
		return clock.NightMinutes(s)
	}
	return e.Night(s)
}
