package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/clock"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

const turno4BJSON = `{
	"schedule": {
		"id": "turno-4b",
		"name": "Turno 4B",
		"days": [
			{"weekday": "lunes", "entrance": "18:50", "exit": "02:00"},
			{"weekday": "martes", "entrance": "18:50", "exit": "02:00", "flexible": "azul"},
			{"weekday": "miércoles", "entrance": "18:50", "exit": "02:00", "holiday": true},
			{"weekday": "jueves", "entrance": "18:50", "exit": "02:00", "flexible_minutes": -30},
			{"weekday": "viernes", "entrance": "18:50"}
		]
	},
	"rates": {"base": 14.64, "night": 3.72, "holiday": 10.98, "weekend": "5.80"},
	"withholding": {"percent": 14, "additional_percent": 11}
}`

func TestParsePayroll_Turno4B(t *testing.T) {
	f := factory.NewPayrollFactory()

	input, err := f.ParsePayroll(turno4BJSON)
	require.NoError(t, err)

	days := input.Schedule.Days()
	require.Len(t, days, 5)

	assert.Equal(t, time.Monday, days[0].Weekday)
	require.NotNil(t, days[0].Shift)
	assert.Equal(t, 430, days[0].Shift.Duration())

	assert.Equal(t, 60, days[1].FlexibleMinutes, "azul marker adds an hour")
	assert.True(t, days[2].Holiday)
	assert.Equal(t, time.Wednesday, days[2].Weekday)
	assert.Equal(t, -30, days[3].FlexibleMinutes)

	// Friday only has an entrance: treated as a day off.
	assert.False(t, days[4].HasShift())
	assert.Equal(t, time.Friday, days[4].Weekday)

	assert.Equal(t, "14.64", input.Rates.Base.String())
	assert.Equal(t, "5.8", input.Rates.Weekend.String())
	assert.Equal(t, "25", input.Withholding.Total().String())

	result := payroll.Compute(input.Schedule, input.Rates, input.Withholding)
	assert.False(t, result.HasAnomalies())
	assert.Equal(t, 430+490+430+400, result.WorkedMinutes)
}

func TestSchedule_DefaultWeekdaysFollowPosition(t *testing.T) {
	f := factory.NewPayrollFactory()

	s, err := f.Schedule(factory.ScheduleJSON{Days: make([]factory.DayJSON, 7)})
	require.NoError(t, err)

	want := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	for i, d := range s.Days() {
		assert.Equal(t, want[i], d.Weekday)
		assert.False(t, d.HasShift())
	}
}

func TestSchedule_DeriveWeekend(t *testing.T) {
	f := factory.NewPayrollFactory()
	days := []factory.DayJSON{
		{Weekday: "friday", Entrance: "09:00", Exit: "17:00"},
		{Weekday: "saturday", Entrance: "09:00", Exit: "17:00"},
		{Weekday: "Sun", Entrance: "09:00", Exit: "17:00"},
	}

	// GIVEN: derive_weekend off, the weekday label is ignored
	s, err := f.Schedule(factory.ScheduleJSON{Days: days})
	require.NoError(t, err)
	for _, d := range s.Days() {
		assert.False(t, d.Weekend)
	}

	// WHEN: derive_weekend on
	s, err = f.Schedule(factory.ScheduleJSON{Days: days, DeriveWeekend: true})
	require.NoError(t, err)

	// THEN: Saturday and Sunday get the flag
	assert.False(t, s.Day(0).Weekend)
	assert.True(t, s.Day(1).Weekend)
	assert.True(t, s.Day(2).Weekend)
}

func TestSchedule_MalformedTimeIsRejected(t *testing.T) {
	f := factory.NewPayrollFactory()

	_, err := f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{
		{Entrance: "09:00", Exit: "17:00"},
		{Entrance: "25:00", Exit: "02:00"},
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, clock.ErrInvalidTimeOfDay)
	assert.True(t, payroll.IsClientError(err))

	var dayErr *factory.DayError
	require.ErrorAs(t, err, &dayErr)
	assert.Equal(t, 1, dayErr.Index)
}

func TestSchedule_MalformedTimeWithBlankCounterpart(t *testing.T) {
	f := factory.NewPayrollFactory()

	tests := []struct {
		name  string
		day   factory.DayJSON
		field string
	}{
		{"malformed entrance, blank exit", factory.DayJSON{Entrance: "25:99"}, "entrance"},
		{"blank entrance, malformed exit", factory.DayJSON{Exit: "xx"}, "exit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: one side blank, the other not a valid time
			// WHEN
			_, err := f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{tt.day}})

			// THEN: rejected, not turned into a day off
			require.Error(t, err)
			assert.ErrorIs(t, err, clock.ErrInvalidTimeOfDay)
			assert.Contains(t, err.Error(), tt.field)

			var dayErr *factory.DayError
			require.ErrorAs(t, err, &dayErr)
			assert.Equal(t, 0, dayErr.Index)
		})
	}
}

func TestSchedule_BlankSideIsDayOff(t *testing.T) {
	f := factory.NewPayrollFactory()

	s, err := f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{{Entrance: "18:50"}}})
	require.NoError(t, err)
	assert.Nil(t, s.Days()[0].Shift)
}

func TestSchedule_UnknownLabels(t *testing.T) {
	f := factory.NewPayrollFactory()

	_, err := f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{{Weekday: "funday"}}})
	assert.ErrorIs(t, err, factory.ErrUnknownWeekday)

	_, err = f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{{Flexible: "verde"}}})
	assert.ErrorIs(t, err, factory.ErrUnknownFlexible)
}

func TestSchedule_TooManyDays(t *testing.T) {
	f := factory.NewPayrollFactory()
	_, err := f.Schedule(factory.ScheduleJSON{Days: make([]factory.DayJSON, 8)})
	assert.ErrorIs(t, err, payroll.ErrTooManyDays)
}

func TestFromJSON_InvalidRatesAndWithholding(t *testing.T) {
	f := factory.NewPayrollFactory()

	_, err := f.ParsePayroll(`{"schedule": {"days": []}, "rates": {"base": -1}}`)
	assert.ErrorIs(t, err, payroll.ErrNegativeRate)

	_, err = f.ParsePayroll(`{"schedule": {"days": []}, "rates": {"base": 1}, "withholding": {"percent": 120}}`)
	assert.ErrorIs(t, err, payroll.ErrInvalidWithholding)

	_, err = f.ParsePayroll(`{"schedule": `)
	assert.Error(t, err)
}

func TestScheduleToJSON_RoundTripsThroughFactory(t *testing.T) {
	f := factory.NewPayrollFactory()
	first, err := f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{
		{Weekday: "saturday", Entrance: "22:00", Exit: "06:00", Weekend: true, Holiday: true, FlexibleMinutes: 15},
		{Weekday: "sunday"},
	}})
	require.NoError(t, err)

	sj := factory.ScheduleToJSON("id", "name", first)
	assert.Equal(t, "saturday", sj.Days[0].Weekday)
	assert.Equal(t, "22:00", sj.Days[0].Entrance)
	assert.Equal(t, "06:00", sj.Days[0].Exit)

	again, err := f.Schedule(sj)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestIsClientError(t *testing.T) {
	f := factory.NewPayrollFactory()

	_, err := f.ParsePayroll(`{"schedule": `)
	assert.True(t, factory.IsClientError(err))

	_, err = f.ParsePayroll(`{"schedule": {"days": "monday"}}`)
	assert.True(t, factory.IsClientError(err))

	_, err = f.Schedule(factory.ScheduleJSON{Days: []factory.DayJSON{{Weekday: "funday"}}})
	assert.True(t, factory.IsClientError(err))

	assert.False(t, factory.IsClientError(assert.AnError))
}
