package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/clock"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/regimes"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRegimes_RoundTripKeepsDecimals(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: The reference regime
	require.NoError(t, store.SaveRegime(ctx, regimes.ReferenceRegime()))

	// WHEN: Reading it back
	got, err := store.GetRegime(ctx, regimes.ReferenceRegimeID)
	require.NoError(t, err)

	// THEN: Rates are exact
	want := regimes.ReferenceRates()
	assert.True(t, want.Base.Equal(got.Rates.Base))
	assert.True(t, want.Night.Equal(got.Rates.Night))
	assert.True(t, want.Holiday.Equal(got.Rates.Holiday))
	assert.True(t, want.Weekend.Equal(got.Rates.Weekend))
	assert.Equal(t, regimes.ReferenceRegimeName, got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	list, err := store.ListRegimes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.GetRegime(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrRegimeNotFound)
}

func TestSchedules_SaveAndReplace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveSchedule(ctx, payroll.ScheduleRecord{ID: "s1", Name: "Draft", ConfigJSON: `{"days":[]}`}))
	require.NoError(t, store.SaveSchedule(ctx, payroll.ScheduleRecord{ID: "s1", Name: "Final", ConfigJSON: `{"days":[{}]}`}))

	got, err := store.GetSchedule(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Name)
	assert.Equal(t, `{"days":[{}]}`, got.ConfigJSON)

	list, err := store.ListSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.GetSchedule(ctx, "s2")
	assert.ErrorIs(t, err, payroll.ErrScheduleNotFound)
}

func TestRuns_AppendOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// GIVEN: A computed week with a clamped day
	week, err := payroll.NewWeeklySchedule(
		payroll.Worked(time.Monday, clock.NewShift(clock.MustParse("18:50"), clock.MustParse("02:00"))).AsHoliday(),
		payroll.Worked(time.Tuesday, clock.NewShift(clock.MustParse("09:00"), clock.MustParse("10:00"))).WithFlexible(-120),
	)
	require.NoError(t, err)
	result := payroll.Compute(week, regimes.ReferenceRates(), regimes.ReferenceWithholding())

	run := payroll.NewRunRecord("run-1", regimes.ReferenceRates(), regimes.ReferenceWithholding(), result)
	run.RegimeID = regimes.ReferenceRegimeID
	run.Label = "week 42"

	// WHEN: Appending it, then appending it again
	require.NoError(t, store.AppendRun(ctx, run))
	assert.ErrorIs(t, store.AppendRun(ctx, run), sqlite.ErrDuplicateRun)

	// THEN: It reads back intact
	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "213.37", got.Gross.StringFixed(2))
	assert.True(t, result.Net.Equal(got.Net))
	assert.True(t, result.Hours.Equal(got.Hours))
	assert.Equal(t, result.WorkedMinutes, got.WorkedMinutes)
	assert.Equal(t, regimes.ReferenceRegimeID, got.RegimeID)
	assert.Empty(t, got.ScheduleID)
	assert.Equal(t, "week 42", got.Label)
	assert.True(t, got.Withholding.Total().Equal(payroll.MustParseDecimal("25")))

	require.Len(t, got.Days, 2)
	assert.Equal(t, time.Monday, got.Days[0].Weekday)
	assert.Equal(t, 240, got.Days[0].NightMinutes)
	assert.True(t, result.Days[0].Holiday.Equal(got.Days[0].Holiday))

	require.Len(t, got.Anomalies, 1)
	assert.Equal(t, payroll.AnomalyNegativeDuration, got.Anomalies[0].Kind)
	assert.Equal(t, -120, got.Anomalies[0].FlexibleMinutes)

	_, err = store.GetRun(ctx, "run-2")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendRun(ctx, payroll.RunRecord{
			ID:        fmt.Sprintf("run-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SaveRegime(ctx, regimes.ReferenceRegime()))
	require.NoError(t, store.AppendRun(ctx, payroll.RunRecord{ID: "r"}))

	require.NoError(t, store.Reset(ctx))

	regs, err := store.ListRegimes(ctx)
	require.NoError(t, err)
	assert.Empty(t, regs)
	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
