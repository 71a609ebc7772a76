package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

func TestMemory_Regimes(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, err := m.GetRegime(ctx, "missing")
	assert.ErrorIs(t, err, payroll.ErrRegimeNotFound)

	rates := payroll.RateTable{Base: payroll.MustParseDecimal("14.64")}
	require.NoError(t, m.SaveRegime(ctx, payroll.RegimeRecord{ID: "b", Name: "Beta", Rates: rates}))
	require.NoError(t, m.SaveRegime(ctx, payroll.RegimeRecord{ID: "a", Name: "Alpha"}))

	got, err := m.GetRegime(ctx, "b")
	require.NoError(t, err)
	assert.True(t, got.Rates.Base.Equal(rates.Base))

	list, err := m.ListRegimes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
}

func TestMemory_RunsAreAppendOnlyNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.AppendRun(ctx, payroll.RunRecord{ID: fmt.Sprintf("run-%d", i)}))
	}
	assert.ErrorIs(t, m.AppendRun(ctx, payroll.RunRecord{ID: "run-1"}), store.ErrDuplicateRun)

	runs, err := m.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)

	all, err := m.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = m.GetRun(ctx, "run-9")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
	assert.True(t, payroll.IsNotFound(err))
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveSchedule(ctx, payroll.ScheduleRecord{ID: "s", Name: "4B"}))
	require.NoError(t, m.AppendRun(ctx, payroll.RunRecord{ID: "r"}))

	require.NoError(t, m.Reset(ctx))

	_, err := m.GetSchedule(ctx, "s")
	assert.ErrorIs(t, err, payroll.ErrScheduleNotFound)
	runs, err := m.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
