package clock_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/clock"
)

func shift(t *testing.T, entrance, exit string) clock.ShiftInterval {
	t.Helper()
	s, err := clock.ParseShift(entrance, exit)
	require.NoError(t, err)
	return s
}

// =============================================================================
// PARSING
// =============================================================================

func TestParse_Valid(t *testing.T) {
	cases := map[string]int{
		"00:00":   0,
		"06:00":   360,
		"18:50":   1130,
		"22:00":   1320,
		"23:59":   1439,
		"8:05":    485,
		" 02:00 ": 120,
	}
	for literal, want := range cases {
		got, err := clock.Parse(literal)
		require.NoError(t, err, literal)
		assert.Equal(t, want, got.Minutes(), literal)
	}
}

func TestParse_Rejected(t *testing.T) {
	for _, literal := range []string{
		"", "18", "24:00", "12:60", "ab:cd", "-1:30", "+1:30", "12:5", "123:00", "12:00:00", "12-00",
	} {
		_, err := clock.Parse(literal)
		require.Error(t, err, literal)
		assert.ErrorIs(t, err, clock.ErrInvalidTimeOfDay, literal)

		var litErr *clock.LiteralError
		assert.ErrorAs(t, err, &litErr, literal)
	}
}

func TestParse_OutOfRangeKeepsLiteralAndReason(t *testing.T) {
	_, err := clock.Parse("24:00")

	var litErr *clock.LiteralError
	require.ErrorAs(t, err, &litErr)
	assert.Equal(t, "24:00", litErr.Literal)
	assert.Equal(t, "hour out of range", litErr.Reason)

	_, err = clock.Parse("12:60")
	require.ErrorAs(t, err, &litErr)
	assert.Equal(t, "minute out of range", litErr.Reason)
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "08:05", clock.MustParse("8:05").String())
	assert.Equal(t, "23:59", clock.TimeOfDay(1439).String())
}

func TestParseShift_WrapsEntranceAndExitErrors(t *testing.T) {
	_, err := clock.ParseShift("25:00", "02:00")
	assert.ErrorIs(t, err, clock.ErrInvalidTimeOfDay)
	assert.Contains(t, err.Error(), "entrance")

	_, err = clock.ParseShift("18:50", "2")
	assert.ErrorIs(t, err, clock.ErrInvalidTimeOfDay)
	assert.Contains(t, err.Error(), "exit")
}

// =============================================================================
// DURATION
// =============================================================================

func TestShiftInterval_Duration(t *testing.T) {
	assert.Equal(t, 430, shift(t, "18:50", "02:00").Duration())
	assert.Equal(t, 480, shift(t, "09:00", "17:00").Duration())
	assert.Equal(t, 480, shift(t, "22:00", "06:00").Duration())
	assert.Equal(t, 1, shift(t, "23:59", "00:00").Duration())

	// Same entrance and exit is a full day, never zero.
	full := shift(t, "07:00", "07:00")
	assert.True(t, full.CrossesMidnight())
	assert.Equal(t, clock.MinutesPerDay, full.Duration())
}

func TestShiftInterval_Bounds(t *testing.T) {
	start, end := shift(t, "18:50", "02:00").Bounds()
	assert.Equal(t, 1130, start)
	assert.Equal(t, 1560, end)
}

// =============================================================================
// NIGHT MINUTES
// =============================================================================

func TestNightMinutes_CrossesMidnight(t *testing.T) {
	// GIVEN: The 4B shift 18:50→02:00
	s := shift(t, "18:50", "02:00")

	// THEN: 22:00→02:00 is night, 06:00 is never reached
	assert.Equal(t, 240, clock.NightMinutes(s))
	assert.Equal(t, 240, clock.NightMinutesScan(s))
}

func TestNightMinutes_Daylight(t *testing.T) {
	for _, s := range []clock.ShiftInterval{
		shift(t, "06:00", "22:00"),
		shift(t, "09:00", "17:00"),
		shift(t, "06:00", "06:01"),
		shift(t, "21:00", "22:00"),
	} {
		assert.Equal(t, 0, clock.NightMinutes(s), s.String())
		assert.Equal(t, 0, clock.NightMinutesScan(s), s.String())
	}
}

func TestNightMinutes_FullyInside(t *testing.T) {
	for _, s := range []clock.ShiftInterval{
		shift(t, "22:00", "06:00"),
		shift(t, "23:00", "23:30"),
		shift(t, "00:00", "06:00"),
		shift(t, "01:15", "04:45"),
		shift(t, "22:00", "00:00"),
	} {
		assert.Equal(t, s.Duration(), clock.NightMinutes(s), s.String())
		assert.Equal(t, s.Duration(), clock.NightMinutesScan(s), s.String())
	}
}

func TestNightMinutes_Boundaries(t *testing.T) {
	// 22:00 itself is night, 06:00 itself is not.
	assert.Equal(t, 1, clock.NightMinutes(shift(t, "22:00", "22:01")))
	assert.Equal(t, 0, clock.NightMinutes(shift(t, "21:59", "22:00")))
	assert.Equal(t, 1, clock.NightMinutes(shift(t, "05:59", "06:00")))
	assert.Equal(t, 0, clock.NightMinutes(shift(t, "06:00", "06:01")))

	// A full day contains the whole 8-hour window exactly once.
	assert.Equal(t, 480, clock.NightMinutes(shift(t, "12:00", "12:00")))
	assert.Equal(t, 480, clock.NightMinutes(shift(t, "22:00", "22:00")))

	// Starting inside the early window and wrapping into the next night.
	assert.Equal(t, 120+120, clock.NightMinutes(shift(t, "04:00", "00:00")))
}

func TestNightMinutes_ScanMatchesClosedForm(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		s := clock.NewShift(
			clock.TimeOfDay(rng.Intn(clock.MinutesPerDay)),
			clock.TimeOfDay(rng.Intn(clock.MinutesPerDay)),
		)
		require.Equal(t, clock.NightMinutesScan(s), clock.NightMinutes(s), s.String())
	}
}

func TestNightWindow_NonWrappingWindow(t *testing.T) {
	// GIVEN: A window that does not cross midnight
	w := clock.NightWindow{Start: clock.MustParse("13:00"), End: clock.MustParse("15:00")}

	s := shift(t, "14:00", "14:30")
	assert.Equal(t, 30, w.Overlap(s))
	assert.Equal(t, 30, w.OverlapScan(s))

	// A shift crossing midnight reaches the window again the next day.
	long := shift(t, "14:00", "14:00")
	assert.Equal(t, 120, w.Overlap(long))
	assert.Equal(t, 120, w.OverlapScan(long))
}

func TestNightWindow_Empty(t *testing.T) {
	w := clock.NightWindow{Start: 600, End: 600}
	assert.False(t, w.Contains(600))
	assert.Equal(t, 0, w.Overlap(shift(t, "00:00", "00:00")))
	assert.Equal(t, 0, w.OverlapScan(shift(t, "00:00", "00:00")))
}
