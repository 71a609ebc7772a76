package clock

// =============================================================================
// NIGHT WINDOW
// =============================================================================

// NightWindow is the daily premium window [Start, End) on the clock. When End
// is before Start the window wraps through midnight. Start == End is empty.
type NightWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// DefaultNightWindow is 22:00 to 06:00.
var DefaultNightWindow = NightWindow{
	Start: TimeOfDay(22 * MinutesPerHour),
	End:   TimeOfDay(6 * MinutesPerHour),
}

// NightMinutes counts the minutes of the shift inside DefaultNightWindow.
func NightMinutes(s ShiftInterval) int { return DefaultNightWindow.Overlap(s) }

// NightMinutesScan is NightMinutes computed one minute at a time.
func NightMinutesScan(s ShiftInterval) int { return DefaultNightWindow.OverlapScan(s) }

// Contains reports whether the minute of day falls inside the window.
func (w NightWindow) Contains(t TimeOfDay) bool {
	switch {
	case w.Start < w.End:
		return t >= w.Start && t < w.End
	case w.Start > w.End:
		return t >= w.Start || t < w.End
	default:
		return false
	}
}

// segments splits the window into non-wrapping [from, to) pieces of a
// single day.
func (w NightWindow) segments() [][2]int {
	switch {
	case w.Start < w.End:
		return [][2]int{{int(w.Start), int(w.End)}}
	case w.Start > w.End:
		return [][2]int{{0, int(w.End)}, {int(w.Start), MinutesPerDay}}
	default:
		return nil
	}
}

// Overlap intersects the shift with the window analytically. A shift spans
// at most the entrance day and the next one, so the window is laid out on
// both days and the intersections summed.
func (w NightWindow) Overlap(s ShiftInterval) int {
	start, end := s.Bounds()

	total := 0
	for day := 0; day < 2; day++ {
		offset := day * MinutesPerDay
		for _, seg := range w.segments() {
			total += overlap(start, end, seg[0]+offset, seg[1]+offset)
		}
	}
	return total
}

// OverlapScan walks every minute of the shift.
func (w NightWindow) OverlapScan(s ShiftInterval) int {
	start, end := s.Bounds()

	n := 0
	for t := start; t < end; t++ {
		if w.Contains(TimeOfDay(t % MinutesPerDay)) {
			n++
		}
	}
	return n
}

func overlap(aStart, aEnd, bStart, bEnd int) int {
	lo, hi := max(aStart, bStart), min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
