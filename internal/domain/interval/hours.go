package interval

import "time"

// DayWindow bounds the bookable portion of a single day, expressed as offsets
// from local midnight.
type DayWindow struct {
	Start time.Duration
	End   time.Duration
}

func (w DayWindow) IsZero() bool {
	return w.Start == 0 && w.End == 0
}

func (w DayWindow) Valid() bool {
	return w.Start >= 0 && w.End > w.Start && w.End <= 24*time.Hour
}

// WeeklyHours maps each bookable weekday to its window. Absent weekdays are
// closed entirely.
type WeeklyHours map[time.Weekday]DayWindow

// DefaultBusinessHours is the facility default: Monday-Friday 08:00-17:00.
var DefaultBusinessHours = WeeklyHours{
	time.Monday:    {Start: 8 * time.Hour, End: 17 * time.Hour},
	time.Tuesday:   {Start: 8 * time.Hour, End: 17 * time.Hour},
	time.Wednesday: {Start: 8 * time.Hour, End: 17 * time.Hour},
	time.Thursday:  {Start: 8 * time.Hour, End: 17 * time.Hour},
	time.Friday:    {Start: 8 * time.Hour, End: 17 * time.Hour},
}

// Clone returns an independent copy so callers can customize per physician
// without mutating the shared default.
func (h WeeklyHours) Clone() WeeklyHours {
	out := make(WeeklyHours, len(h))
	for day, window := range h {
		out[day] = window
	}
	return out
}

// Covers reports whether the whole of iv fits inside the window of the day it
// starts on. An interval spilling past that day's window end, including one
// crossing midnight, is not covered.
func (h WeeklyHours) Covers(iv Interval) bool {
	window, open := h[iv.Start.Weekday()]
	if !open {
		return false
	}
	dayStart := midnight(iv.Start)
	if iv.Start.Before(dayStart.Add(window.Start)) {
		return false
	}
	if iv.End.After(dayStart.Add(window.End)) {
		return false
	}
	return true
}

// CoversTime reports whether the single instant t is inside that day's window.
func (h WeeklyHours) CoversTime(t time.Time) bool {
	window, open := h[t.Weekday()]
	if !open {
		return false
	}
	offset := t.Sub(midnight(t))
	return offset >= window.Start && offset < window.End
}

// NextOpening returns the earliest instant at or after t that lies inside a
// window. The boolean is false when no opening exists within the next week,
// which only happens for an empty WeeklyHours.
func (h WeeklyHours) NextOpening(t time.Time) (time.Time, bool) {
	day := midnight(t)
	for i := 0; i < 8; i++ {
		window, open := h[day.Weekday()]
		if open {
			windowStart := day.Add(window.Start)
			windowEnd := day.Add(window.End)
			if t.Before(windowStart) {
				return windowStart, true
			}
			if t.Before(windowEnd) {
				return t, true
			}
		}
		day = day.AddDate(0, 0, 1)
		t = day
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
