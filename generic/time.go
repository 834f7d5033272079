package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// CLOCK TIME - Wall-clock time of day with minute granularity
// =============================================================================

// ClockTime is minutes since midnight, 0..1439.
type ClockTime int

const minutesPerDay = 24 * 60

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ParseClockTime accepts "15:04" and "15:04:05". Seconds are truncated.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
	}
	if err != nil {
		return 0, &ClockTimeError{Value: s}
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// Valid reports whether c is inside a single day.
func (c ClockTime) Valid() bool { return c >= 0 && c < minutesPerDay }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

// On places the clock time on the given calendar date.
func (c ClockTime) On(date time.Time) time.Time {
	d := DateOf(date)
	return d.Add(time.Duration(c) * time.Minute)
}

// =============================================================================
// DATES
// =============================================================================

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight in UTC, keeping the calendar day of t.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate returns midnight UTC of the given day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// =============================================================================
// INTERVAL
// =============================================================================

// Interval is a half-open span [Start, End) on the calendar timeline.
type Interval struct {
	Start time.Time
	End   time.Time
}

// ShiftInterval places a shift on the timeline. An end at or before the start
// is treated as crossing midnight.
func ShiftInterval(date time.Time, start, end ClockTime) Interval {
	s := start.On(date)
	e := end.On(date)
	if !e.After(s) {
		e = e.Add(24 * time.Hour)
	}
	return Interval{Start: s, End: e}
}

// Empty is true for zero-length and inverted intervals.
func (iv Interval) Empty() bool { return !iv.End.After(iv.Start) }

// Minutes returns the whole-minute length, zero when empty.
func (iv Interval) Minutes() int64 {
	if iv.Empty() {
		return 0
	}
	return int64(iv.End.Sub(iv.Start) / time.Minute)
}

func (iv Interval) String() string {
	return "[" + iv.Start.Format("2006-01-02 15:04") + ", " + iv.End.Format("2006-01-02 15:04") + ")"
}
