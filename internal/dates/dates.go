// Package dates holds the calendar arithmetic shared by the analytics
// pipeline and the checklist generator.
package dates

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for calendar dates (no time component).
const DayLayout = "2006-01-02"

// DayKey returns the calendar date of t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays adds whole calendar days, keeping the wall clock across DST changes.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// AddWeeks adds 7*weeks calendar days.
func AddWeeks(t time.Time, weeks int) time.Time {
	return AddDays(t, 7*weeks)
}

// AddMonths adds calendar months. When the day of month does not exist in the
// target month the result is clamped to its last day, so Jan 31 + 1 month is
// Feb 29 in a leap year and Feb 28 otherwise. time.AddDate would normalise
// into March instead.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + months
	ty := y + floorDiv(total, 12)
	tm := time.Month(total - floorDiv(total, 12)*12 + 1)

	if last := DaysInMonth(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDay parses a YYYY-MM-DD date as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FractionalHour returns the wall-clock hour of t with minutes as a fraction,
// e.g. 19:30 -> 19.5.
func FractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// FormatClock renders a fractional hour (any real value, wrapped to 0-24) as HH:MM.
func FormatClock(hour float64) string {
	minutes := int(hour*60+0.5) % (24 * 60)
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
