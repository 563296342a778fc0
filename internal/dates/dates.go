// Package dates provides calendar-date helpers shared by the valuation and
// history pipelines. All dates are normalized to midnight UTC so that a value
// parsed from the API, a value scanned from a DATE column, and "today" always
// land on the same calendar day.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for calendar dates (zero-padded, hyphen-separated).
const Layout = "02-01-2006"

// ErrInvalidFormat is returned when a date string is not valid DD-MM-YYYY.
var ErrInvalidFormat = errors.New("invalid date format, expected DD-MM-YYYY")

// Normalize strips the time-of-day component, keeping only the calendar date
// at midnight UTC.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDMY parses a DD-MM-YYYY string into a normalized calendar date.
func ParseDMY(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return t, nil
}

// FormatDMY renders a date as DD-MM-YYYY.
func FormatDMY(t time.Time) string {
	return t.UTC().Format(Layout)
}

// EnumerateDays returns every calendar day from start to end inclusive, in
// ascending order. Returns an empty slice when start is after end.
func EnumerateDays(start, end time.Time) []time.Time {
	start = Normalize(start)
	end = Normalize(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
