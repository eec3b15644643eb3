// Package attendance holds the week-bucketed attendance aggregation used by the
// dashboard and the weekly meeting views.
package attendance

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format stored on meetings and agendas.
const DateLayout = "2006-01-02"

// InvalidDateError reports a date string that is not a calendar date.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Value)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time. An RFC3339
// timestamp is also accepted and truncated to its date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return dateOf(ts), nil
	}
	return time.Time{}, &InvalidDateError{Value: s}
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// WeekBounds returns the Wednesday that starts the week containing d and the
// Tuesday that ends it.
func WeekBounds(d time.Time) (start, end time.Time) {
	d = dateOf(d)
	dow := int(d.Weekday())
	if dow >= int(time.Wednesday) {
		start = d.AddDate(0, 0, -(dow - 3))
	} else {
		start = d.AddDate(0, 0, -(dow + 4))
	}
	return start, start.AddDate(0, 0, 6)
}

// WeekKey is the grid column id for the week containing d.
func WeekKey(d time.Time) string {
	start, _ := WeekBounds(d)
	return FormatDate(start)
}

func dateOf(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
