package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// TimeRange is an inclusive [Start, End] window; a zero bound is open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NormalizeTimeRange swaps reversed bounds, converts to UTC and caps the
// window at maxDuration when both bounds are set (maxDuration <= 0 means
// no cap). Either bound may be zero.
func NormalizeTimeRange(start, end time.Time, maxDuration time.Duration) (TimeRange, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		start, end = end, start
	}
	if !start.IsZero() {
		start = start.UTC()
	}
	if !end.IsZero() {
		end = end.UTC()
	}
	if maxDuration > 0 && !start.IsZero() && !end.IsZero() && end.Sub(start) > maxDuration {
		end = start.Add(maxDuration)
	}
	if !start.IsZero() && !end.IsZero() && end.Equal(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// ParseBound accepts RFC 3339 or a bare date. A bare date used as the upper
// bound covers the whole day.
func ParseBound(s string, upper bool, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return d.UTC(), nil
}

// MonthOf returns the calendar month containing t in loc.
func MonthOf(t time.Time, loc *time.Location) TimeRange {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return TimeRange{Start: start.UTC(), End: end.UTC()}
}

var ptWeekdays = map[time.Weekday]string{
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// FormatEventDate renders an event date for documents handed to clients,
// e.g. "Sábado, 10/05/2025 às 15:00".
func FormatEventDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s, %s às %s", ptWeekdays[t.Weekday()], t.Format("02/01/2006"), t.Format("15:04"))
}
