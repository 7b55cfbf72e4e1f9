package planner

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date form used for keys and comparisons.
const DateLayout = "2006-01-02"

// NormalizeDate reduces raw to its YYYY-MM-DD form. RFC 3339 timestamps are
// converted to their UTC calendar date.
func NormalizeDate(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseDate parses raw as a calendar date at UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// DateKey renders t in the location it carries as a YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts short or long English names of Monday through Friday in
// any case. Saturday and Sunday are never teaching days.
func ParseWeekday(raw string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
	}
	if day == time.Saturday || day == time.Sunday {
		return 0, fmt.Errorf("%w: %q is a weekend day", ErrInvalidWeekday, raw)
	}
	return day, nil
}

// WeekdayKey returns the short lowercase name used for storage, e.g. "mon".
func WeekdayKey(day time.Weekday) string {
	return strings.ToLower(day.String()[:3])
}
