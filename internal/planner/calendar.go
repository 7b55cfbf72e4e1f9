package planner

import (
	"fmt"
	"time"
)

// MaxWindowDays caps the number of dates in one semester window.
const MaxWindowDays = 366

// CalendarDay is one date of the semester window with its classification inputs.
type CalendarDay struct {
	Date     time.Time
	Key      string
	Weekday  time.Weekday
	Teaching bool
	Holiday  bool
}

// Calendar enumerates every date of an inclusive window.
type Calendar struct {
	start        time.Time
	end          time.Time
	teachingDays map[time.Weekday]bool
	holidays     map[string]bool
}

// NewCalendar builds a calendar over [start, end]. Only the calendar date of
// start and end is used. Holiday keys must already be normalized.
func NewCalendar(start, end time.Time, teachingDays []time.Weekday, holidays []string) *Calendar {
	days := make(map[time.Weekday]bool, len(teachingDays))
	for _, d := range teachingDays {
		days[d] = true
	}
	hs := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		hs[h] = true
	}
	return &Calendar{
		start:        truncate(start),
		end:          truncate(end),
		teachingDays: days,
		holidays:     hs,
	}
}

// Validate reports ErrInvalidRange when the window is inverted and
// ErrWindowTooLong when it spans more than MaxWindowDays dates.
func (c *Calendar) Validate() error {
	if c.start.After(c.end) {
		return ErrInvalidRange
	}
	if c.start.AddDate(0, 0, MaxWindowDays-1).Before(c.end) {
		return fmt.Errorf("%w: more than %d days", ErrWindowTooLong, MaxWindowDays)
	}
	return nil
}

// Days returns a fresh, strictly increasing slice of every date in the window.
// It is empty when the window is invalid.
func (c *Calendar) Days() []CalendarDay {
	if c.Validate() != nil {
		return nil
	}
	days := make([]CalendarDay, 0, int(c.end.Sub(c.start).Hours()/24)+1)
	for d := c.start; !d.After(c.end); d = d.AddDate(0, 0, 1) {
		key := DateKey(d)
		days = append(days, CalendarDay{
			Date:     d,
			Key:      key,
			Weekday:  d.Weekday(),
			Teaching: c.teachingDays[d.Weekday()],
			Holiday:  c.holidays[key],
		})
	}
	return days
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
