package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// SemesterConfig is the input window of a generation run.
type SemesterConfig struct {
	StartDate    string
	EndDate      string
	TeachingDays []string
	Holidays     []string
}

// ConfigFromSemester converts a stored semester record.
func ConfigFromSemester(s models.Semester) SemesterConfig {
	return SemesterConfig{
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		TeachingDays: []string(s.TeachingDays),
		Holidays:     []string(s.Holidays),
	}
}

// Calendar parses the config into a calendar, normalizing every date.
func (c SemesterConfig) Calendar() (*Calendar, error) {
	start, err := ParseDate(c.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := ParseDate(c.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	days := make([]time.Weekday, 0, len(c.TeachingDays))
	for _, raw := range c.TeachingDays {
		day, err := ParseWeekday(raw)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	holidays := make([]string, 0, len(c.Holidays))
	for _, raw := range c.Holidays {
		key, err := NormalizeDate(raw)
		if err != nil {
			return nil, fmt.Errorf("holiday: %w", err)
		}
		holidays = append(holidays, key)
	}
	cal := NewCalendar(start, end, days, holidays)
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return cal, nil
}

// Normalized returns the config with canonical dates, short weekday keys in
// week order, and de-duplicated sorted holidays.
func (c SemesterConfig) Normalized() (SemesterConfig, error) {
	cal, err := c.Calendar()
	if err != nil {
		return SemesterConfig{}, err
	}
	out := SemesterConfig{StartDate: DateKey(cal.start), EndDate: DateKey(cal.end)}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if cal.teachingDays[d] {
			out.TeachingDays = append(out.TeachingDays, WeekdayKey(d))
		}
	}
	for h := range cal.holidays {
		out.Holidays = append(out.Holidays, h)
	}
	sort.Strings(out.Holidays)
	return out, nil
}

// GenerateResult is a freshly generated timetable.
type GenerateResult struct {
	Entries models.TimetableEntries
	// Unscheduled lists topics that did not fit before the window ended.
	Unscheduled []Topic
}

// Generate maps the semester window and curriculum onto one entry per date.
// Holidays win over teaching days; teaching days consume topics in order and
// become Vacant once the curriculum is exhausted.
func Generate(cfg SemesterConfig, chapters []models.Chapter) (GenerateResult, error) {
	cal, err := cfg.Calendar()
	if err != nil {
		return GenerateResult{}, err
	}
	queue := NewTopicQueue(chapters)
	if queue.Len() == 0 {
		return GenerateResult{}, ErrEmptyCurriculum
	}

	days := cal.Days()
	entries := make(models.TimetableEntries, 0, len(days))
	for _, day := range days {
		entry := models.TimetableEntry{Date: day.Key}
		switch {
		case day.Holiday:
			entry.Type = models.EntryTypeHoliday
			entry.Details = models.DetailsNoClasses
		case day.Teaching:
			if topic, ok := queue.Next(); ok {
				entry.Type = models.EntryTypeClass
				entry.Details = topic.Details()
			} else {
				entry.Type = models.EntryTypeVacant
				entry.Details = models.DetailsNoTopics
			}
		default:
			entry.Type = models.EntryTypeNonTeachingDay
			entry.Details = models.DetailsNoClasses
		}
		entries = append(entries, entry)
	}

	result := GenerateResult{Entries: entries}
	if rest := queue.Remaining(); rest > 0 {
		all := queue.Topics()
		result.Unscheduled = all[len(all)-rest:]
	}
	return result, nil
}
