package planner

import (
	"fmt"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// Validate checks that entries form a gap-free, strictly increasing calendar
// with known types and statuses. Dates are normalized in place on the returned copy.
func Validate(entries models.TimetableEntries) (models.TimetableEntries, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidTimetable)
	}
	out := entries.Clone()
	var prev string
	for i := range out {
		date, err := ParseDate(out[i].Date)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidTimetable, i, err)
		}
		key := DateKey(date)
		if prev != "" {
			want, _ := ParseDate(prev)
			if key != DateKey(want.AddDate(0, 0, 1)) {
				return nil, fmt.Errorf("%w: %s does not follow %s", ErrInvalidTimetable, key, prev)
			}
		}
		if !out[i].Type.Valid() {
			return nil, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidTimetable, key, out[i].Type)
		}
		if !out[i].Status.Valid() {
			return nil, fmt.Errorf("%w: %s has unknown status %q", ErrInvalidTimetable, key, out[i].Status)
		}
		out[i].Date = key
		prev = key
	}
	return out, nil
}
