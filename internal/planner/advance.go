package planner

import (
	"fmt"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// ContinuedSeparator joins a lesson's own details with carried-over material.
const ContinuedSeparator = " | Continued: "

// AdvanceRequest identifies a completed class and optionally the class to absorb it.
type AdvanceRequest struct {
	Date     string
	NextDate string
}

// AdvanceResult is the updated timetable and the date that absorbed the topic.
type AdvanceResult struct {
	Entries models.TimetableEntries
	Target  string
}

// Advance marks a class completed and appends its details to the next class.
// The input is never modified.
func Advance(entries models.TimetableEntries, req AdvanceRequest) (AdvanceResult, error) {
	date, err := NormalizeDate(req.Date)
	if err != nil {
		return AdvanceResult{}, err
	}
	idx := entries.IndexOf(date)
	if idx < 0 {
		return AdvanceResult{}, fmt.Errorf("%w: %s", ErrEntryNotFound, date)
	}
	done := entries[idx]
	if done.Type != models.EntryTypeClass {
		return AdvanceResult{}, fmt.Errorf("%w: %s is %s", ErrNotClass, date, done.Type)
	}
	if done.Settled() {
		return AdvanceResult{}, fmt.Errorf("%w: %s", ErrAlreadySettled, date)
	}

	target := -1
	if req.NextDate != "" {
		next, err := NormalizeDate(req.NextDate)
		if err != nil {
			return AdvanceResult{}, err
		}
		target = entries.IndexOf(next)
		if target <= idx || !isLiveClass(entries[target]) {
			return AdvanceResult{}, fmt.Errorf("%w: %s", ErrInvalidTarget, next)
		}
	} else {
		for i := idx + 1; i < len(entries); i++ {
			if isLiveClass(entries[i]) {
				target = i
				break
			}
		}
		if target < 0 {
			return AdvanceResult{}, fmt.Errorf("%w after %s", ErrNoFutureClass, date)
		}
	}

	out := entries.Clone()
	out[target].Details = out[target].Details + ContinuedSeparator + done.Details
	out[target].ContinuedFrom = date
	out[idx].Status = models.EntryStatusCompleted

	return AdvanceResult{Entries: out, Target: out[target].Date}, nil
}

func isLiveClass(e models.TimetableEntry) bool {
	return e.Type == models.EntryTypeClass && !e.MovedAway()
}
