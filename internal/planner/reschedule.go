package planner

import (
	"fmt"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// RescheduleRequest identifies a missed class.
type RescheduleRequest struct {
	Date string
	// Details, when set, must equal the stored entry's details.
	Details string
	// CandidateSlots, when set, restricts the search to these dates.
	CandidateSlots []string
}

// RescheduleResult is the repaired timetable and the date that received the topic.
type RescheduleResult struct {
	Entries models.TimetableEntries
	Target  string
}

// Reschedule moves a missed class into the first Vacant or Non-teaching day
// after it. The missed entry keeps its details as a record and points at the
// new slot. The input is never modified.
func Reschedule(entries models.TimetableEntries, req RescheduleRequest) (RescheduleResult, error) {
	date, err := NormalizeDate(req.Date)
	if err != nil {
		return RescheduleResult{}, err
	}
	idx := entries.IndexOf(date)
	if idx < 0 {
		return RescheduleResult{}, fmt.Errorf("%w: %s", ErrEntryNotFound, date)
	}
	missed := entries[idx]
	if missed.Type != models.EntryTypeClass {
		return RescheduleResult{}, fmt.Errorf("%w: %s is %s", ErrNotClass, date, missed.Type)
	}
	if req.Details != "" && req.Details != missed.Details {
		return RescheduleResult{}, fmt.Errorf("%w: %s", ErrDetailsMismatch, date)
	}
	if missed.Settled() {
		return RescheduleResult{}, fmt.Errorf("%w: %s", ErrAlreadySettled, date)
	}

	allowed, err := candidateSet(req.CandidateSlots)
	if err != nil {
		return RescheduleResult{}, err
	}

	target := -1
	for i := idx + 1; i < len(entries); i++ {
		if !isFreeSlot(entries[i]) {
			continue
		}
		if allowed != nil && !allowed[entries[i].Date] {
			continue
		}
		target = i
		break
	}
	if target < 0 {
		return RescheduleResult{}, fmt.Errorf("%w after %s", ErrNoSlotAvailable, date)
	}

	out := entries.Clone()
	out[target].Type = models.EntryTypeClass
	out[target].Details = missed.Details
	out[target].Status = models.EntryStatusRescheduled
	out[target].RescheduledFrom = date
	out[target].RescheduledTo = ""
	out[target].ContinuedFrom = ""

	out[idx].Status = models.EntryStatusRescheduled
	out[idx].RescheduledTo = out[target].Date

	return RescheduleResult{Entries: out, Target: out[target].Date}, nil
}

func isFreeSlot(e models.TimetableEntry) bool {
	return e.Type == models.EntryTypeVacant || e.Type == models.EntryTypeNonTeachingDay
}

func candidateSet(raw []string) (map[string]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	set := make(map[string]bool, len(raw))
	for _, r := range raw {
		key, err := NormalizeDate(r)
		if err != nil {
			return nil, fmt.Errorf("candidate slot: %w", err)
		}
		set[key] = true
	}
	return set, nil
}
