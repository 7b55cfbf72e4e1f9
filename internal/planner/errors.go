package planner

import "errors"

// Engine failures. Callers map them onto API errors.
var (
	ErrInvalidRange     = errors.New("semester start date is after end date")
	ErrWindowTooLong    = errors.New("semester window is too long")
	ErrInvalidDate      = errors.New("invalid calendar date")
	ErrInvalidWeekday   = errors.New("invalid teaching day")
	ErrEmptyCurriculum  = errors.New("curriculum has no subtopics")
	ErrEntryNotFound    = errors.New("timetable entry not found")
	ErrNotClass         = errors.New("timetable entry is not a class")
	ErrDetailsMismatch  = errors.New("timetable entry details do not match")
	ErrAlreadySettled   = errors.New("timetable entry already completed or rescheduled")
	ErrNoSlotAvailable  = errors.New("no available slot")
	ErrNoFutureClass    = errors.New("no future teaching days available")
	ErrInvalidTarget    = errors.New("target entry is not a future class")
	ErrInvalidTimetable = errors.New("invalid timetable")
)
