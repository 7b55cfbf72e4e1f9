package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EntryType classifies a calendar date in a timetable.
type EntryType string

const (
	EntryTypeClass          EntryType = "Class"
	EntryTypeHoliday        EntryType = "Holiday"
	EntryTypeVacant         EntryType = "Vacant"
	EntryTypeNonTeachingDay EntryType = "Non-teaching day"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeClass, EntryTypeHoliday, EntryTypeVacant, EntryTypeNonTeachingDay:
		return true
	}
	return false
}

// EntryStatus tracks the progress of a timetable entry. The zero value means pending.
type EntryStatus string

const (
	EntryStatusPending     EntryStatus = "Pending"
	EntryStatusCompleted   EntryStatus = "Completed"
	EntryStatusRescheduled EntryStatus = "Rescheduled"
)

// Valid reports whether s is unset or a known status.
func (s EntryStatus) Valid() bool {
	switch s {
	case "", EntryStatusPending, EntryStatusCompleted, EntryStatusRescheduled:
		return true
	}
	return false
}

// Default details rendered for non-class days and exhausted curricula.
const (
	DetailsNoClasses = "No classes"
	DetailsNoTopics  = "No topics scheduled"
)

// TimetableEntry is one calendar date of a timetable.
type TimetableEntry struct {
	Date            string      `json:"date"`
	Type            EntryType   `json:"type"`
	Details         string      `json:"details"`
	Status          EntryStatus `json:"status,omitempty"`
	RescheduledFrom string      `json:"rescheduled_from,omitempty"`
	RescheduledTo   string      `json:"rescheduled_to,omitempty"`
	ContinuedFrom   string      `json:"continued_from,omitempty"`
}

// MovedAway reports whether the entry's content now lives on another date.
func (e TimetableEntry) MovedAway() bool {
	return e.Status == EntryStatusRescheduled && e.RescheduledTo != ""
}

// Settled reports whether the entry can no longer be rescheduled or advanced.
func (e TimetableEntry) Settled() bool {
	return e.Status == EntryStatusCompleted || e.MovedAway()
}

// TimetableEntries is stored as a JSONB array.
type TimetableEntries []TimetableEntry

// Value implements driver.Valuer.
func (e TimetableEntries) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *TimetableEntries) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*e = TimetableEntries{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan timetable entries: unsupported type %T", src)
	}
	var entries TimetableEntries
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("scan timetable entries: %w", err)
	}
	*e = entries
	return nil
}

// Clone returns a deep copy safe to mutate.
func (e TimetableEntries) Clone() TimetableEntries {
	if e == nil {
		return nil
	}
	out := make(TimetableEntries, len(e))
	copy(out, e)
	return out
}

// IndexOf returns the position of the entry dated date, or -1.
func (e TimetableEntries) IndexOf(date string) int {
	for i := range e {
		if e[i].Date == date {
			return i
		}
	}
	return -1
}

// TimetableOperation names the mutation that produced a timetable version.
type TimetableOperation string

const (
	TimetableOperationGenerate   TimetableOperation = "GENERATE"
	TimetableOperationSave       TimetableOperation = "SAVE"
	TimetableOperationReschedule TimetableOperation = "RESCHEDULE"
	TimetableOperationAdvance    TimetableOperation = "ADVANCE"
)

// Timetable is a stored, versioned timetable. The highest version is the current one.
type Timetable struct {
	ID         string             `db:"id" json:"id"`
	Version    int                `db:"version" json:"version"`
	SemesterID *string            `db:"semester_id" json:"semester_id,omitempty"`
	Operation  TimetableOperation `db:"operation" json:"operation"`
	Entries    TimetableEntries   `db:"entries" json:"entries"`
	CreatedBy  *string            `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
}

// TimetableVersion is lightweight metadata for history listings.
type TimetableVersion struct {
	ID         string             `db:"id" json:"id"`
	Version    int                `db:"version" json:"version"`
	SemesterID *string            `db:"semester_id" json:"semester_id,omitempty"`
	Operation  TimetableOperation `db:"operation" json:"operation"`
	EntryCount int                `db:"entry_count" json:"entry_count"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
}

// PlannerOverview bundles the current semester, curriculum, and timetable.
type PlannerOverview struct {
	Semester  *Semester  `json:"semester"`
	Chapters  []Chapter  `json:"chapters"`
	Timetable *Timetable `json:"timetable"`
}
