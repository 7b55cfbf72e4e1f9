package models

import (
	"time"

	"github.com/lib/pq"
)

// Semester is a versioned semester configuration. The highest version is the current one.
type Semester struct {
	ID           string         `db:"id" json:"id"`
	Version      int            `db:"version" json:"version"`
	StartDate    string         `db:"start_date" json:"start_date"`
	EndDate      string         `db:"end_date" json:"end_date"`
	TeachingDays pq.StringArray `db:"teaching_days" json:"teaching_days"`
	Holidays     pq.StringArray `db:"holidays" json:"holidays"`
	CreatedBy    *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
