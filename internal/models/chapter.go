package models

import (
	"time"

	"github.com/lib/pq"
)

// Chapter is a named group of ordered subtopics. Position fixes the curriculum order.
type Chapter struct {
	ID        string         `db:"id" json:"id"`
	Position  int            `db:"position" json:"position"`
	Name      string         `db:"name" json:"name"`
	Subtopics pq.StringArray `db:"subtopics" json:"subtopics"`
	CreatedBy *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
