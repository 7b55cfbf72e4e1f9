package dto

import (
	"time"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// SaveSemesterRequest captures a semester window and its teaching pattern.
type SaveSemesterRequest struct {
	StartDate    string   `json:"startDate" validate:"required,isodate"`
	EndDate      string   `json:"endDate" validate:"required,isodate"`
	TeachingDays []string `json:"teachingDays" validate:"required,min=1,max=5,dive,weekday"`
	Holidays     []string `json:"holidays" validate:"omitempty,dive,isodate"`
}

// SaveChapterRequest appends a chapter to the curriculum.
type SaveChapterRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Subtopics []string `json:"subtopics" validate:"required,min=1,dive,max=500"`
}

// SaveTimetableRequest replaces the current timetable with client-edited entries.
type SaveTimetableRequest struct {
	Entries []models.TimetableEntry `json:"entries" validate:"required,min=1"`
}

// RescheduleRequest marks a class as not covered.
type RescheduleRequest struct {
	MissedDate     string   `json:"missedDate" validate:"required,isodate"`
	TopicDetails   string   `json:"topicDetails" validate:"omitempty,max=1000"`
	CandidateSlots []string `json:"candidateSlots" validate:"omitempty,dive,isodate"`
}

// AdvanceRequest marks a class as covered and carries it into the next class.
type AdvanceRequest struct {
	CompletedDate string `json:"completedDate" validate:"required,isodate"`
	NextDate      string `json:"nextDate" validate:"omitempty,isodate"`
}

// GenerateTimetableResponse wraps a freshly generated timetable.
type GenerateTimetableResponse struct {
	Timetable   *models.Timetable `json:"timetable"`
	Unscheduled []string          `json:"unscheduled"`
}

// TimetableMutationResponse reports the repaired timetable and the date that changed.
type TimetableMutationResponse struct {
	Timetable  *models.Timetable `json:"timetable"`
	TargetDate string            `json:"targetDate"`
}

// TimetableVersionsQuery pages through stored timetable versions.
type TimetableVersionsQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ExportQuery selects the export rendition.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx ics"`
}

// ShareLinkRequest asks for a signed read-only export link.
type ShareLinkRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=csv pdf xlsx ics"`
}

// ShareLinkResponse is a signed link that serves the current timetable without a token header.
type ShareLinkResponse struct {
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expiresAt"`
}
