package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

func TestAdvanceAppendsToNextClass(t *testing.T) {
	entries := twoWeeks(t)
	before := entries.Clone()

	result, err := Advance(entries, AdvanceRequest{Date: "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05", result.Target)
	assert.Equal(t, models.EntryStatusCompleted, result.Entries[0].Status)
	assert.Equal(t, "Intro: A", result.Entries[0].Details)
	next := result.Entries[4]
	assert.Equal(t, "Intro: B | Continued: Intro: A", next.Details)
	assert.Equal(t, "2024-01-01", next.ContinuedFrom)
	assert.Equal(t, before, entries)
}

func TestAdvanceExplicitNextDate(t *testing.T) {
	entries := twoWeeks(t)

	result, err := Advance(entries, AdvanceRequest{Date: "2024-01-01", NextDate: "2024-01-08"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", result.Target)
	assert.Equal(t, "Core: C | Continued: Intro: A", result.Entries[7].Details)

	_, err = Advance(entries, AdvanceRequest{Date: "2024-01-05", NextDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = Advance(entries, AdvanceRequest{Date: "2024-01-01", NextDate: "2024-01-06"})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestAdvanceSkipsContentThatMovedAway(t *testing.T) {
	entries := twoWeeks(t)
	moved, err := Reschedule(entries, RescheduleRequest{Date: "2024-01-05"})
	require.NoError(t, err)

	result, err := Advance(moved.Entries, AdvanceRequest{Date: "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-06", result.Target)
}

func TestAdvanceNoFutureClass(t *testing.T) {
	entries := models.TimetableEntries{
		{Date: "2024-01-01", Type: models.EntryTypeClass, Details: "Intro: A"},
		{Date: "2024-01-02", Type: models.EntryTypeVacant, Details: models.DetailsNoTopics},
	}
	before := entries.Clone()

	_, err := Advance(entries, AdvanceRequest{Date: "2024-01-01"})

	assert.ErrorIs(t, err, ErrNoFutureClass)
	assert.Equal(t, before, entries)
}

func TestAdvanceRejections(t *testing.T) {
	entries := twoWeeks(t)

	_, err := Advance(entries, AdvanceRequest{Date: "2023-12-31"})
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = Advance(entries, AdvanceRequest{Date: "2024-01-02"})
	assert.ErrorIs(t, err, ErrNotClass)

	done, err := Advance(entries, AdvanceRequest{Date: "2024-01-01"})
	require.NoError(t, err)
	_, err = Advance(done.Entries, AdvanceRequest{Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrAlreadySettled)
	_, err = Reschedule(done.Entries, RescheduleRequest{Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrAlreadySettled)
}
