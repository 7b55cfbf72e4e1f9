package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/export"
)

type stubTimetableReader struct {
	timetable *models.Timetable
	err       error
}

func (s stubTimetableReader) Current(ctx context.Context) (*models.Timetable, error) {
	return s.timetable, s.err
}

type failingPDF struct{}

func (failingPDF) Render(data export.Dataset, title string) ([]byte, error) {
	return nil, errors.New("font missing")
}

func exportFixture() *models.Timetable {
	return &models.Timetable{
		ID:      "tt-1",
		Version: 3,
		Entries: models.TimetableEntries{
			{Date: "2024-01-01", Type: models.EntryTypeClass, Details: "Algebra: Variables", Status: models.EntryStatusRescheduled, RescheduledTo: "2024-01-02"},
			{Date: "2024-01-02", Type: models.EntryTypeClass, Details: "Algebra: Variables", Status: models.EntryStatusRescheduled, RescheduledFrom: "2024-01-01"},
			{Date: "2024-01-03", Type: models.EntryTypeClass, Details: "Algebra: Equations"},
			{Date: "2024-01-04", Type: models.EntryTypeHoliday, Details: models.DetailsNoClasses},
		},
	}
}

func TestExportCSVByDefault(t *testing.T) {
	svc := NewExportService(stubTimetableReader{timetable: exportFixture()}, nil, nil, nil, nil, nil)

	file, err := svc.Export(context.Background(), dto.ExportQuery{})
	require.NoError(t, err)

	assert.Equal(t, "timetable-v3.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Weekday,Type,Details,Status,Note", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Monday")
	assert.Contains(t, lines[1], "moved to 2024-01-02")
	assert.Contains(t, lines[3], "Pending")
}

func TestExportOtherFormats(t *testing.T) {
	svc := NewExportService(stubTimetableReader{timetable: exportFixture()}, nil, nil, nil, nil, nil)

	for format, prefix := range map[string]string{"pdf": "%PDF", "xlsx": "PK", "ics": "BEGIN:VCALENDAR"} {
		file, err := svc.Export(context.Background(), dto.ExportQuery{Format: format})
		require.NoError(t, err, format)
		assert.Equal(t, "timetable-v3."+format, file.Filename)
		assert.True(t, strings.HasPrefix(string(file.Body), prefix), format)
	}
}

func TestExportCalendarSkipsMovedClasses(t *testing.T) {
	events := classEvents(exportFixture())

	require.Len(t, events, 2)
	assert.Equal(t, "2024-01-02", events[0].Date.Format("2006-01-02"))
	assert.Equal(t, "Rescheduled. rescheduled from 2024-01-01", events[0].Description)
	assert.Equal(t, "tt-1-2024-01-03@lesson-planner", events[1].UID)
}

func TestExportErrors(t *testing.T) {
	svc := NewExportService(stubTimetableReader{timetable: exportFixture()}, nil, nil, failingPDF{}, nil, nil)

	_, err := svc.Export(context.Background(), dto.ExportQuery{Format: "docx"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), dto.ExportQuery{Format: "pdf"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	missing := NewExportService(stubTimetableReader{err: appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")}, nil, nil, nil, nil, nil)
	_, err = missing.Export(context.Background(), dto.ExportQuery{Format: "csv"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
