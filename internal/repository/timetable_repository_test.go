package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

func sampleTimetable() *models.Timetable {
	return &models.Timetable{
		Operation: models.TimetableOperationGenerate,
		Entries: models.TimetableEntries{
			{Date: "2024-01-01", Type: models.EntryTypeClass, Details: "Intro: A"},
		},
	}
}

func TestTimetableAppend(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("HAVING COALESCE(MAX(version), 0) = $7")).
		WithArgs(sqlmock.AnyArg(), nil, models.TimetableOperationGenerate, sqlmock.AnyArg(), nil, sqlmock.AnyArg(), 2).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))

	timetable := sampleTimetable()
	require.NoError(t, repo.Append(context.Background(), timetable, 2))
	assert.Equal(t, 3, timetable.Version)
	assert.NotEmpty(t, timetable.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableAppendConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery("INSERT INTO timetables").WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err := repo.Append(context.Background(), sampleTimetable(), 1)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestTimetableLatest(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	semesterID := "s1"
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables ORDER BY version DESC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "semester_id", "operation", "entries", "created_by", "created_at"}).
			AddRow("t1", 4, semesterID, "RESCHEDULE", []byte(`[{"date":"2024-01-01","type":"Class","details":"Intro: A","status":"Rescheduled","rescheduled_to":"2024-01-02"}]`), nil, now))

	timetable, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, timetable.Version)
	assert.Equal(t, models.TimetableOperationReschedule, timetable.Operation)
	require.Len(t, timetable.Entries, 1)
	assert.Equal(t, "2024-01-02", timetable.Entries[0].RescheduledTo)

	mock.ExpectQuery("FROM timetables").WillReturnError(sql.ErrNoRows)
	_, err = repo.Latest(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTimetableListVersions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("jsonb_array_length(entries) AS entry_count")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "semester_id", "operation", "entry_count", "created_at"}).
			AddRow("t2", 2, nil, "ADVANCE", 181, now).
			AddRow("t1", 1, nil, "GENERATE", 181, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetables")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	versions, total, err := repo.ListVersions(context.Background(), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, models.TimetableOperationAdvance, versions[0].Operation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
