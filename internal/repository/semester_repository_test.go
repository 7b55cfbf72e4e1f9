package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

var semesterRowColumns = []string{"id", "version", "start_date", "end_date", "teaching_days", "holidays", "created_by", "created_at"}

func TestSemesterCreateAssignsNextVersion(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM semesters")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
	mock.ExpectExec("INSERT INTO semesters").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	semester := &models.Semester{
		StartDate:    "2024-01-01",
		EndDate:      "2024-06-30",
		TeachingDays: pq.StringArray{"mon", "wed"},
		Holidays:     pq.StringArray{},
	}
	require.NoError(t, repo.Create(context.Background(), semester))
	assert.Equal(t, 3, semester.Version)
	assert.NotEmpty(t, semester.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectExec("INSERT INTO semesters").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Semester{StartDate: "2024-01-01", EndDate: "2024-01-02"})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterListAndCurrent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM semesters ORDER BY version ASC")).
		WillReturnRows(sqlmock.NewRows(semesterRowColumns).
			AddRow("s1", 1, "2024-01-01", "2024-06-30", "{mon,wed}", "{}", nil, now).
			AddRow("s2", 2, "2024-07-01", "2024-12-20", "{tue}", "{2024-08-17}", nil, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM semesters ORDER BY version DESC LIMIT 1")).
		WillReturnRows(sqlmock.NewRows(semesterRowColumns).
			AddRow("s2", 2, "2024-07-01", "2024-12-20", "{tue}", "{2024-08-17}", nil, now))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, pq.StringArray{"mon", "wed"}, list[0].TeachingDays)

	current, err := repo.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
	assert.Equal(t, pq.StringArray{"2024-08-17"}, current.Holidays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterCurrentEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectQuery("FROM semesters").WillReturnError(sql.ErrNoRows)

	_, err := repo.Current(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
