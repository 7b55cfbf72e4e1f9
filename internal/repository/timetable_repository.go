package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// ErrVersionConflict reports that another writer appended first.
var ErrVersionConflict = errors.New("timetable version conflict")

// TimetableRepository persists append-only timetable versions.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Append stores timetable as the version following expectedVersion. It fails
// with ErrVersionConflict when the latest stored version differs.
func (r *TimetableRepository) Append(ctx context.Context, timetable *models.Timetable, expectedVersion int) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO timetables (id, version, semester_id, operation, entries, created_by, created_at)
SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, $5, $6 FROM timetables
HAVING COALESCE(MAX(version), 0) = $7
RETURNING version`
	err := r.db.GetContext(ctx, &timetable.Version, query,
		timetable.ID,
		timetable.SemesterID,
		timetable.Operation,
		timetable.Entries,
		timetable.CreatedBy,
		timetable.CreatedAt,
		expectedVersion,
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		return ErrVersionConflict
	default:
		return fmt.Errorf("append timetable: %w", err)
	}
}

// Latest returns the highest timetable version.
func (r *TimetableRepository) Latest(ctx context.Context) (*models.Timetable, error) {
	const query = `SELECT id, version, semester_id, operation, entries, created_by, created_at FROM timetables ORDER BY version DESC LIMIT 1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest timetable: %w", err)
	}
	return &timetable, nil
}

// ListVersions returns version metadata, newest first.
func (r *TimetableRepository) ListVersions(ctx context.Context, limit, offset int) ([]models.TimetableVersion, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, version, semester_id, operation, jsonb_array_length(entries) AS entry_count, created_at FROM timetables ORDER BY version DESC LIMIT $1 OFFSET $2`
	var versions []models.TimetableVersion
	if err := r.db.SelectContext(ctx, &versions, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list timetable versions: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM timetables`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count timetable versions: %w", err)
	}
	return versions, total, nil
}
