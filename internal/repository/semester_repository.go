package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const semesterColumns = `id, version, to_char(start_date, 'YYYY-MM-DD') AS start_date, to_char(end_date, 'YYYY-MM-DD') AS end_date, teaching_days, holidays, created_by, created_at`

// SemesterRepository persists versioned semester configurations.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Create stores semester as the next version.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester == nil {
		return fmt.Errorf("semester payload is nil")
	}
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin semester tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM semesters`
	if err := tx.GetContext(ctx, &semester.Version, nextVersionQuery); err != nil {
		return fmt.Errorf("compute next semester version: %w", err)
	}

	const insertQuery = `
INSERT INTO semesters (id, version, start_date, end_date, teaching_days, holidays, created_by, created_at)
VALUES (:id, :version, :start_date, :end_date, :teaching_days, :holidays, :created_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, insertQuery, semester); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert semester: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit semester: %w", err)
	}
	return nil
}

// List returns every stored semester, oldest version first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters ORDER BY version ASC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// Current returns the highest semester version.
func (r *SemesterRepository) Current(ctx context.Context) (*models.Semester, error) {
	query := `SELECT ` + semesterColumns + ` FROM semesters ORDER BY version DESC LIMIT 1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find current semester: %w", err)
	}
	return &semester, nil
}
