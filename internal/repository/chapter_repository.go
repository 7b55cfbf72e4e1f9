package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// ChapterRepository persists curriculum chapters in teaching order.
type ChapterRepository struct {
	db *sqlx.DB
}

// NewChapterRepository constructs repository.
func NewChapterRepository(db *sqlx.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// Create appends chapter after every stored chapter.
func (r *ChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	if chapter == nil {
		return fmt.Errorf("chapter payload is nil")
	}
	if chapter.ID == "" {
		chapter.ID = uuid.NewString()
	}
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO chapters (id, position, name, subtopics, created_by, created_at)
SELECT $1, COALESCE(MAX(position), 0) + 1, $2, $3, $4, $5 FROM chapters
RETURNING position`
	if err := r.db.GetContext(ctx, &chapter.Position, query, chapter.ID, chapter.Name, chapter.Subtopics, chapter.CreatedBy, chapter.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

// List returns every chapter ordered by position.
func (r *ChapterRepository) List(ctx context.Context) ([]models.Chapter, error) {
	const query = `SELECT id, position, name, subtopics, created_by, created_at FROM chapters ORDER BY position ASC`
	var chapters []models.Chapter
	if err := r.db.SelectContext(ctx, &chapters, query); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}
