package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/repository"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type chapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	List(ctx context.Context) ([]models.Chapter, error)
}

// ChapterService stores the curriculum in teaching order.
type ChapterService struct {
	repo      chapterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChapterService constructs the service.
func NewChapterService(repo chapterRepository, validate *validator.Validate, logger *zap.Logger) *ChapterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChapterService{repo: repo, validator: validate, logger: logger}
}

// List returns chapters in curriculum order.
func (s *ChapterService) List(ctx context.Context) ([]models.Chapter, error) {
	chapters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chapters")
	}
	if chapters == nil {
		chapters = []models.Chapter{}
	}
	return chapters, nil
}

// Save appends a chapter after the existing ones. Blank subtopics are dropped.
func (s *ChapterService) Save(ctx context.Context, userID string, req dto.SaveChapterRequest) (*models.Chapter, error) {
	req.Name = strings.TrimSpace(req.Name)
	subtopics := make([]string, 0, len(req.Subtopics))
	for _, sub := range req.Subtopics {
		if sub = strings.TrimSpace(sub); sub != "" {
			subtopics = append(subtopics, sub)
		}
	}
	req.Subtopics = subtopics
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chapter payload")
	}

	chapter := &models.Chapter{
		Name:      req.Name,
		Subtopics: pq.StringArray(req.Subtopics),
		CreatedBy: optionalID(userID),
	}
	if err := s.repo.Create(ctx, chapter); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "chapter saved concurrently, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save chapter")
	}

	s.logger.Info("chapter saved", zap.Int("position", chapter.Position), zap.Int("subtopics", len(chapter.Subtopics)))
	return chapter, nil
}
