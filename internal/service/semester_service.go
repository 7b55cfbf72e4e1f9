package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/planner"
	"github.com/noah-isme/lesson-planner-api/internal/repository"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type semesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	List(ctx context.Context) ([]models.Semester, error)
	Current(ctx context.Context) (*models.Semester, error)
}

// SemesterService stores versioned semester configurations.
type SemesterService struct {
	repo      semesterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs the service.
func NewSemesterService(repo semesterRepository, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := registerPlannerValidations(validate); err != nil {
		logger.Warn("planner validations not registered", zap.Error(err))
	}
	return &SemesterService{repo: repo, validator: validate, logger: logger}
}

// List returns every stored semester, oldest first. The last element is current.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	if semesters == nil {
		semesters = []models.Semester{}
	}
	return semesters, nil
}

// Current returns the most recently saved semester.
func (s *SemesterService) Current(ctx context.Context) (*models.Semester, error) {
	semester, err := s.repo.Current(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no semester saved yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// Save validates, normalizes, and stores a semester as the new current version.
func (s *SemesterService) Save(ctx context.Context, userID string, req dto.SaveSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}

	cfg, err := planner.SemesterConfig{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		TeachingDays: req.TeachingDays,
		Holidays:     req.Holidays,
	}.Normalized()
	if err != nil {
		if errors.Is(err, planner.ErrInvalidRange) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start date must not be after end date")
		}
		if errors.Is(err, planner.ErrWindowTooLong) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("semester may span at most %d days", planner.MaxWindowDays))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}

	semester := &models.Semester{
		StartDate:    cfg.StartDate,
		EndDate:      cfg.EndDate,
		TeachingDays: pq.StringArray(cfg.TeachingDays),
		Holidays:     pq.StringArray(nonNil(cfg.Holidays)),
		CreatedBy:    optionalID(userID),
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "semester saved concurrently, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save semester")
	}

	s.logger.Info("semester saved",
		zap.Int("version", semester.Version),
		zap.String("start_date", semester.StartDate),
		zap.String("end_date", semester.EndDate),
	)
	return semester, nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
