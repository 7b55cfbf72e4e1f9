package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/planner"
	"github.com/noah-isme/lesson-planner-api/internal/repository"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type timetableRepository interface {
	Latest(ctx context.Context) (*models.Timetable, error)
	Append(ctx context.Context, timetable *models.Timetable, expectedVersion int) error
	ListVersions(ctx context.Context, limit, offset int) ([]models.TimetableVersion, int, error)
}

type currentSemesterReader interface {
	Current(ctx context.Context) (*models.Semester, error)
}

type chapterLister interface {
	List(ctx context.Context) ([]models.Chapter, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string)
}

// TimetableConfig tunes the timetable service.
type TimetableConfig struct {
	Location       *time.Location
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// GenerateOutcome is a generated timetable and whether it was stored.
type GenerateOutcome struct {
	Timetable   *models.Timetable
	Unscheduled []string
	Persisted   bool
}

// MutationOutcome is a repaired timetable and the date that absorbed the change.
type MutationOutcome struct {
	Timetable *models.Timetable
	Target    string
}

// TimetableService generates, stores, and repairs the timetable. Mutations are
// serialized so each one starts from the latest stored version.
type TimetableService struct {
	timetables timetableRepository
	semesters  currentSemesterReader
	chapters   chapterLister
	cache      timetableCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     TimetableConfig
	now        func() time.Time

	mu sync.Mutex
}

// NewTimetableService constructs the service.
func NewTimetableService(
	timetables timetableRepository,
	semesters currentSemesterReader,
	chapters chapterLister,
	cache timetableCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	config TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if err := registerPlannerValidations(validate); err != nil {
		logger.Warn("planner validations not registered", zap.Error(err))
	}
	return &TimetableService{
		timetables: timetables,
		semesters:  semesters,
		chapters:   chapters,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// Current returns the latest stored timetable.
func (s *TimetableService) Current(ctx context.Context) (*models.Timetable, error) {
	timetable, _, err := s.CurrentCached(ctx)
	return timetable, err
}

// CurrentCached returns the latest stored timetable and whether it came from cache.
func (s *TimetableService) CurrentCached(ctx context.Context) (*models.Timetable, bool, error) {
	var cached models.Timetable
	if s.cache != nil && s.cache.Get(ctx, CacheKeyCurrentTimetable, &cached) {
		return &cached, true, nil
	}

	timetable, err := s.timetables.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if s.cache != nil {
		s.cache.Set(ctx, CacheKeyCurrentTimetable, timetable, s.config.CacheTTL)
	}
	return timetable, false, nil
}

// Today returns today's entry in the planner timezone, or nil when the
// timetable does not cover today.
func (s *TimetableService) Today(ctx context.Context) (*models.TimetableEntry, error) {
	timetable, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	key := planner.DateKey(s.now().In(s.config.Location))
	if idx := timetable.Entries.IndexOf(key); idx >= 0 {
		entry := timetable.Entries[idx]
		return &entry, nil
	}
	return nil, nil
}

// Versions pages through stored timetable versions, newest first.
func (s *TimetableService) Versions(ctx context.Context, query dto.TimetableVersionsQuery) ([]models.TimetableVersion, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pagination")
	}
	page, size := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	versions, total, err := s.timetables.ListVersions(ctx, size, (page-1)*size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable versions")
	}
	if versions == nil {
		versions = []models.TimetableVersion{}
	}
	return versions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Overview bundles the current semester, curriculum, and timetable. Missing
// pieces are nil rather than errors.
func (s *TimetableService) Overview(ctx context.Context) (*models.PlannerOverview, error) {
	overview := &models.PlannerOverview{Chapters: []models.Chapter{}}

	semester, err := s.semesters.Current(ctx)
	switch {
	case err == nil:
		overview.Semester = semester
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	chapters, err := s.chapters.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chapters")
	}
	if chapters != nil {
		overview.Chapters = chapters
	}

	timetable, err := s.Current(ctx)
	if err != nil {
		if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrNotFound.Code {
			return nil, err
		}
	} else {
		overview.Timetable = timetable
	}
	return overview, nil
}

// Generate builds a timetable from the current semester and curriculum and
// stores it. A storage failure is logged and reported through Persisted; the
// generated timetable is still returned.
func (s *TimetableService) Generate(ctx context.Context, userID string) (*GenerateOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	semester, err := s.semesters.Current(ctx)
	if err != nil {
		s.record(models.TimetableOperationGenerate, err, start)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, "no semester saved yet")
		}
		return nil, readError(err, "failed to load semester")
	}
	chapters, err := s.chapters.List(ctx)
	if err != nil {
		s.record(models.TimetableOperationGenerate, err, start)
		return nil, readError(err, "failed to list chapters")
	}

	result, err := planner.Generate(planner.ConfigFromSemester(*semester), chapters)
	if err != nil {
		s.record(models.TimetableOperationGenerate, err, start)
		if errors.Is(err, planner.ErrInvalidDate) {
			return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "stored semester has an invalid date: "+err.Error())
		}
		return nil, plannerError(err)
	}

	unscheduled := make([]string, 0, len(result.Unscheduled))
	for _, topic := range result.Unscheduled {
		unscheduled = append(unscheduled, topic.Details())
	}
	s.metrics.SetUnscheduledTopics(len(unscheduled))
	if len(unscheduled) > 0 {
		s.logger.Warn("curriculum does not fit the semester", zap.Int("unscheduled", len(unscheduled)))
	}

	timetable := &models.Timetable{
		SemesterID: &semester.ID,
		Operation:  models.TimetableOperationGenerate,
		Entries:    result.Entries,
		CreatedBy:  optionalID(userID),
	}
	outcome := &GenerateOutcome{Timetable: timetable, Unscheduled: unscheduled}

	if err := s.persist(ctx, timetable); err != nil {
		s.metrics.RecordPersistFailure()
		s.logger.Warn("failed to persist generated timetable", zap.Error(err))
		s.record(models.TimetableOperationGenerate, nil, start)
		return outcome, nil
	}

	outcome.Persisted = true
	s.record(models.TimetableOperationGenerate, nil, start)
	s.logger.Info("timetable generated", zap.Int("version", timetable.Version), zap.Int("entries", len(timetable.Entries)))
	return outcome, nil
}

// Save stores client-edited entries as a new version.
func (s *TimetableService) Save(ctx context.Context, userID string, req dto.SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	entries, err := planner.Validate(models.TimetableEntries(req.Entries))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var semesterID *string
	semester, err := s.semesters.Current(ctx)
	switch {
	case err == nil:
		semesterID = &semester.ID
	case !errors.Is(err, sql.ErrNoRows):
		s.record(models.TimetableOperationSave, err, start)
		return nil, readError(err, "failed to load semester")
	}

	timetable := &models.Timetable{
		SemesterID: semesterID,
		Operation:  models.TimetableOperationSave,
		Entries:    entries,
		CreatedBy:  optionalID(userID),
	}
	if err := s.persist(ctx, timetable); err != nil {
		s.record(models.TimetableOperationSave, err, start)
		return nil, persistError(err)
	}
	s.record(models.TimetableOperationSave, nil, start)
	return timetable, nil
}

// Reschedule moves a missed class to the first free day after it.
func (s *TimetableService) Reschedule(ctx context.Context, userID string, req dto.RescheduleRequest) (*MutationOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	return s.mutate(ctx, userID, models.TimetableOperationReschedule, func(entries models.TimetableEntries) (models.TimetableEntries, string, error) {
		result, err := planner.Reschedule(entries, planner.RescheduleRequest{
			Date:           req.MissedDate,
			Details:        req.TopicDetails,
			CandidateSlots: req.CandidateSlots,
		})
		return result.Entries, result.Target, err
	})
}

// Advance completes a class and carries its topic into the next class.
func (s *TimetableService) Advance(ctx context.Context, userID string, req dto.AdvanceRequest) (*MutationOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid advance payload")
	}
	return s.mutate(ctx, userID, models.TimetableOperationAdvance, func(entries models.TimetableEntries) (models.TimetableEntries, string, error) {
		result, err := planner.Advance(entries, planner.AdvanceRequest{Date: req.CompletedDate, NextDate: req.NextDate})
		return result.Entries, result.Target, err
	})
}

type mutation func(entries models.TimetableEntries) (models.TimetableEntries, string, error)

func (s *TimetableService) mutate(ctx context.Context, userID string, op models.TimetableOperation, apply mutation) (*MutationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	latest, err := s.timetables.Latest(ctx)
	if err != nil {
		s.record(op, err, start)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		return nil, readError(err, "failed to load timetable")
	}

	entries, target, err := apply(latest.Entries)
	if err != nil {
		s.record(op, err, start)
		return nil, plannerError(err)
	}

	timetable := &models.Timetable{
		SemesterID: latest.SemesterID,
		Operation:  op,
		Entries:    entries,
		CreatedBy:  optionalID(userID),
	}
	if err := s.appendAfter(ctx, timetable, latest.Version); err != nil {
		s.record(op, err, start)
		return nil, persistError(err)
	}

	s.record(op, nil, start)
	s.logger.Info("timetable updated",
		zap.String("operation", string(op)),
		zap.String("target", target),
		zap.Int("version", timetable.Version),
	)
	return &MutationOutcome{Timetable: timetable, Target: target}, nil
}

// persist appends timetable after whatever version is currently stored. The
// caller bounds ctx with withTimeout.
func (s *TimetableService) persist(ctx context.Context, timetable *models.Timetable) error {
	expected := 0
	latest, err := s.timetables.Latest(ctx)
	switch {
	case err == nil:
		expected = latest.Version
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}
	return s.appendAfter(ctx, timetable, expected)
}

func (s *TimetableService) appendAfter(ctx context.Context, timetable *models.Timetable, expected int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.timetables.Append(ctx, timetable, expected); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, CachePatternPlanner)
	}
	return nil
}

func (s *TimetableService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

func (s *TimetableService) record(op models.TimetableOperation, err error, start time.Time) {
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, planner.ErrNoSlotAvailable), errors.Is(err, planner.ErrNoFutureClass):
		outcome = OutcomeConflict
	case isPlannerRejection(err), errors.Is(err, sql.ErrNoRows):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeError
	}
	s.metrics.RecordPlannerOperation(string(op), outcome, time.Since(start))
}

func isPlannerRejection(err error) bool {
	for _, target := range []error{
		planner.ErrInvalidRange, planner.ErrWindowTooLong, planner.ErrInvalidDate, planner.ErrInvalidWeekday, planner.ErrEmptyCurriculum,
		planner.ErrEntryNotFound, planner.ErrNotClass, planner.ErrDetailsMismatch, planner.ErrAlreadySettled,
		planner.ErrInvalidTarget, planner.ErrInvalidTimetable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// plannerError maps engine failures onto API errors.
func plannerError(err error) error {
	switch {
	case errors.Is(err, planner.ErrInvalidRange), errors.Is(err, planner.ErrEmptyCurriculum),
		errors.Is(err, planner.ErrInvalidWeekday), errors.Is(err, planner.ErrWindowTooLong):
		return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, err.Error())
	case errors.Is(err, planner.ErrNoSlotAvailable):
		return appErrors.Wrap(err, appErrors.ErrNoSlotAvailable.Code, appErrors.ErrNoSlotAvailable.Status, err.Error())
	case errors.Is(err, planner.ErrNoFutureClass):
		return appErrors.Wrap(err, appErrors.ErrNoFutureClass.Code, appErrors.ErrNoFutureClass.Status, err.Error())
	case errors.Is(err, planner.ErrEntryNotFound):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, err.Error())
	case errors.Is(err, planner.ErrAlreadySettled):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, err.Error())
	case errors.Is(err, planner.ErrNotClass), errors.Is(err, planner.ErrDetailsMismatch),
		errors.Is(err, planner.ErrInvalidTarget), errors.Is(err, planner.ErrInvalidDate),
		errors.Is(err, planner.ErrInvalidTimetable):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable operation failed")
	}
}

func persistError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "timetable changed concurrently, reload and retry")
	case isTimeout(err):
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "timetable update timed out, nothing was changed")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}
}

// readError maps a failed load, reporting an expired deadline as a timeout.
func readError(err error, message string) error {
	if isTimeout(err) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "timetable operation timed out, nothing was changed")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
