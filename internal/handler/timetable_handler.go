package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/middleware"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type timetableService interface {
	CurrentCached(ctx context.Context) (*models.Timetable, bool, error)
	Today(ctx context.Context) (*models.TimetableEntry, error)
	Versions(ctx context.Context, query dto.TimetableVersionsQuery) ([]models.TimetableVersion, *models.Pagination, error)
	Overview(ctx context.Context) (*models.PlannerOverview, error)
	Generate(ctx context.Context, userID string) (*service.GenerateOutcome, error)
	Save(ctx context.Context, userID string, req dto.SaveTimetableRequest) (*models.Timetable, error)
	Reschedule(ctx context.Context, userID string, req dto.RescheduleRequest) (*service.MutationOutcome, error)
	Advance(ctx context.Context, userID string, req dto.AdvanceRequest) (*service.MutationOutcome, error)
}

type timetableExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error)
}

// TimetableHandler exposes timetable generation, repair, and export endpoints.
type TimetableHandler struct {
	service  timetableService
	exporter timetableExporter
}

// NewTimetableHandler builds a new handler.
func NewTimetableHandler(service timetableService, exporter timetableExporter) *TimetableHandler {
	return &TimetableHandler{service: service, exporter: exporter}
}

// Get godoc
// @Summary Get current timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, cacheHit, err := h.service.CurrentCached(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, timetable, nil, middleware.ExtractMeta(c))
}

// Today godoc
// @Summary Get today's entry
// @Description Returns today's class, or null with meta.has_class=false
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/today [get]
func (h *TimetableHandler) Today(c *gin.Context) {
	entry, err := h.service.Today(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	hasClass := entry != nil && entry.Type == models.EntryTypeClass
	if !hasClass {
		entry = nil
	}
	middleware.SetMeta(c, "has_class", hasClass)
	response.JSON(c, http.StatusOK, entry, nil, middleware.ExtractMeta(c))
}

// Versions godoc
// @Summary List timetable versions
// @Description Newest first
// @Tags Timetable
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetable/versions [get]
func (h *TimetableHandler) Versions(c *gin.Context) {
	var query dto.TimetableVersionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	versions, pagination, err := h.service.Versions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, pagination)
}

// Export godoc
// @Summary Export current timetable
// @Tags Timetable
// @Produce octet-stream
// @Param format query string false "csv, pdf, xlsx or ics"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Generate godoc
// @Summary Generate timetable
// @Description Builds a timetable from the current semester and chapters. meta.persisted reports whether it was stored
// @Tags Timetable
// @Produce json
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	outcome, err := h.service.Generate(c.Request.Context(), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusCreated
	if !outcome.Persisted {
		status = http.StatusOK
	}
	payload := dto.GenerateTimetableResponse{Timetable: outcome.Timetable, Unscheduled: outcome.Unscheduled}
	middleware.SetMeta(c, "persisted", outcome.Persisted)
	middleware.SetMeta(c, "unscheduled", len(outcome.Unscheduled))
	response.JSON(c, status, payload, nil, middleware.ExtractMeta(c))
}

// Save godoc
// @Summary Save edited timetable
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Timetable entries"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable [put]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	timetable, err := h.service.Save(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// Reschedule godoc
// @Summary Reschedule missed class
// @Description Moves a missed class into the first free day after it
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.RescheduleRequest true "Missed class"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/reschedule [post]
func (h *TimetableHandler) Reschedule(c *gin.Context) {
	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reschedule payload"))
		return
	}

	outcome, err := h.service.Reschedule(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TimetableMutationResponse{Timetable: outcome.Timetable, TargetDate: outcome.Target}, nil)
}

// Advance godoc
// @Summary Complete class and continue topic
// @Description Marks a class completed and appends its topic to the next class
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.AdvanceRequest true "Completed class"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/advance [post]
func (h *TimetableHandler) Advance(c *gin.Context) {
	var req dto.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid advance payload"))
		return
	}

	outcome, err := h.service.Advance(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TimetableMutationResponse{Timetable: outcome.Timetable, TargetDate: outcome.Target}, nil)
}

// Overview godoc
// @Summary Planner overview
// @Description Current semester, chapters, and timetable together; missing pieces are null
// @Tags Planner
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /planner/overview [get]
func (h *TimetableHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
