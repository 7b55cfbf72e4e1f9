package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type chapterService interface {
	List(ctx context.Context) ([]models.Chapter, error)
	Save(ctx context.Context, userID string, req dto.SaveChapterRequest) (*models.Chapter, error)
}

// ChapterHandler exposes curriculum endpoints.
type ChapterHandler struct {
	service chapterService
}

// NewChapterHandler builds a new handler.
func NewChapterHandler(service chapterService) *ChapterHandler {
	return &ChapterHandler{service: service}
}

// List godoc
// @Summary List chapters
// @Tags Chapters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chapters [get]
func (h *ChapterHandler) List(c *gin.Context) {
	chapters, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chapters, nil)
}

// Save godoc
// @Summary Append chapter
// @Tags Chapters
// @Accept json
// @Produce json
// @Param payload body dto.SaveChapterRequest true "Chapter payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /chapters [post]
func (h *ChapterHandler) Save(c *gin.Context) {
	var req dto.SaveChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chapter payload"))
		return
	}

	chapter, err := h.service.Save(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, chapter)
}
