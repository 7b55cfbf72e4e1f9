package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type shareService interface {
	Link(ctx context.Context, userID string, req dto.ShareLinkRequest) (*dto.ShareLinkResponse, error)
	Open(ctx context.Context, token string) (*service.ExportFile, error)
}

// ShareHandler issues and serves signed timetable links.
type ShareHandler struct {
	service shareService
}

// NewShareHandler builds a new handler.
func NewShareHandler(service shareService) *ShareHandler {
	return &ShareHandler{service: service}
}

// Create godoc
// @Summary Create share link
// @Description Signs a read-only link to the current timetable, suitable for calendar subscriptions
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.ShareLinkRequest false "Export format"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/share [post]
func (h *ShareHandler) Create(c *gin.Context) {
	var req dto.ShareLinkRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid share payload"))
			return
		}
	}

	link, err := h.service.Link(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Open share link
// @Tags Timetable
// @Produce octet-stream
// @Param token path string true "Share token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /shared/timetable/{token} [get]
func (h *ShareHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
