package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/sharelink"
)

type shareSigner interface {
	Generate(owner, format string) (string, time.Time, error)
	Parse(token string) (sharelink.Claims, error)
}

type timetableExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*ExportFile, error)
}

// ShareService issues signed links that serve timetable exports to calendar
// apps and other clients that cannot send a bearer token.
type ShareService struct {
	signer     shareSigner
	exporter   timetableExporter
	linkPrefix string
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewShareService constructs the service. linkPrefix is prepended to tokens to build URLs.
func NewShareService(signer shareSigner, exporter timetableExporter, linkPrefix string, validate *validator.Validate, logger *zap.Logger) *ShareService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{signer: signer, exporter: exporter, linkPrefix: linkPrefix, validator: validate, logger: logger}
}

// Link signs a read-only link to the current timetable in the requested format (ics by default).
func (s *ShareService) Link(ctx context.Context, userID string, req dto.ShareLinkRequest) (*dto.ShareLinkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid share payload")
	}
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "share links require an account")
	}
	format := req.Format
	if format == "" {
		format = ExportFormatICS
	}

	token, expiresAt, err := s.signer.Generate(userID, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign share link")
	}
	s.logger.Info("share link issued", zap.String("user_id", userID), zap.String("format", format), zap.Time("expires_at", expiresAt))
	return &dto.ShareLinkResponse{URL: s.linkPrefix + token, Format: format, ExpiresAt: expiresAt}, nil
}

// Open validates token and renders the export it grants.
func (s *ShareService) Open(ctx context.Context, token string) (*ExportFile, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, sharelink.ErrExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "share link expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid share link")
	}
	return s.exporter.Export(ctx, dto.ExportQuery{Format: claims.Format})
}
