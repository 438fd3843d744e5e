package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	"github.com/noah-isme/whenfree-api/pkg/download"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
)

type eventLoader interface {
	GetEventWithResponses(ctx context.Context, id string) (*models.EventWithResponses, error)
}

type exportRenderer interface {
	Render(results dto.EventResults, format models.ExportFormat) (*ExportFile, error)
}

type linkSigner interface {
	Sign(eventID, format string) (string, time.Time, error)
	Verify(token string) (download.Grant, error)
}

// ResultsService serves the host-only views of an event. Every call
// re-checks the admin code through the access guard.
type ResultsService struct {
	events   eventLoader
	guard    adminVerifier
	exporter exportRenderer
	links    linkSigner
	logger   *zap.Logger
}

// NewResultsService constructs a ResultsService. links may be nil, in which
// case signed export links are unavailable.
func NewResultsService(events eventLoader, guard adminVerifier, exporter exportRenderer, links linkSigner, logger *zap.Logger) *ResultsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(nil, nil, logger)
	}
	return &ResultsService{events: events, guard: guard, exporter: exporter, links: links, logger: logger}
}

// Results returns the aggregated grid with counts and best dates.
func (s *ResultsService) Results(ctx context.Context, clientIP, eventID, code string) (*dto.EventResults, error) {
	data, err := s.authorize(ctx, clientIP, eventID, code)
	if err != nil {
		return nil, err
	}
	results := BuildResults(data.Event, data.Responses)
	return &results, nil
}

// Summary returns the plain-text digest for sharing in a group chat.
func (s *ResultsService) Summary(ctx context.Context, clientIP, eventID, code string) (string, error) {
	data, err := s.authorize(ctx, clientIP, eventID, code)
	if err != nil {
		return "", err
	}
	return FormatSummary(data.Event, data.Responses), nil
}

// Export renders the grid as a downloadable file.
func (s *ResultsService) Export(ctx context.Context, clientIP, eventID, code string, format models.ExportFormat) (*ExportFile, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	data, err := s.authorize(ctx, clientIP, eventID, code)
	if err != nil {
		return nil, err
	}
	return s.render(data, format)
}

// ExportLink issues a signed, short-lived download link for the export.
func (s *ResultsService) ExportLink(ctx context.Context, clientIP, eventID, code string, format models.ExportFormat) (*dto.ExportLink, error) {
	if s.links == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export links are disabled")
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := s.authorize(ctx, clientIP, eventID, code); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.links.Sign(eventID, string(format))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	return &dto.ExportLink{Token: token, Format: string(format), ExpiresAt: expiresAt}, nil
}

// Download renders the export a signed link points at.
func (s *ResultsService) Download(ctx context.Context, token string) (*ExportFile, error) {
	if s.links == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export links are disabled")
	}
	grant, err := s.links.Verify(token)
	if err != nil {
		if errors.Is(err, download.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid")
	}
	format := models.ExportFormat(grant.Format)
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid")
	}
	data, err := s.events.GetEventWithResponses(ctx, grant.EventID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return s.render(data, format)
}

func (s *ResultsService) render(data *models.EventWithResponses, format models.ExportFormat) (*ExportFile, error) {
	file, err := s.exporter.Render(BuildResults(data.Event, data.Responses), format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func (s *ResultsService) authorize(ctx context.Context, clientIP, eventID, code string) (*models.EventWithResponses, error) {
	ok, err := s.guard.VerifyAdminCode(ctx, clientIP, eventID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin code")
	}
	data, err := s.events.GetEventWithResponses(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return data, nil
}
