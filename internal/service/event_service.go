package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/ratelimit"
)

// ShareReplyWindow is how far ahead the share message asks people to reply by.
const ShareReplyWindow = 7 * 24 * time.Hour

// ShareReplyLayout renders the reply-by date, e.g. "Monday, Jun 3".
const ShareReplyLayout = "Monday, Jan 2"

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	UpdateDetails(ctx context.Context, id string, details models.EventDetails) (bool, error)
}

type responseLister interface {
	ListByEvent(ctx context.Context, eventID string) ([]models.Response, error)
}

type adminVerifier interface {
	VerifyAdminCode(ctx context.Context, clientIP, eventID, code string) (bool, error)
}

// EventServiceConfig tunes event behaviour.
type EventServiceConfig struct {
	PublicBaseURL  string
	HashAdminCodes bool
	Policy         ratelimit.Policy
}

// EventService orchestrates event creation, public reads and host edits.
type EventService struct {
	events    eventRepository
	responses responseLister
	guard     adminVerifier
	limiter   rateLimiter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EventServiceConfig
	now       func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(events eventRepository, responses responseLister, guard adminVerifier, limiter rateLimiter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg EventServiceConfig) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = ratelimit.NewLimiter(nil)
	}
	if cfg.Policy.MaxRequests <= 0 || cfg.Policy.Window <= 0 {
		cfg.Policy = ratelimit.DefaultPolicies().CreateEvent
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &EventService{
		events:    events,
		responses: responses,
		guard:     guard,
		limiter:   limiter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CreateEvent validates the host's proposal and stores it under a fresh identifier.
func (s *EventService) CreateEvent(ctx context.Context, clientIP string, req dto.CreateEventRequest) (*dto.CreateEventResult, error) {
	if err := throttle(ctx, s.limiter, s.metrics, ratelimit.CreateKey(clientIP), s.cfg.Policy, "Too many requests. Please try again later."); err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.AdminCode = strings.TrimSpace(req.AdminCode)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	for _, slot := range req.TimeSlots {
		if !slot.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown time slot %q", slot))
		}
	}

	code := req.AdminCode
	if s.cfg.HashAdminCodes {
		hashed, err := HashAdminCode(code)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to secure admin code")
		}
		code = hashed
	}

	event := &models.Event{
		Title:       req.Title,
		Location:    normalizeOptional(req.Location),
		Description: normalizeOptional(req.Description),
		AdminCode:   code,
		HostDates:   models.DateList(req.HostDates).Sorted(),
		TimeSlots:   models.UnionOf(req.TimeSlots).Slots(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.metrics.RecordEventCreated()
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.Int("host_dates", len(event.HostDates)))
	return &dto.CreateEventResult{ID: event.ID}, nil
}

// GetEvent returns what a participant holding the link may see.
func (s *EventService) GetEvent(ctx context.Context, id string) (*dto.PublicEvent, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	public := toPublicEvent(*event)
	return &public, nil
}

// GetEventWithResponses loads an event and its responses in creation order.
// A missing event yields nil without an error.
func (s *EventService) GetEventWithResponses(ctx context.Context, id string) (*models.EventWithResponses, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	responses, err := s.responses.ListByEvent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load responses")
	}
	return &models.EventWithResponses{Event: *event, Responses: responses}, nil
}

// ShareLink builds the participant link and a ready-to-paste invitation.
func (s *EventService) ShareLink(ctx context.Context, id string) (*dto.ShareLink, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	url := s.cfg.PublicBaseURL + "/" + event.ID
	replyBy := s.now().Add(ShareReplyWindow)

	var b strings.Builder
	b.WriteString("hey! we're planning ")
	b.WriteString(event.Title)
	if event.Location != nil && *event.Location != "" {
		b.WriteString(" at ")
		b.WriteString(*event.Location)
	}
	b.WriteString(". when are you free? fill this out real quick:\n")
	b.WriteString(url)
	b.WriteString("\n\nplease reply by ")
	b.WriteString(replyBy.Format(ShareReplyLayout))
	b.WriteString(" 🙏")

	return &dto.ShareLink{URL: url, Message: b.String(), ReplyBy: replyBy}, nil
}

// UpdateEvent edits title, location and description after re-checking the
// admin code. Expected failures come back inside the result; the error is
// reserved for infrastructure faults.
func (s *EventService) UpdateEvent(ctx context.Context, clientIP, id string, req dto.UpdateEventRequest) (dto.MutationResult, error) {
	ok, err := s.guard.VerifyAdminCode(ctx, clientIP, id, req.AdminCode)
	if err != nil {
		return mutationFailure(err)
	}
	if !ok {
		return failedMutation(appErrors.Clone(appErrors.ErrUnauthorized, "Invalid admin code")), nil
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return failedMutation(appErrors.Clone(appErrors.ErrValidation, "Title is required")), nil
	}
	details := models.EventDetails{
		Title:       title,
		Location:    normalizeOptional(req.Location),
		Description: normalizeOptional(req.Description),
	}

	updated, err := s.events.UpdateDetails(ctx, id, details)
	if err != nil {
		return dto.MutationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	if !updated {
		return failedMutation(appErrors.Clone(appErrors.ErrNotFound, "Event not found")), nil
	}
	s.logger.Info("event updated", zap.String("event_id", id))
	return dto.MutationResult{Success: true}, nil
}

func (s *EventService) loadEvent(ctx context.Context, id string) (*models.Event, error) {
	return loadEventOrNotFound(ctx, s.events, id)
}

func loadEventOrNotFound(ctx context.Context, events eventFinder, id string) (*models.Event, error) {
	event, err := events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// normalizeOptional trims s and maps blank input to NULL.
func normalizeOptional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func failedMutation(err *appErrors.Error) dto.MutationResult {
	return dto.MutationResult{Success: false, Error: err.Message, Code: err.Code, RetryAfter: err.RetryAfter}
}

// mutationFailure folds throttling into the result and passes anything else through as an error.
func mutationFailure(err error) (dto.MutationResult, error) {
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrRateLimited.Code {
		return failedMutation(appErr), nil
	}
	return dto.MutationResult{}, err
}
