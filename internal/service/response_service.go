package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/ratelimit"
)

type responseRepository interface {
	Upsert(ctx context.Context, response *models.Response) error
	DeleteByName(ctx context.Context, eventID, name string) (int64, error)
}

type eventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// ResponseService records participant availability and lets hosts prune it.
type ResponseService struct {
	events    eventFinder
	responses responseRepository
	guard     adminVerifier
	limiter   rateLimiter
	policy    ratelimit.Policy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResponseService constructs a ResponseService.
func NewResponseService(events eventFinder, responses responseRepository, guard adminVerifier, limiter rateLimiter, policy ratelimit.Policy, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ResponseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = ratelimit.NewLimiter(nil)
	}
	if policy.MaxRequests <= 0 || policy.Window <= 0 {
		policy = ratelimit.DefaultPolicies().SubmitResponse
	}
	return &ResponseService{
		events:    events,
		responses: responses,
		guard:     guard,
		limiter:   limiter,
		policy:    policy,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// SubmitResponse stores a participant's availability, replacing any earlier
// submission under the same name.
func (s *ResponseService) SubmitResponse(ctx context.Context, clientIP, eventID string, req dto.SubmitResponseRequest) (*models.Response, error) {
	if err := throttle(ctx, s.limiter, s.metrics, ratelimit.SubmitKey(clientIP), s.policy, "Too many requests. Please try again later."); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}

	event, err := loadEventOrNotFound(ctx, s.events, eventID)
	if err != nil {
		return nil, err
	}

	availability, err := normalizeAvailability(*event, req.Availability)
	if err != nil {
		return nil, err
	}

	response := &models.Response{
		EventID:      event.ID,
		Name:         req.Name,
		PlusOne:      normalizeOptional(req.PlusOne),
		Availability: availability,
	}
	if err := s.responses.Upsert(ctx, response); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save response")
	}

	s.metrics.RecordResponseSubmitted()
	s.logger.Info("response saved", zap.String("event_id", event.ID), zap.Int64("response_id", response.ID))
	return response, nil
}

// DeleteResponse removes the named participant's response after re-checking
// the admin code. Deleting a name that has no response still succeeds.
func (s *ResponseService) DeleteResponse(ctx context.Context, clientIP, eventID, adminCode, name string) (dto.MutationResult, error) {
	ok, err := s.guard.VerifyAdminCode(ctx, clientIP, eventID, adminCode)
	if err != nil {
		return mutationFailure(err)
	}
	if !ok {
		return failedMutation(appErrors.Clone(appErrors.ErrUnauthorized, "Invalid admin code")), nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return failedMutation(appErrors.Clone(appErrors.ErrValidation, "Name is required")), nil
	}

	removed, err := s.responses.DeleteByName(ctx, eventID, name)
	if err != nil {
		return dto.MutationResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete response")
	}
	if removed > 0 {
		s.metrics.RecordResponseDeleted()
		s.logger.Info("response deleted", zap.String("event_id", eventID))
	}
	return dto.MutationResult{Success: true}, nil
}

// normalizeAvailability restricts a submission to the event's dates and
// slots and applies the all-day exclusivity by replaying each selection.
func normalizeAvailability(event models.Event, submitted map[string][]models.TimeSlot) (models.Availability, error) {
	allowed := event.TimeSlots.Set()
	out := make(models.Availability, len(submitted))
	for date, slots := range submitted {
		if !event.HostDates.Contains(date) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not one of the event dates", date))
		}
		for _, slot := range slots {
			if !slot.Valid() || !allowed.Has(slot) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time slot %q is not offered for this event", slot))
			}
		}
		out[date] = models.NewSlotSet(slots...).Slots()
	}
	return out, nil
}
