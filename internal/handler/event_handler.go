package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/whenfree-api/internal/dto"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/response"
)

type eventService interface {
	CreateEvent(ctx context.Context, clientIP string, req dto.CreateEventRequest) (*dto.CreateEventResult, error)
	GetEvent(ctx context.Context, id string) (*dto.PublicEvent, error)
	ShareLink(ctx context.Context, id string) (*dto.ShareLink, error)
	UpdateEvent(ctx context.Context, clientIP, id string, req dto.UpdateEventRequest) (dto.MutationResult, error)
}

type adminCodeVerifier interface {
	VerifyAdminCode(ctx context.Context, clientIP, eventID, code string) (bool, error)
}

// EventHandler wires event operations to HTTP routes.
type EventHandler struct {
	events eventService
	guard  adminCodeVerifier
}

// NewEventHandler constructs a new EventHandler.
func NewEventHandler(events eventService, guard adminCodeVerifier) *EventHandler {
	return &EventHandler{events: events, guard: guard}
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	result, err := h.events.CreateEvent(c.Request.Context(), clientIP(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get public event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Share godoc
// @Summary Share link and invitation message
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/share [get]
func (h *EventHandler) Share(c *gin.Context) {
	link, err := h.events.ShareLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link)
}

// Verify godoc
// @Summary Check an admin code
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.VerifyAdminCodeRequest true "Code"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /events/{id}/verify [post]
func (h *EventHandler) Verify(c *gin.Context) {
	var req dto.VerifyAdminCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}
	ok, err := h.guard.VerifyAdminCode(c.Request.Context(), clientIP(c), c.Param("id"), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.VerifyAdminCodeResult{Valid: ok})
}

// Update godoc
// @Summary Edit event details
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Details and admin code"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	result, err := h.events.UpdateEvent(c.Request.Context(), clientIP(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeMutation(c, result)
}
