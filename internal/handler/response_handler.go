package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/response"
)

type responseService interface {
	SubmitResponse(ctx context.Context, clientIP, eventID string, req dto.SubmitResponseRequest) (*models.Response, error)
	DeleteResponse(ctx context.Context, clientIP, eventID, adminCode, name string) (dto.MutationResult, error)
}

// ResponseHandler wires participant submissions to HTTP routes.
type ResponseHandler struct {
	responses responseService
}

// NewResponseHandler constructs a new ResponseHandler.
func NewResponseHandler(responses responseService) *ResponseHandler {
	return &ResponseHandler{responses: responses}
}

// Submit godoc
// @Summary Submit or overwrite availability
// @Description Resubmitting under the same name replaces the earlier answer.
// @Tags Responses
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.SubmitResponseRequest true "Availability"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /events/{id}/responses [post]
func (h *ResponseHandler) Submit(c *gin.Context) {
	var req dto.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid response payload"))
		return
	}
	saved, err := h.responses.SubmitResponse(c.Request.Context(), clientIP(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved)
}

// Delete godoc
// @Summary Remove a participant's response
// @Tags Responses
// @Produce json
// @Param id path string true "Event ID"
// @Param name path string true "Participant name"
// @Param X-Admin-Code header string true "Admin code"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events/{id}/responses/{name} [delete]
func (h *ResponseHandler) Delete(c *gin.Context) {
	result, err := h.responses.DeleteResponse(c.Request.Context(), clientIP(c), c.Param("id"), adminCode(c), responseName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeMutation(c, result)
}

// responseName reads the catch-all name segment, which gin reports with its leading slash.
func responseName(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("name"), "/")
}
