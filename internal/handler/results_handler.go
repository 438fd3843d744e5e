package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/whenfree-api/internal/dto"
	"github.com/noah-isme/whenfree-api/internal/models"
	"github.com/noah-isme/whenfree-api/internal/service"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/response"
)

type resultsService interface {
	Results(ctx context.Context, clientIP, eventID, code string) (*dto.EventResults, error)
	Summary(ctx context.Context, clientIP, eventID, code string) (string, error)
	Export(ctx context.Context, clientIP, eventID, code string, format models.ExportFormat) (*service.ExportFile, error)
	ExportLink(ctx context.Context, clientIP, eventID, code string, format models.ExportFormat) (*dto.ExportLink, error)
	Download(ctx context.Context, token string) (*service.ExportFile, error)
}

const (
	exportLinkRoute = "/events/:id/export-link"
	downloadRoute   = "/downloads/:token"
)

// ResultsHandler serves host-only views. Callers send the admin code in X-Admin-Code.
type ResultsHandler struct {
	results resultsService
}

// NewResultsHandler constructs a new ResultsHandler.
func NewResultsHandler(results resultsService) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// Results godoc
// @Summary Aggregated availability grid
// @Tags Results
// @Produce json
// @Param id path string true "Event ID"
// @Param X-Admin-Code header string true "Admin code"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /events/{id}/results [get]
func (h *ResultsHandler) Results(c *gin.Context) {
	results, err := h.results.Results(c.Request.Context(), clientIP(c), c.Param("id"), adminCode(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// Summary godoc
// @Summary Plain-text summary for group chats
// @Tags Results
// @Produce plain
// @Param id path string true "Event ID"
// @Param X-Admin-Code header string true "Admin code"
// @Success 200 {string} string
// @Failure 401 {object} response.Envelope
// @Router /events/{id}/summary [get]
func (h *ResultsHandler) Summary(c *gin.Context) {
	summary, err := h.results.Summary(c.Request.Context(), clientIP(c), c.Param("id"), adminCode(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, summary)
}

// Export godoc
// @Summary Download the grid
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Event ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param X-Admin-Code header string true "Admin code"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /events/{id}/export [get]
func (h *ResultsHandler) Export(c *gin.Context) {
	format := parseFormat(c.DefaultQuery("format", ""))
	file, err := h.results.Export(c.Request.Context(), clientIP(c), c.Param("id"), adminCode(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// ExportLink godoc
// @Summary Issue a signed download link for the grid
// @Description The link works without the admin code until it expires.
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param X-Admin-Code header string true "Admin code"
// @Param payload body dto.ExportLinkRequest false "Format"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events/{id}/export-link [post]
func (h *ResultsHandler) ExportLink(c *gin.Context) {
	var req dto.ExportLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export link payload"))
			return
		}
	}
	link, err := h.results.ExportLink(c.Request.Context(), clientIP(c), c.Param("id"), adminCode(c), parseFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	link.URL = strings.TrimSuffix(c.FullPath(), exportLinkRoute) + "/downloads/" + link.Token
	response.JSON(c, http.StatusOK, link)
}

// Download godoc
// @Summary Download the grid through a signed link
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /downloads/{token} [get]
func (h *ResultsHandler) Download(c *gin.Context) {
	file, err := h.results.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func parseFormat(raw string) models.ExportFormat {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.ExportFormatCSV
	}
	return models.ExportFormat(raw)
}