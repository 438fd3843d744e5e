package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/whenfree-api/internal/middleware"
)

// Handlers groups everything mounted under the API prefix.
type Handlers struct {
	Events    *EventHandler
	Responses *ResponseHandler
	Results   *ResultsHandler
	// Audit receives one entry per successful host action. Nil disables it.
	Audit *zap.Logger
}

// RegisterRoutes mounts the event API on the given group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	audit := func(action string) gin.HandlerFunc {
		return middleware.Audit(h.Audit, action)
	}

	events := api.Group("/events")
	events.POST("", h.Events.Create)
	events.GET("/:id", h.Events.Get)
	events.PATCH("/:id", audit("event.update"), h.Events.Update)
	events.GET("/:id/share", h.Events.Share)
	events.POST("/:id/verify", h.Events.Verify)

	events.POST("/:id/responses", h.Responses.Submit)
	// Catch-all so names containing "/" still reach the handler.
	events.DELETE("/:id/responses/*name", audit("response.delete"), h.Responses.Delete)

	events.GET("/:id/results", h.Results.Results)
	events.GET("/:id/summary", h.Results.Summary)
	events.GET("/:id/export", audit("results.export"), h.Results.Export)
	api.POST(exportLinkRoute, audit("results.export_link"), h.Results.ExportLink)
	api.GET(downloadRoute, h.Results.Download)
}

// RegisterOps mounts liveness, readiness and metrics at the root.
func RegisterOps(r *gin.Engine, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
