package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reqidmiddleware "github.com/noah-isme/whenfree-api/pkg/middleware/requestid"
)

// Audit logs host actions that completed successfully. Rejected attempts are
// left to the access guard, which already logs and counts them.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("event_id", c.Param("id")),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.Duration("latency", time.Since(start)),
		}
		if name := strings.TrimPrefix(c.Param("name"), "/"); name != "" {
			fields = append(fields, zap.String("respondent", name))
		}
		if id := reqidmiddleware.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		logger.Info("host action", fields...)
	}
}
