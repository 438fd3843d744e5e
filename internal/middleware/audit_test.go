package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLogsSuccessfulHostActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.DELETE("/events/:id/responses/*name", Audit(zap.New(core), "response.delete"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.PATCH("/events/:id", Audit(zap.New(core), "event.update"), func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})

	req := httptest.NewRequest(http.MethodDelete, "/events/evt123abcd/responses/Alice", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPatch, "/events/evt123abcd", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "host action", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "response.delete", fields["action"])
	assert.Equal(t, "evt123abcd", fields["event_id"])
	assert.Equal(t, "Alice", fields["respondent"])
}

func TestAuditToleratesNilLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", Audit(nil, "ping"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
