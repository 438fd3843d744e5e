package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/whenfree-api/internal/dto"
	appErrors "github.com/noah-isme/whenfree-api/pkg/errors"
	"github.com/noah-isme/whenfree-api/pkg/response"
)

// AdminCodeHeader carries the admin code on host-only reads and deletes.
const AdminCodeHeader = "X-Admin-Code"

const unknownClient = "unknown"

// clientIP resolves the caller address through gin's trusted proxy handling.
func clientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.ClientIP()); ip != "" {
		return ip
	}
	return unknownClient
}

func adminCode(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(AdminCodeHeader))
}

var mutationStatus = map[string]int{
	appErrors.ErrUnauthorized.Code: appErrors.ErrUnauthorized.Status,
	appErrors.ErrValidation.Code:   appErrors.ErrValidation.Status,
	appErrors.ErrNotFound.Code:     appErrors.ErrNotFound.Status,
	appErrors.ErrRateLimited.Code:  appErrors.ErrRateLimited.Status,
}

// writeMutation renders a MutationResult, mapping failure codes onto HTTP statuses.
func writeMutation(c *gin.Context, result dto.MutationResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
		if mapped, ok := mutationStatus[result.Code]; ok {
			status = mapped
		}
		if result.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(result.RetryAfter))
		}
	}
	response.JSON(c, status, result)
}
