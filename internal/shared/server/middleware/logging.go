package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can correlate them.
const (
	ProjectIDKey    = "projectId"
	SessionIDKey    = "sessionId"
	AssessmentIDKey = "assessmentId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		userID, _ := c.Get(userIDKey)
		isGuest, _ := c.Get(isGuestKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":    reqID,
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         c.FullPath(),
			"status":        status,
			"duration_ms":   float64(latency.Microseconds()) / 1000.0,
			"user_id":       userID,
			"project_id":    c.GetString(ProjectIDKey),
			"session_id":    c.GetString(SessionIDKey),
			"assessment_id": c.GetString(AssessmentIDKey),
			"is_guest":      isGuest,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
		})
	}
}
