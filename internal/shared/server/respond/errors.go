package respond

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response. Client errors log at warn level.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}
	for _, key := range []string{"projectId", "sessionId", "assessmentId"} {
		if v := c.GetString(key); v != "" {
			fields[key] = v
		}
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorToken returns a short opaque token that correlates a client-facing error with the log line.
func ErrorToken() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}

// Internal logs err with a fresh error token and sends a 500 that carries only the token.
func Internal(c *gin.Context, message string, err error) {
	token := ErrorToken()
	fields := map[string]any{
		"errorToken": token,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestId"),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	telemetry.Error("http.internal", fields)
	Error(c, http.StatusInternalServerError, "internal_error", message, map[string]string{"errorToken": token})
}
