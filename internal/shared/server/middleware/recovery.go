package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"governance-backend/internal/shared/server/respond"
	"governance-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope carrying an error token.
// The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			token := respond.ErrorToken()
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"errorToken": token,
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", map[string]string{"errorToken": token})
		}()
		c.Next()
	}
}
