package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bravo68web/confdash/internal/application/dto"
	"github.com/bravo68web/confdash/pkg/logger"
)

const (
	panicMessage  = "Something went wrong. Please try again."
	maxStackBytes = 4096
)

// Recover turns a handler panic into a 500. API callers get the JSON error
// envelope, browsers get the page rendered by render.
func Recover(log *logger.Logger, render func(c *gin.Context, status int, message string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			stack := debug.Stack()
			if len(stack) > maxStackBytes {
				stack = stack[:maxStackBytes]
			}
			l := log
			if l == nil {
				l = logger.Get()
			}
			l.Error("Panic recovered",
				logger.String("panic", fmt.Sprint(rec)),
				logger.RequestID(GetRequestID(c)),
				logger.Method(c.Request.Method),
				logger.Path(c.Request.URL.Path),
				logger.String("stacktrace", string(stack)),
			)

			c.Abort()
			switch {
			case c.Writer.Written():
			case IsAPIRequest(c):
				c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:   "internal_server_error",
					Message: panicMessage,
				})
			case render != nil:
				render(c, http.StatusInternalServerError, panicMessage)
			default:
				c.String(http.StatusInternalServerError, panicMessage)
			}
		}()

		c.Next()
	}
}

// IsAPIRequest reports whether the request targets the JSON API
func IsAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
