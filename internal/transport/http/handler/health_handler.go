package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// poolStats is implemented by databases that expose connection pool usage
type poolStats interface {
	Stats() map[string]any
}

// HealthHandler answers liveness probes. When db is set its reachability is
// part of the response.
func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				body["status"] = "degraded"
				body["database"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["database"] = "ok"
			if ps, ok := db.(poolStats); ok {
				body["pool"] = ps.Stats()
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
