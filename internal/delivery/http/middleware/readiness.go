package middleware

import (
	"context"
	"net/http"
	"time"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// Readiness rejects requests with 503 while the database is unreachable.
func Readiness(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := db.Ping(ctx)
		cancel()
		if err != nil {
			logger.Log.Warn("Database unavailable", "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusServiceUnavailable, "Database unavailable", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
