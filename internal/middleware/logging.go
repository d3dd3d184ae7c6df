package middleware

import (
	"time"

	"worklog-bot/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger emits one structured line per handled request:
// method, path, status, elapsed time, and client IP.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("request handled", map[string]any{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
	}
}
