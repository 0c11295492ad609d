package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds request-logging settings.
type LoggingConfig struct {
	// SkipPaths are high-frequency paths left out of the log.
	SkipPaths []string

	// SlowThreshold promotes requests above this duration to Warn level.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the standard logging settings.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 10 * time.Second,
	}
}

// RequestLogging returns middleware that logs one line per completed request
// with method, path, status, duration, and request ID.  Level follows the
// outcome: 5xx at Error, 4xx at Warn, slow requests at Warn, the rest at Info.
func RequestLogging(log logging.Logger, cfg LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("request_id", GetRequestID(c)),
			logging.String("remote_addr", c.ClientIP()),
		}

		switch {
		case status >= 500:
			log.Error("request completed with server error", fields...)
		case status >= 400:
			log.Warn("request completed with client error", fields...)
		case cfg.SlowThreshold > 0 && duration >= cfg.SlowThreshold:
			log.Warn("request completed slowly", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
