package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/logger"
)

// Logger creates a gin middleware for request logging
func Logger(log logger.Interface) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			entry := log.WithFields(map[string]interface{}{
				"status":     param.StatusCode,
				"method":     param.Method,
				"path":       param.Path,
				"ip":         param.ClientIP,
				"user_agent": param.Request.UserAgent(),
				"latency":    param.Latency.String(),
				"time":       param.TimeStamp.Format(time.RFC3339),
				"request_id": param.Keys[RequestIDKey],
			})

			if param.ErrorMessage != "" {
				entry = entry.WithField("error", param.ErrorMessage)
			}

			switch {
			case param.StatusCode >= 500:
				entry.Error("HTTP request completed with error")
			case param.StatusCode >= 400:
				entry.Warn("HTTP request rejected")
			default:
				entry.Info("HTTP request completed")
			}

			return ""
		},
		Output:    gin.DefaultWriter,
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	})
}
