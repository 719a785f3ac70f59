package middleware

import (
	"net/http"
	"time"

	"parley/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware logs one line per request through the context-aware
// logger, so the request id lands on every line.
func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		if log == nil {
			return
		}
		if status >= http.StatusInternalServerError {
			log.ErrorfCtx(c.Request.Context(), "%s %s %d %s", method, path, status, latency.String())
			return
		}
		log.InfofCtx(c.Request.Context(), "%s %s %d %s", method, path, status, latency.String())
	}
}
