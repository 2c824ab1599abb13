package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Middleware attaches a request-scoped logger to the gin context and logs
// every completed request. Incoming X-Request-ID headers are honored so IDs
// survive proxies.
func Middleware(l *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("requestID", requestID)

		reqLogger := l.WithRequestID(requestID)
		c.Set("logger", reqLogger)

		start := time.Now()
		c.Next()

		reqLogger.LogRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// FromContext returns the request-scoped logger, falling back to the global.
func FromContext(c *gin.Context) *Logger {
	if v, exists := c.Get("logger"); exists {
		if l, ok := v.(*Logger); ok {
			return l
		}
	}
	return GetGlobal()
}
