package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestLogger tags every request with an id and logs it once finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		entry := log.WithField("request_id", requestID)
		c.Set(loggerKey, entry)

		c.Next()

		entry = entry.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if user, ok := CurrentUser(c); ok {
			entry = entry.WithField("user_id", user.ID)
		}
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request handled")
		}
	}
}

// GetLogger returns the request scoped logger, or the standard logger
// outside of RequestLogger.
func GetLogger(c *gin.Context) *log.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*log.Entry); ok {
			return entry
		}
	}
	return log.NewEntry(log.StandardLogger())
}
