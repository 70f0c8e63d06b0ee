package middleware

import (
	"time"

	"anoa.com/itemprofile/pkg/logger"
	"anoa.com/itemprofile/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// AccessLog tags every request with a request id, exposes a request-scoped
// logger to handlers and writes one line per request.
func AccessLog(log logrus.FieldLogger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		entry := log.WithField("rid", rid)
		c.Set(logger.ContextKey, entry)

		c.Next()

		if _, ok := skip[c.Request.URL.Path]; ok {
			return
		}

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.RequestURI(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"ip":         c.ClientIP(),
			"resp_bytes": c.Writer.Size(),
			"ua":         c.Request.UserAgent(),
		}
		if username := c.GetString(response.UsernameKey); username != "" {
			fields["user"] = username
		}

		line := entry.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			line.Error("HTTP access")
		case status >= 400:
			line.Warn("HTTP access")
		default:
			line.Info("HTTP access")
		}
	}
}
