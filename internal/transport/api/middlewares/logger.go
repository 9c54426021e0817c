package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет в лог каждый запрос. Приватные ошибки обработчиков попадают в лог с уровнем Error.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}

		private := c.Errors.ByType(gin.ErrorTypePrivate)
		switch {
		case len(private) > 0:
			entry.WithFields(fields).WithError(private.Last()).Error("request failed")
		case c.Writer.Status() >= 500: //nolint:mnd
			entry.WithFields(fields).Warn("request failed")
		default:
			entry.WithFields(fields).Info("request")
		}
	}
}
