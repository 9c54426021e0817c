package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping GET PingRoute. 200 если база данных отвечает.
func Ping(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			_ = c.AbortWithError(http.StatusServiceUnavailable, err).SetType(gin.ErrorTypePrivate)
			return
		}
		c.String(http.StatusOK, "pong")
	}
}
