package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"eo-tracker/config"
)

// RequestLogging logs method, path, status and elapsed time for every
// request after the handler chain completes.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		durationMillis := time.Since(start).Milliseconds()

		config.Logger.Infof(
			"api_request method=%s path=%s status=%d duration_ms=%d request_id=%s",
			method,
			path,
			status,
			durationMillis,
			c.GetString("request_id"),
		)
	}
}
