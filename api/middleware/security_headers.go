package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders sets conservative response headers on every route,
// including the static viewer.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		c.Next()
	}
}
