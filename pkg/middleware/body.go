package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter rejects requests with bodies over maxBytes. Clients
// that lie about Content-Length run into the MaxBytesReader instead
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body size exceeds limit",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
