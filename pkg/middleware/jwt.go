package middleware

import (
	"net/http"
	"strings"

	"mkowalski/todo-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware guards protected routes. It pulls the bearer token
// from the Authorization header, verifies it and stores the resolved
// userID on the context. Every failure mode gets the exact same 401,
// a missing token included. The real reason only goes to the log
func NewJWTMiddleware(t *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})
			return
		}

		userID, err := t.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
