package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Server is running",
		"status":  "OK",
	})
}

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate only ever runs after the JWT middleware, so reaching it
// means the token checked out
func Validate(c *gin.Context) {
	c.Status(http.StatusOK)
}
