package auth

import (
	"net/http"

	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

// ForgotPassword kicks off a password reset. Whatever happens past the
// input checks, the response is the same 200, so the endpoint can't
// confirm whether an email has an account behind it
func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	d.Resets.Request(c.Request.Context(), data.Email)

	c.JSON(http.StatusOK, gin.H{
		"message":   "If an account with that email exists, a password reset link has been sent",
		"requestID": requestID,
	})
}
