package auth

import (
	"errors"
	"net/http"

	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/internal/service"
	"mkowalski/todo-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetPasswordBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resetPasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No reset token provided",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	err := d.Resets.Consume(c.Request.Context(), data.Token, data.Password)
	if err != nil {
		// Unlike login, the two failure modes may be told apart here.
		// The token doesn't identify an account, so this leaks nothing
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Reset token is invalid",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrResetTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Reset token has expired. Please request a new one",
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to consume reset token", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password has been reset successfully",
		"requestID": requestID,
	})
}
