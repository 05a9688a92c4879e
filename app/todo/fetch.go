package todo

import (
	"errors"
	"net/http"

	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FetchBulk returns all todos of the authenticated user, newest first
func FetchBulk(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	todos := []model.Todo{}

	err := d.DB.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&todos).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch todos", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, todos)
}

func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var todo model.Todo

	err := d.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&todo).
		Error
	if err != nil {
		// Someone else's todo answers exactly like a missing one
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Todo not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch todo", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, todo)
}
