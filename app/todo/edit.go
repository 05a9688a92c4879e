package todo

import (
	"errors"
	"net/http"
	"time"

	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type editBody struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
}

// Edit updates the provided fields of a todo, absent fields stay as
// they were
func Edit(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data editBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.Title != nil && *data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Title is required",
			"requestID": requestID,
		})
		return
	}

	var todo model.Todo

	err := d.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&todo).
		Error
	if err != nil {
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

	if data.Title != nil {
		todo.Title = *data.Title
	}
	if data.Description != nil {
		todo.Description = *data.Description
	}
	if data.Completed != nil {
		todo.Completed = *data.Completed
	}
	if data.DueDate != nil {
		todo.DueDate = *data.DueDate
	}

	if err := d.DB.Save(&todo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update todo", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, todo)
}
