package todo

import (
	"net/http"

	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	res := d.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Delete(&model.Todo{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete todo", zap.Error(res.Error), zap.String("requestID", requestID))
		return
	}

	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Todo not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Todo deleted successfully",
		"requestID": requestID,
	})
}
