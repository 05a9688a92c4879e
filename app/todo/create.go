// Package todo contains the todo CRUD endpoints. Every handler here
// runs behind the JWT middleware and only ever touches rows belonging
// to the authenticated user
package todo

import (
	"net/http"
	"time"

	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/internal/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type createBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
}

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data createBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Title is required",
			"requestID": requestID,
		})
		return
	}

	todoID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate todo ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	dueDate := time.Now()
	if data.DueDate != nil {
		dueDate = *data.DueDate
	}

	todo := model.Todo{
		ID:          todoID,
		UserID:      userID,
		Title:       data.Title,
		Description: data.Description,
		Completed:   data.Completed,
		DueDate:     dueDate,
	}

	if err := d.DB.Create(&todo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create todo", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, todo)
}
