package model

import "time"

type Todo struct {
	ID          string `gorm:"primaryKey" json:"id"`
	UserID      string `gorm:"index;not null" json:"-"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Completed   bool   `gorm:"default:false" json:"completed"`

	DueDate   time.Time `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
