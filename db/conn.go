// Package db contains things related to the database connection
package db

import (
	"fmt"
	"mkowalski/todo-api/internal/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens the database and migrates the schema. Postgres is used
// when database.url is set, otherwise a local SQLite file
func New() (*gorm.DB, error) {
	var dial gorm.Dialector

	if url := viper.GetString("database.url"); url != "" {
		dial = postgres.Open(url)
	} else {
		dial = sqlite.Open("database.db")
	}

	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Todo{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
