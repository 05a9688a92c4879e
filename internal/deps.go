package internal

import (
	"mkowalski/todo-api/internal/service"
	"mkowalski/todo-api/pkg/security"

	"gorm.io/gorm"
)

// Deps holds everything handlers need. Built once at startup and
// passed explicitly, nothing in here hides behind a package global
type Deps struct {
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Tokens *security.TokenIssuer
	Resets *service.ResetManager
	Mailer service.ResetMailer
}
