package model

import "time"

// User is the persisted credential record. The two reset fields are
// always written together: both set while a reset is outstanding,
// both nil otherwise.
type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Only the SHA-256 of the reset token is stored. The plaintext
	// leaves the process once, inside the reset mail.
	ResetTokenHash      *string `gorm:"uniqueIndex"`
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Todos []Todo `gorm:"foreignKey:UserID"`
}
