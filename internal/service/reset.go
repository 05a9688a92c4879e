package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mkowalski/todo-api/internal/model"
	"mkowalski/todo-api/pkg/security"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrResetTokenInvalid = errors.New("reset token invalid")
	ErrResetTokenExpired = errors.New("reset token expired")
)

// ResetManager drives the password reset state machine. A user either
// has no pending reset, or exactly one outstanding token: requesting
// again overwrites the previous one, consuming or expiring clears it.
type ResetManager struct {
	db       *gorm.DB
	argon    *security.ArgonHash
	mailer   ResetMailer
	lifetime time.Duration
	resetURL string

	now func() time.Time
}

func NewResetManager(db *gorm.DB, argon *security.ArgonHash, mailer ResetMailer) *ResetManager {
	return &ResetManager{
		db:       db,
		argon:    argon,
		mailer:   mailer,
		lifetime: time.Duration(viper.GetInt("security.reset_lifetime_minutes")) * time.Minute,
		resetURL: viper.GetString("host.frontend_url") + "/reset-password/",
		now:      time.Now,
	}
}

// Request starts a reset for the account registered under email. It
// deliberately has no way to fail: an unknown address, a database
// hiccup and a refused mail all end the same way for the caller, so
// the endpoint can't be used to probe which accounts exist. Failures
// only show up in the log
func (r *ResetManager) Request(ctx context.Context, email string) {
	// Generate before the lookup so the unknown-email path burns the
	// same work as the real one
	token, err := security.GenerateResetToken()
	if err != nil {
		zap.L().Error("Failed to generate reset token", zap.Error(err))
		return
	}

	hash := security.HashResetToken(token)
	expiresAt := r.now().Add(r.lifetime)

	res := r.db.WithContext(ctx).
		Model(model.User{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"reset_token_hash":       hash,
			"reset_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		zap.L().Error("Failed to store reset token", zap.Error(res.Error))
		return
	}

	if res.RowsAffected == 0 {
		zap.L().Debug("Reset requested for unknown email")
		return
	}

	if err := r.mailer.SendResetMail(email, r.resetURL+token); err != nil {
		zap.L().Error("Failed to send reset mail", zap.Error(err))
	}
}

// Consume redeems a reset token and replaces the account password.
// The password swap and the token clear happen in one conditional
// write, so a token can never be redeemed twice, not even by requests
// racing each other
func (r *ResetManager) Consume(ctx context.Context, token, newPassword string) error {
	hash := security.HashResetToken(token)

	var user model.User

	err := r.db.WithContext(ctx).
		Where("reset_token_hash = ?", hash).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}

		return fmt.Errorf("failed to look up reset token, %w", err)
	}

	if user.ResetTokenExpiresAt == nil || r.now().After(*user.ResetTokenExpiresAt) {
		// Lazy timeout: stale tokens are only detected and cleared here
		err := r.db.WithContext(ctx).
			Model(model.User{}).
			Where("id = ? AND reset_token_hash = ?", user.ID, hash).
			Updates(map[string]any{
				"reset_token_hash":       nil,
				"reset_token_expires_at": nil,
			}).
			Error
		if err != nil {
			zap.L().Error("Failed to clear expired reset token", zap.Error(err))
		}

		return ErrResetTokenExpired
	}

	newHash, err := r.argon.GenerateFromPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password, %w", err)
	}

	res := r.db.WithContext(ctx).
		Model(model.User{}).
		Where("id = ? AND reset_token_hash = ?", user.ID, hash).
		Updates(map[string]any{
			"password_hash":          newHash,
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update password, %w", res.Error)
	}

	// A racing request overwrote the token between our read and this
	// write. The token the caller holds no longer matches anything
	if res.RowsAffected == 0 {
		return ErrResetTokenInvalid
	}

	return nil
}
