package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// 32 random bytes, well past the 128 bits a reset token needs
const resetTokenSize = 32

// GenerateResetToken returns a new plaintext reset token. Only its
// HashResetToken digest may ever be persisted
func GenerateResetToken() (string, error) {
	b := make([]byte, resetTokenSize)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// HashResetToken returns the hex SHA-256 of a plaintext reset token.
// Lookups run against this value, so a database leak never yields a
// usable token
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
