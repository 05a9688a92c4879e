// Package security contains everything related to the security of user data
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"
)

var ErrHashFormat = errors.New("invalid hash format")

type ArgonHash struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func New() *ArgonHash {
	return &ArgonHash{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// NewFromConfig returns a hasher with the cost parameters set in the
// security.argon.* config keys. Zero values fall back to the defaults
func NewFromConfig() *ArgonHash {
	a := New()

	if m := viper.GetUint32("security.argon.memory"); m > 0 {
		a.Memory = m
	}

	if i := viper.GetUint32("security.argon.iterations"); i > 0 {
		a.Iterations = i
	}

	if p := viper.GetUint32("security.argon.parallelism"); p > 0 {
		a.Parallelism = uint8(p)
	}

	return a
}

// GenerateFromPassword hashes p with a fresh random salt and returns
// the PHC-style encoded string. Verification needs only the stored value
func (a *ArgonHash) GenerateFromPassword(p string) (encoded string, err error) {
	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(p), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded = fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Iterations, a.Parallelism, b64Salt, b64Hash)

	return encoded, nil
}

// VerifyPasswd compares a password p with the stored PHC-style encoded hash e
func (a *ArgonHash) VerifyPasswd(p, e string) (ok bool, err error) {
	parts := strings.Split(e, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrHashFormat
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrHashFormat
	}

	if version != argon2.Version {
		return false, ErrHashFormat
	}

	var memory, iterations uint32
	var parallelism uint8

	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false, ErrHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrHashFormat
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrHashFormat
	}

	// Recompute with the parameters embedded in the stored value so
	// old hashes keep verifying after a cost change
	calcHash := argon2.IDKey([]byte(p), salt, iterations, memory, parallelism, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, calcHash) == 1, nil
}
