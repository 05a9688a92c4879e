package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("alice@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("secret1"))
	assert.NoError(t, PasswordValidator("123456"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("12345"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

func TestUsernameValidator(t *testing.T) {
	assert.NoError(t, UsernameValidator("bob"))
	assert.ErrorIs(t, UsernameValidator(""), ErrUsernameEmpty)
	assert.ErrorIs(t, UsernameValidator("al"), ErrUsernameTooShort)
	assert.ErrorIs(t, UsernameValidator(strings.Repeat("a", 65)), ErrUsernameTooLong)
}
