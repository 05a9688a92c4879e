package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFromPassword(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("secret1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))
	assert.NotContains(t, encoded, "secret1")

	// A second hash of the same password must differ, every call salts fresh
	encoded2, err := a.GenerateFromPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, encoded2)
}

func TestVerifyPasswd(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("secret1")
	require.NoError(t, err)

	ok, err := a.VerifyPasswd("secret1", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("secret2", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswdAfterCostChange(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("secret1")
	require.NoError(t, err)

	// The stored value embeds its own parameters, so a hasher with a
	// different cost still verifies old hashes
	b := &ArgonHash{
		Memory:      16 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	ok, err := b.VerifyPasswd("secret1", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswdBadFormat(t *testing.T) {
	a := New()

	for _, e := range []string{
		"",
		"not a hash",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
	} {
		ok, err := a.VerifyPasswd("secret1", e)
		assert.ErrorIs(t, err, ErrHashFormat, "input: %q", e)
		assert.False(t, ok)
	}
}
