package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.NoError(t, VerifyPassword(hash, "correct-horse-battery"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong-password"), ErrPasswordMismatch)
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashPasswordSalted(t *testing.T) {
	hash1, err := HashPassword("same-password-123")
	require.NoError(t, err)
	hash2, err := HashPassword("same-password-123")
	require.NoError(t, err)

	// bcrypt salts every hash
	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	err := VerifyPassword("not-a-bcrypt-hash", "whatever-password")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
