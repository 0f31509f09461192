package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pass1234")
	require.NoError(t, err)
	// в базе лежит только bcrypt-хеш
	require.NotEqual(t, "pass1234", hash)

	assert.True(t, CheckPassword("pass1234", hash))
	assert.False(t, CheckPassword("wrong-pass", hash))
	assert.False(t, CheckPassword("pass1234", "not-a-hash"))
}

func TestNewResetToken(t *testing.T) {
	t.Parallel()

	plain, hash, err := NewResetToken()
	require.NoError(t, err)

	// 32 случайных байта в hex
	assert.Len(t, plain, 64)
	assert.NotEqual(t, plain, hash)
	// клиенту уходит plain, в базе — его sha256
	assert.Equal(t, hash, HashResetToken(plain))

	plain2, hash2, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, plain2)
	assert.NotEqual(t, hash, hash2)
}
