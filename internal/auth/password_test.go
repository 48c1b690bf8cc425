package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Passw0rd1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Passw0rd1", hash)

	assert.True(t, CheckPassword("Passw0rd1", hash))
	assert.False(t, CheckPassword("WrongPass1", hash))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("Passw0rd1")
	require.NoError(t, err)
	h2, err := HashPassword("Passw0rd1")
	require.NoError(t, err)

	// Each hash carries its own salt; both still verify.
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("Passw0rd1", h1))
	assert.True(t, CheckPassword("Passw0rd1", h2))
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	assert.False(t, CheckPassword("Passw0rd1", "not-a-bcrypt-hash"))
	assert.False(t, CheckPassword("Passw0rd1", ""))
}
