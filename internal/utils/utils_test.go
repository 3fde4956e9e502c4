package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.False(t, IsValidEmail("userexample.com"))
	assert.False(t, IsValidEmail("user@examplecom"))
}

func TestIsComplexPassword(t *testing.T) {
	assert.True(t, IsComplexPassword("Str0ng!pass"))
	assert.False(t, IsComplexPassword("short1!"))
	assert.False(t, IsComplexPassword("alllowercase1!"))
	assert.False(t, IsComplexPassword("NoDigitsHere!"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "user@example.com", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(42, "user@example.com", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(42, "user@example.com", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}
