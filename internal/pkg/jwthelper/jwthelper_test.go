package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	key := []byte("test-signing-key")

	token, err := GenerateToken(key, 42, "gate-scanner/1.0")
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "gate-scanner/1.0", claims.UserAgent)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, err := GenerateToken([]byte("right-key"), 42, "ua")
	require.NoError(t, err)

	_, err = ParseToken([]byte("wrong-key"), token)
	assert.Error(t, err)
}
