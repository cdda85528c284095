package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSessionKey(t *testing.T) {
	key := DeriveSessionKey("super-secret")

	assert.Len(t, key, 32)

	// Derivation must be deterministic so cookies survive restarts.
	assert.Equal(t, key, DeriveSessionKey("super-secret"))

	// Different secrets yield different keys.
	assert.NotEqual(t, key, DeriveSessionKey("other-secret"))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)

	// 32 bytes base64url without padding is 43 characters.
	assert.Len(t, token, 43)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
