package security

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureTokenIsURLSafe(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)

	other, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateSecureKeyIsHex(t *testing.T) {
	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	_, err = hex.DecodeString(key)
	assert.NoError(t, err)
}
