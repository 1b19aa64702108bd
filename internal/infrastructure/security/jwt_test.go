package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestDashboardTokenRoundTrip(t *testing.T) {
	token, err := GenerateDashboardToken("admin", RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, RoleAdmin, RoleFromClaims(claims))
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateDashboardToken("admin", RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	token, err := GenerateDashboardToken("admin", RoleAdmin, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "hunter2"))
}

func TestGenerateULIDIsSortable(t *testing.T) {
	first := GenerateULID()
	time.Sleep(2 * time.Millisecond)
	second := GenerateULID()

	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}
