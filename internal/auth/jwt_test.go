package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distro-backend/internal/config"
	"distro-backend/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 24
	cfg.JWT.Issuer = "distro-backend"
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testConfig("test-secret"))
	user := &models.User{ID: 17, Name: "Ravi", Role: "agent"}

	token, err := manager.GenerateToken(user)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 17, claims.UserID)
	assert.Equal(t, "Ravi", claims.Name)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, "distro-backend", claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager(testConfig("secret-a")).GenerateToken(&models.User{ID: 1, Role: "agent"})
	require.NoError(t, err)

	_, err = NewJWTManager(testConfig("secret-b")).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager(testConfig("secret")).ValidateToken("not.a.token")
	assert.Error(t, err)
}
