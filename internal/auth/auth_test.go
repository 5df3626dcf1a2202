package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewService("test-secret")
	service.RegisterAPICredentials("client-key", "client-secret")

	token, err := service.GenerateToken(Credentials{
		APIKey:    "client-key",
		APISecret: "client-secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), token.Expiration, time.Minute)

	claims, err := service.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "client-key", claims.ClientID)
	assert.Contains(t, claims.Permissions, "control")
}

func TestGenerateTokenInvalidCredentials(t *testing.T) {
	service := NewService("test-secret")
	service.RegisterAPICredentials("client-key", "client-secret")

	_, err := service.GenerateToken(Credentials{APIKey: "client-key", APISecret: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.GenerateToken(Credentials{APIKey: "unknown", APISecret: "client-secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewService("secret-a")
	issuer.RegisterAPICredentials("client-key", "client-secret")
	token, err := issuer.GenerateToken(Credentials{APIKey: "client-key", APISecret: "client-secret"})
	require.NoError(t, err)

	verifier := NewService("secret-b")
	_, err = verifier.ValidateToken(token.Token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	service := NewService("test-secret")
	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}
