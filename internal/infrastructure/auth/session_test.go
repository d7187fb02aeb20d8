package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *SessionTokenService {
	return NewSessionTokenService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-bytes!!",
		Expiration: expiration,
		Issuer:     "woocommerce-crowdstream",
	})
}

func TestSessionTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)

	token, expiresAt, err := svc.Generate("42", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.False(t, claims.Admin)
	assert.Equal(t, "woocommerce-crowdstream", claims.Issuer)
}

func TestSessionTokenService_AdminFlag(t *testing.T) {
	svc := newTestService(time.Hour)

	token, _, err := svc.Generate("7", true)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestSessionTokenService_ExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, _, err := svc.Generate("42", false)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSessionTokenService_InvalidToken(t *testing.T) {
	svc := newTestService(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage string", token: "not-a-token"},
		{name: "empty string", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestSessionTokenService_WrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewSessionTokenService(config.JWTConfig{
		Secret:     "another-secret-key-also-32-bytes!!!",
		Expiration: time.Hour,
		Issuer:     "woocommerce-crowdstream",
	})

	token, _, err := svc.Generate("42", false)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionClaims_RemainingTTL(t *testing.T) {
	svc := newTestService(time.Hour)

	token, _, err := svc.Generate("42", false)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	ttl := claims.GetRemainingTTL()
	assert.Greater(t, ttl, 55*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.GetExpiresAtTime(), 5*time.Second)
}
