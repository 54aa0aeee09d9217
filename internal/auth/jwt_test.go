package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func testTokenService() *TokenService {
	return NewTokenService(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testTokenService()

	token, expiresAt, err := svc.IssueAccessToken("user-1", "jane@example.com", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := testTokenService()

	token, _, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := testTokenService()

	_, err := svc.VerifyAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyRefreshToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := testTokenService()
	other := NewTokenService("another-secret-key-also-32-chars-x", 15*time.Minute, time.Hour)

	token, _, err := svc.IssueAccessToken("user-1", "jane@example.com", "customer")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService(testSecret, -time.Minute, -time.Minute)

	token, _, err := svc.IssueAccessToken("user-1", "jane@example.com", "customer")
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshTokenIsNotAnAccessTokenCarrier(t *testing.T) {
	svc := testTokenService()

	token, _, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	// a refresh token parses as an access token but carries no identity claims
	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}
