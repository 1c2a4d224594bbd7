package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(secret string) *JWTService {
	return &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        secret,
	}
}

func TestVerifyJWTTokenRoundtrip(t *testing.T) {
	svc := newTestJWTService("test-secret")

	token, err := svc.ToJWT("alice")
	require.NoError(t, err)

	userID, err := svc.VerifyJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestVerifyJWTTokenRejectsExpired(t *testing.T) {
	svc := newTestJWTService("test-secret")
	svc.AccessTokenDuration = -time.Minute

	token, err := svc.ToJWT("alice")
	require.NoError(t, err)

	_, err = svc.VerifyJWTToken(token)
	assert.Error(t, err)
}

func TestVerifyJWTTokenRejectsWrongSecret(t *testing.T) {
	minted := newTestJWTService("secret-a")
	token, err := minted.ToJWT("alice")
	require.NoError(t, err)

	verifier := newTestJWTService("secret-b")
	_, err = verifier.VerifyJWTToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := newTestJWTService("test-secret")

	token, err := svc.ExtractTokenFromHeader("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = svc.ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = svc.ExtractTokenFromHeader("Basic abc123")
	assert.Error(t, err)
}
