package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/config"
	"github.com/bazaarhq/bazaar/pkg/auth"
)

func testIssuer(accessTTL, refreshTTL time.Duration) *auth.TokenIssuer {
	return auth.NewTokenIssuer(&config.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := testIssuer(time.Hour, 7*24*time.Hour)

	token, err := issuer.AccessToken("user-1")
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSecretsAreIndependent(t *testing.T) {
	issuer := testIssuer(time.Hour, time.Hour)

	access, err := issuer.AccessToken("user-1")
	require.NoError(t, err)
	refresh, err := issuer.RefreshToken("user-1")
	require.NoError(t, err)

	// A token signed with one secret must not verify against the other.
	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := testIssuer(-time.Minute, -time.Minute)

	token, err := issuer.AccessToken("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := testIssuer(time.Hour, time.Hour)

	token, err := issuer.AccessToken("user-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(token + "x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword(hash, "secret123"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}
