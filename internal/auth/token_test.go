// ABOUTME: Tests for session credential signing and parsing
// ABOUTME: Covers expiry, tampering, algorithm pinning, and required claims

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenSigner_ShortSecret(t *testing.T) {
	_, err := NewTokenSigner([]byte("too-short"))
	require.Error(t, err)
	assert.Equal(t, CodeInvalidSecret, ErrorCode(err))
}

func TestTokenSigner_SignAndParse(t *testing.T) {
	signer := newTestSigner(t)
	now := time.Now()

	token, err := signer.Sign("sess-1", "user-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenSigner_Expired(t *testing.T) {
	signer := newTestSigner(t)
	past := time.Now().Add(-2 * time.Hour)

	token, err := signer.Sign("sess-1", "user-1", past, past.Add(time.Hour))
	require.NoError(t, err)

	_, err = signer.Parse(token)
	assert.Equal(t, CodeSessionExpired, ErrorCode(err))
	assert.True(t, IsInvalidSession(err))

	// Logout still needs to know which session an expired token named
	claims, err := signer.ParseIgnoringExpiry(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	signer := newTestSigner(t)
	other, err := NewTokenSigner([]byte("another-secret-that-is-32-bytes!!"))
	require.NoError(t, err)

	token, err := other.Sign("sess-1", "user-1", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = signer.Parse(token)
	assert.Equal(t, CodeSessionInvalid, ErrorCode(err))

	_, err = signer.ParseIgnoringExpiry(token)
	assert.Equal(t, CodeSessionInvalid, ErrorCode(err), "signature is always checked")
}

func TestTokenSigner_RejectsOtherAlgorithms(t *testing.T) {
	signer := newTestSigner(t)
	claims := SessionClaims{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = signer.Parse(token)
	assert.Equal(t, CodeSessionInvalid, ErrorCode(err))
}

func TestTokenSigner_MissingClaims(t *testing.T) {
	signer := newTestSigner(t)

	token, err := signer.Sign("", "user-1", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = signer.Parse(token)
	assert.Equal(t, CodeSessionInvalid, ErrorCode(err))

	token, err = signer.Sign("sess-1", "", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = signer.Parse(token)
	assert.Equal(t, CodeSessionInvalid, ErrorCode(err))
}

func TestTokenSigner_Garbage(t *testing.T) {
	signer := newTestSigner(t)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := signer.Parse(tok)
		assert.Equal(t, CodeSessionInvalid, ErrorCode(err), "token %q", tok)
	}
}
