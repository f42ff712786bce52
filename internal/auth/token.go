// ABOUTME: Signed session credentials as HS256 JWTs
// ABOUTME: The token names a session; the session record decides whether it is still valid

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// SessionClaims are the claims carried by a session credential.
// Subject is the user ID; ID-less tokens are rejected.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenSigner signs and parses session credentials.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner creates a signer. The secret must be at least MinSecretLength bytes.
func NewTokenSigner(secret []byte) (*TokenSigner, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code(CodeInvalidSecret).
			With("length", len(secret)).
			Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	return &TokenSigner{secret: secret}, nil
}

// Sign creates a credential for the given session and user.
func (s *TokenSigner) Sign(sessionID, userID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code(CodeSessionCreateFailed).With("operation", "sign token").Wrap(err)
	}
	return signed, nil
}

// Parse validates the signature and expiry of a credential and returns its claims.
func (s *TokenSigner) Parse(tokenString string) (*SessionClaims, error) {
	return s.parse(tokenString, jwt.WithExpirationRequired())
}

// ParseIgnoringExpiry validates only the signature. Logout uses it so an
// expired credential can still name the session to remove.
func (s *TokenSigner) ParseIgnoringExpiry(tokenString string) (*SessionClaims, error) {
	return s.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (s *TokenSigner) parse(tokenString string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, oops.Code(CodeSessionInvalid).Errorf("session token cannot be empty")
	}

	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code(CodeSessionExpired).Errorf("session has expired")
		}
		return nil, oops.Code(CodeSessionInvalid).Wrapf(err, "invalid session token")
	}

	if claims.SessionID == "" || claims.Subject == "" {
		return nil, oops.Code(CodeSessionInvalid).Errorf("session token missing sid or sub")
	}

	return claims, nil
}
