// ABOUTME: Shared fixtures for auth package tests
// ABOUTME: Builds signers, session managers, users, and authorized contexts

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// testSecret is a 33-byte secret that meets MinSecretLength.
var testSecret = []byte("warden-test-secret-32-bytes-long!")

// fastHasher keeps bcrypt cheap in tests.
func fastHasher() PasswordHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func newTestSigner(t *testing.T) *TokenSigner {
	t.Helper()
	signer, err := NewTokenSigner(testSecret)
	require.NoError(t, err)
	return signer
}

func newTestManager(t *testing.T, s store.SessionStore) *SessionManager {
	t.Helper()
	return NewSessionManager(s, newTestSigner(t), time.Hour, nil)
}

func seedUser(t *testing.T, s store.UserStore, username, password string, hasher PasswordHasher, acceptedTOS int) *store.User {
	t.Helper()
	var hash string
	if password != "" {
		var err error
		hash, err = hasher.Hash(password)
		require.NoError(t, err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	u := &store.User{
		ID:           "id-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Name:         "Test " + username,
		AcceptedTOS:  acceptedTOS,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// contextWithAuth creates an incoming context with an authorization header.
func contextWithAuth(token string) context.Context {
	md := metadata.New(map[string]string{
		rpc.MetadataKey: rpc.BearerValue(token),
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

// recordingHandler records whether it ran and the identity it saw.
type recordingHandler struct {
	called   bool
	identity *Identity
}

func (h *recordingHandler) handle(ctx context.Context, req any) (any, error) {
	h.called = true
	h.identity = FromContext(ctx)
	return "ok", nil
}

// chainUnary composes interceptors in order, outermost first.
func chainUnary(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		next := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			ic, inner := interceptors[i], next
			next = func(ctx context.Context, req any) (any, error) {
				return ic(ctx, req, info, inner)
			}
		}
		return next(ctx, req)
	}
}
