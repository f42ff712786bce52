// ABOUTME: Credential issuer for the bootstrap endpoint
// ABOUTME: Authenticates a username/password claim and issues a session credential

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389/warden/internal/store"
	"github.com/samber/oops"
)

// Issuer authenticates login attempts and issues session credentials.
type Issuer struct {
	users    store.UserStore
	sessions *SessionManager
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewIssuer creates an Issuer.
func NewIssuer(users store.UserStore, sessions *SessionManager, hasher PasswordHasher, logger *slog.Logger) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger.With("component", "issuer"),
	}
}

// Login authenticates username and password and issues a fresh credential.
// Unknown users, wrong passwords, and accounts without a password all fail
// with the same AUTH_INVALID_CREDENTIALS error after the same amount of work.
func (i *Issuer) Login(ctx context.Context, username, password string) (*Credential, *store.User, error) {
	user, lookupErr := i.users.GetUserByUsername(ctx, username)

	var targetHash string
	userExists := false

	switch {
	case lookupErr == nil && user.PasswordHash != "":
		targetHash = user.PasswordHash
		userExists = true
	case lookupErr == nil, errors.Is(lookupErr, store.ErrUserNotFound):
		// Still verify so a miss costs the same as a wrong password
		targetHash = dummyHashFor(i.hasher)
	default:
		return nil, nil, oops.Code(CodeLoginFailed).
			With("operation", "get user by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := i.hasher.Verify(password, targetHash)
	if dummy := balancingDummyHash(i.hasher, targetHash); dummy != "" {
		_, _ = i.hasher.Verify(password, dummy)
	}
	if verifyErr != nil && userExists {
		i.logger.Error("stored password hash is unreadable", "user_id", user.ID, "error", verifyErr)
	}

	if !userExists || !valid || verifyErr != nil {
		return nil, nil, oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
	}

	if i.hasher.NeedsUpgrade(user.PasswordHash) {
		i.upgradeHash(ctx, user, password)
	}

	cred, err := i.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	i.logger.Info("user logged in", "user_id", user.ID, "session_id", cred.Session.ID)
	return cred, user, nil
}

// upgradeHash re-hashes the password with the current hasher. Failures are
// logged; login succeeds regardless.
func (i *Issuer) upgradeHash(ctx context.Context, user *store.User, password string) {
	newHash, err := i.hasher.Hash(password)
	if err != nil {
		i.logger.Warn("password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	if err := i.users.UpdateUserPassword(ctx, user.ID, newHash); err != nil {
		i.logger.Warn("password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = newHash
	i.logger.Info("upgraded password hash", "user_id", user.ID)
}

// Logout invalidates the session named by token.
func (i *Issuer) Logout(ctx context.Context, token string) error {
	return i.sessions.Revoke(ctx, token)
}
