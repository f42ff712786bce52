// ABOUTME: Session lifecycle on top of the session store
// ABOUTME: Issue persists a session and signs its credential; Resolve is a read-only lookup

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/2389/warden/internal/store"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Credential is a freshly issued session credential.
type Credential struct {
	Token   string
	Session *store.Session
}

// SessionManager issues, resolves, and revokes session credentials.
type SessionManager struct {
	sessions store.SessionStore
	signer   *TokenSigner
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionManager creates a SessionManager issuing credentials valid for ttl.
func NewSessionManager(sessions store.SessionStore, signer *TokenSigner, ttl time.Duration, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: sessions,
		signer:   signer,
		ttl:      ttl,
		logger:   logger.With("component", "sessions"),
		now:      time.Now,
	}
}

// Issue creates a session for user and returns its signed credential.
func (m *SessionManager) Issue(ctx context.Context, user *store.User) (*Credential, error) {
	now := m.now().UTC().Truncate(time.Second)
	session := &store.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	token, err := m.signer.Sign(session.ID, user.ID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := m.sessions.CreateSession(ctx, session); err != nil {
		return nil, oops.Code(CodeSessionCreateFailed).
			With("operation", "persist session").
			With("user_id", user.ID).
			Wrap(err)
	}

	return &Credential{Token: token, Session: session}, nil
}

// Resolve maps a credential to its live session. It never writes, so
// resolving the same credential repeatedly yields the same session.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*store.Session, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := m.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, oops.Code(CodeSessionInvalid).Errorf("invalid session token")
		}
		return nil, oops.Code(CodeSessionResolveFailed).
			With("operation", "get session").
			Wrap(err)
	}

	// A valid signature over a session owned by someone else is still invalid
	if session.UserID != claims.Subject {
		return nil, oops.Code(CodeSessionInvalid).
			With("session_id", session.ID).
			Errorf("session does not belong to token subject")
	}

	return session, nil
}

// Revoke deletes the session named by token. Expired credentials are still
// accepted so their leftover session row is removed.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.signer.ParseIgnoringExpiry(token)
	if err != nil {
		return err
	}

	if err := m.sessions.DeleteSession(ctx, claims.SessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return oops.Code(CodeSessionInvalid).
				With("session_id", claims.SessionID).
				Wrap(err)
		}
		return oops.Code(CodeLogoutFailed).
			With("operation", "delete session").
			With("session_id", claims.SessionID).
			Wrap(err)
	}

	m.logger.Debug("session revoked", "session_id", claims.SessionID, "user_id", claims.Subject)
	return nil
}

// Sweep deletes expired sessions and returns how many were removed.
func (m *SessionManager) Sweep(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpiredSessions(ctx)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil && ctx.Err() == nil {
				m.logger.Warn("session sweep failed", "error", err)
			}
		}
	}
}
