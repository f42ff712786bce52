// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	users    map[string]*User    // keyed by user ID
	sessions map[string]*Session // keyed by session ID
	err      error               // returned by every call when set

	sessionWrites int
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[string]*User),
		sessions: make(map[string]*Session),
	}
}

// SetError makes every subsequent call fail with err. Pass nil to clear.
func (m *MockStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SessionWrites returns how many session mutations have been applied.
func (m *MockStore) SessionWrites() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionWrites
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	// SQLite enforces UNIQUE on username and email
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrUsernameExists
		}
	}
	if _, ok := m.users[user.ID]; ok {
		return ErrUsernameExists
	}

	m.users[user.ID] = copyUser(user)
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	return m.findUser(func(u *User) bool { return u.ID == id })
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return m.findUser(func(u *User) bool { return u.Username == username })
}

// GetUserByEmail retrieves a user by email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return m.findUser(func(u *User) bool { return u.Email == email })
}

func (m *MockStore) findUser(match func(*User) bool) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	for _, u := range m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// ListUsers returns all users ordered by creation time.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	users := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return strings.Compare(users[i].Username, users[j].Username) < 0
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// UpdateUserPassword updates a user's password hash.
func (m *MockStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return m.updateUser(id, func(u *User) { u.PasswordHash = passwordHash })
}

// SetAcceptedTOS records the terms version a user accepted.
func (m *MockStore) SetAcceptedTOS(ctx context.Context, id string, version int) error {
	return m.updateUser(id, func(u *User) { u.AcceptedTOS = version })
}

func (m *MockStore) updateUser(id string, apply func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	apply(u)
	return nil
}

// CreateSession stores a new session.
func (m *MockStore) CreateSession(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[session.UserID]; !ok {
		// Mirrors the foreign key on sessions.user_id
		return ErrUserNotFound
	}

	s := *session
	m.sessions[s.ID] = &s
	m.sessionWrites++
	return nil
}

// GetSession retrieves a non-expired session.
func (m *MockStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	s, ok := m.sessions[id]
	if !ok || s.IsExpiredAt(time.Now()) {
		return nil, ErrSessionNotFound
	}

	result := *s
	return &result, nil
}

// DeleteSession removes a session.
func (m *MockStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.sessionWrites++
	return nil
}

// DeleteUserSessions removes every session for a user.
func (m *MockStore) DeleteUserSessions(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			m.sessionWrites++
		}
	}
	return nil
}

// DeleteExpiredSessions removes expired sessions.
func (m *MockStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	now := time.Now()
	var count int64
	for id, s := range m.sessions {
		if s.IsExpiredAt(now) {
			delete(m.sessions, id)
			count++
		}
	}
	if count > 0 {
		m.sessionWrites++
	}
	return count, nil
}

// Ping always succeeds unless an error is injected.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}

// copyUser returns a deep copy so callers can't mutate stored state.
func copyUser(u *User) *User {
	c := *u
	c.Languages = append([]string(nil), u.Languages...)
	c.CountriesVisited = append([]string(nil), u.CountriesVisited...)
	c.CountriesLived = append([]string(nil), u.CountriesLived...)
	return &c
}
