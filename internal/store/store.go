// ABOUTME: Store interfaces and data types for warden persistence
// ABOUTME: Defines User and Session records and the sentinel errors callers match on

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUserNotFound is returned when a user doesn't exist.
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)

// ErrUsernameExists is returned when trying to create a user with an existing username or email.
var ErrUsernameExists = errors.New("username already exists")

// User is a member account. Only AcceptedTOS feeds restriction decisions; the
// profile fields are served back by the API service.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id or bcrypt, empty disables password login
	Name         string
	City         string
	Gender       string
	Birthdate    time.Time // zero if unknown
	Occupation   string
	AboutMe      string
	AboutPlace   string

	Languages        []string
	CountriesVisited []string
	CountriesLived   []string

	Verification      float64
	CommunityStanding float64

	// AcceptedTOS is the version of the terms of service the user last
	// accepted, 0 if never.
	AcceptedTOS int

	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Age returns the user's age in whole years at the given time, or 0 if the
// birthdate is unknown.
func (u *User) Age(now time.Time) int {
	if u.Birthdate.IsZero() {
		return 0
	}
	years := now.Year() - u.Birthdate.Year()
	if now.YearDay() < u.Birthdate.YearDay() {
		years--
	}
	return years
}

// Session binds an issued session credential to exactly one user.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpiredAt reports whether the session is no longer valid at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	// SetAcceptedTOS records the terms version a user accepted.
	SetAcceptedTOS(ctx context.Context, id string, version int) error
}

// SessionStore defines the interface for session persistence.
// Reads are snapshot reads; each write is a single atomic statement.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error

	// GetSession returns a non-expired session. Expired and unknown sessions
	// both yield ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)

	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions removes expired sessions and returns how many
	// were removed.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Store is the full persistence surface used by the gateway.
type Store interface {
	UserStore
	SessionStore

	// Ping checks the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
