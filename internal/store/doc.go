// Package store provides persistent storage for warden using SQLite.
//
// # Architecture
//
// The store package splits persistence into two interfaces:
//
//   - UserStore: member accounts, lookup by id/username/email, terms acceptance
//   - SessionStore: issued sessions and their expiry
//
// Store embeds both plus Ping and Close. SQLiteStore implements Store in a
// single struct; MockStore is the in-memory equivalent for unit tests.
//
// # Data Models
//
//   - User: account plus profile fields; AcceptedTOS drives restriction
//   - Session: binds a session ID to exactly one user until ExpiresAt
//
// # SQLite Configuration
//
// Two drivers are supported:
//
//   - "sqlite" (modernc.org/sqlite): pure Go, the default
//   - "sqlite3" (github.com/mattn/go-sqlite3): cgo
//
// foreign_keys and busy_timeout are set per connection through the DSN and the
// database runs in WAL mode. Timestamps are stored as RFC3339 UTC text so
// expiry comparisons can be done in SQL.
//
// # Error Handling
//
//   - ErrNotFound: wrapped by ErrUserNotFound and ErrSessionNotFound
//   - ErrUsernameExists: username or email already taken
//
// Expired sessions are indistinguishable from unknown ones to callers.
//
// # Testing
//
// Use NewMockStore() for unit tests:
//
//	s := store.NewMockStore()
//	s.SetError(errors.New("boom")) // every call now fails
//
// Use NewSQLiteStore(filepath.Join(t.TempDir(), "test.db")) for integration tests.
package store
