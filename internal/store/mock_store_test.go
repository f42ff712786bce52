// ABOUTME: Unit tests for MockStore to ensure behavior matches SQLiteStore
// ABOUTME: Focuses on duplicate detection, copy isolation, and error injection

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_CreateUser_Duplicate(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("user-1", "alice")))

	err := store.CreateUser(ctx, testUser("user-2", "alice"))
	assert.ErrorIs(t, err, ErrUsernameExists)

	dupEmail := testUser("user-3", "bob")
	dupEmail.Email = "alice@example.com"
	assert.ErrorIs(t, store.CreateUser(ctx, dupEmail), ErrUsernameExists)
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	user := testUser("user-1", "alice")
	user.Languages = []string{"en"}
	require.NoError(t, store.CreateUser(ctx, user))

	// Mutating the caller's value must not leak into the store
	user.Languages[0] = "fr"
	user.AcceptedTOS = 9

	got, err := store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, got.Languages)
	assert.Equal(t, 0, got.AcceptedTOS)

	got.Languages[0] = "de"
	again, err := store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, again.Languages)
}

func TestMockStore_Lookups(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("user-1", "alice")))

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	got, err = store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	_, err = store.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMockStore_Sessions(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("user-1", "alice")))

	err := store.CreateSession(ctx, testSession("s0", "ghost", time.Hour))
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, store.CreateSession(ctx, testSession("s1", "user-1", time.Hour)))
	require.NoError(t, store.CreateSession(ctx, testSession("s2", "user-1", -time.Hour)))
	assert.Equal(t, 2, store.SessionWrites())

	_, err = store.GetSession(ctx, "s1")
	require.NoError(t, err)

	_, err = store.GetSession(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Reads never count as writes
	assert.Equal(t, 2, store.SessionWrites())

	count, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.DeleteSession(ctx, "s1"))
	assert.ErrorIs(t, store.DeleteSession(ctx, "s1"), ErrSessionNotFound)
}

func TestMockStore_SetAcceptedTOS(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("user-1", "alice")))
	require.NoError(t, store.SetAcceptedTOS(ctx, "user-1", 2))

	got, err := store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.AcceptedTOS)

	assert.ErrorIs(t, store.SetAcceptedTOS(ctx, "missing", 1), ErrUserNotFound)
}

func TestMockStore_SetError(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	boom := errors.New("boom")

	store.SetError(boom)
	assert.ErrorIs(t, store.Ping(ctx), boom)
	_, err := store.GetUser(ctx, "user-1")
	assert.ErrorIs(t, err, boom)
	_, err = store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, boom)

	store.SetError(nil)
	assert.NoError(t, store.Ping(ctx))
}
