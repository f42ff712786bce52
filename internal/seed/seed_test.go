// ABOUTME: Tests for seed file parsing and loading
// ABOUTME: Uses MockStore and a cheap bcrypt hasher

package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/store"
)

const jsonSeed = `[
  {
    "username": "alice",
    "email": "alice@example.com",
    "password": "pw1",
    "name": "Alice Liddell",
    "city": "Oxford",
    "verification": 0.5,
    "community_standing": 0.25,
    "birthdate": {"year": 1990, "month": 6, "day": 15},
    "gender": "female",
    "languages": ["English", "French"],
    "occupation": "explorer",
    "about_me": "curious",
    "about_place": "rabbit hole",
    "countries_visited": ["Wonderland"],
    "countries_lived": ["England"],
    "accepted_tos": 1
  },
  {
    "username": "bob",
    "email": "bob@example.com",
    "password": null,
    "name": "Bob"
  }
]`

const yamlSeed = `
- username: carol
  email: carol@example.com
  password: pw3
  name: Carol
  birthdate: {year: 1985, month: 1, day: 2}
  languages: [Spanish]
`

func newTestLoader() (*Loader, *store.MockStore, auth.PasswordHasher) {
	s := store.NewMockStore()
	h := auth.NewBcryptHasher(bcrypt.MinCost)
	return NewLoader(s, h, nil), s, h
}

func TestParse_JSON(t *testing.T) {
	records, err := Parse("users.json", []byte(jsonSeed))
	require.NoError(t, err)
	require.Len(t, records, 2)

	alice := records[0]
	assert.Equal(t, "alice", alice.Username)
	require.NotNil(t, alice.Password)
	assert.Equal(t, "pw1", *alice.Password)
	assert.Equal(t, &Date{Year: 1990, Month: 6, Day: 15}, alice.Birthdate)
	assert.Equal(t, []string{"English", "French"}, alice.Languages)
	assert.Equal(t, 1, alice.AcceptedTOS)

	assert.Nil(t, records[1].Password)
	assert.Nil(t, records[1].Birthdate)
}

func TestParse_JSONRejectsUnknownFields(t *testing.T) {
	_, err := Parse("users.json", []byte(`[{"username": "x", "email": "x@y", "passwrd": "typo"}]`))
	assert.Error(t, err)
}

func TestParse_YAML(t *testing.T) {
	records, err := Parse("users.yaml", []byte(yamlSeed))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "carol", records[0].Username)
	assert.Equal(t, 1985, records[0].Birthdate.Year)
	assert.Equal(t, []string{"Spanish"}, records[0].Languages)
}

func TestLoad(t *testing.T) {
	l, s, h := newTestLoader()
	ctx := context.Background()

	records, err := Parse("users.json", []byte(jsonSeed))
	require.NoError(t, err)

	res, err := l.Load(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, res.Created)
	assert.Empty(t, res.Skipped)

	alice, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", alice.PasswordHash)
	ok, err := h.Verify("pw1", alice.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC), alice.Birthdate)
	assert.Equal(t, []string{"England"}, alice.CountriesLived)
	assert.Equal(t, 1, alice.AcceptedTOS)

	bob, err := s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bob.PasswordHash, "null password disables login")
	assert.True(t, bob.Birthdate.IsZero())
}

func TestLoad_SkipsDuplicates(t *testing.T) {
	l, _, _ := newTestLoader()
	ctx := context.Background()
	records, err := Parse("users.json", []byte(jsonSeed))
	require.NoError(t, err)

	_, err = l.Load(ctx, records)
	require.NoError(t, err)

	res, err := l.Load(ctx, records)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, []string{"alice", "bob"}, res.Skipped)
}

func TestLoad_Invalid(t *testing.T) {
	l, _, _ := newTestLoader()

	res, err := l.Load(context.Background(), []Record{
		{Username: "ok", Email: "ok@example.com"},
		{Username: "", Email: "nobody@example.com"},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"ok"}, res.Created)
}

func TestLoad_StoreFailure(t *testing.T) {
	l, s, _ := newTestLoader()
	s.SetError(errors.New("db down"))

	_, err := l.Load(context.Background(), []Record{{Username: "a", Email: "a@example.com"}})
	assert.ErrorContains(t, err, "db down")
}

func TestLoadFile(t *testing.T) {
	l, s, _ := newTestLoader()
	path := filepath.Join(t.TempDir(), "users.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlSeed), 0600))

	res, err := l.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, res.Created)

	_, err = s.GetUserByEmail(context.Background(), "carol@example.com")
	assert.NoError(t, err)

	_, err = l.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
