// ABOUTME: User store methods for the SQLite backend
// ABOUTME: Covers account creation, lookup by id/username/email, and terms acceptance

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Ensure SQLiteStore implements UserStore.
var _ UserStore = (*SQLiteStore)(nil)

const userColumns = `id, username, email, password_hash, name, city, gender, birthdate,
	occupation, about_me, about_place, languages_json, visited_json, lived_json,
	verification, community_standing, accepted_tos, created_at, last_active_at`

const birthdateLayout = "2006-01-02"

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	languages, err := encodeList(user.Languages)
	if err != nil {
		return err
	}
	visited, err := encodeList(user.CountriesVisited)
	if err != nil {
		return err
	}
	lived, err := encodeList(user.CountriesLived)
	if err != nil {
		return err
	}

	var birthdate sql.NullString
	if !user.Birthdate.IsZero() {
		birthdate = sql.NullString{String: user.Birthdate.Format(birthdateLayout), Valid: true}
	}

	lastActive := user.LastActiveAt
	if lastActive.IsZero() {
		lastActive = user.CreatedAt
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.City,
		user.Gender,
		birthdate,
		user.Occupation,
		user.AboutMe,
		user.AboutPlace,
		languages,
		visited,
		lived,
		user.Verification,
		user.CommunityStanding,
		user.AcceptedTOS,
		formatTime(user.CreatedAt),
		formatTime(lastActive),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Info("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUserWhere(ctx, "username = ?", username)
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, username ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// UpdateUserPassword updates a user's password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.updateUser(ctx, "updating user password", `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

// SetAcceptedTOS records the terms version a user accepted.
func (s *SQLiteStore) SetAcceptedTOS(ctx context.Context, id string, version int) error {
	if err := s.updateUser(ctx, "updating accepted_tos", `UPDATE users SET accepted_tos = ? WHERE id = ?`, version, id); err != nil {
		return err
	}
	s.logger.Info("user accepted terms", "id", id, "version", version)
	return nil
}

func (s *SQLiteStore) updateUser(ctx context.Context, op, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	var passwordHash, birthdate sql.NullString
	var languages, visited, lived string
	var createdAtStr, lastActiveStr string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&passwordHash,
		&user.Name,
		&user.City,
		&user.Gender,
		&birthdate,
		&user.Occupation,
		&user.AboutMe,
		&user.AboutPlace,
		&languages,
		&visited,
		&lived,
		&user.Verification,
		&user.CommunityStanding,
		&user.AcceptedTOS,
		&createdAtStr,
		&lastActiveStr,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash.String

	if birthdate.Valid && birthdate.String != "" {
		if user.Birthdate, err = time.Parse(birthdateLayout, birthdate.String); err != nil {
			return nil, fmt.Errorf("parsing birthdate: %w", err)
		}
	}
	if user.Languages, err = decodeList("languages_json", languages); err != nil {
		return nil, err
	}
	if user.CountriesVisited, err = decodeList("visited_json", visited); err != nil {
		return nil, err
	}
	if user.CountriesLived, err = decodeList("lived_json", lived); err != nil {
		return nil, err
	}
	if user.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if user.LastActiveAt, err = parseTime("last_active_at", lastActiveStr); err != nil {
		return nil, err
	}

	return &user, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func decodeList(column, raw string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", column, err)
	}
	return values, nil
}
