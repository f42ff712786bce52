// ABOUTME: Loads member accounts from JSON or YAML seed files into the store
// ABOUTME: Passwords are hashed on the way in and duplicate accounts are skipped

package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/store"
)

// Date is a calendar date as written in seed files.
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Record is one account in a seed file. A nil Password creates an account
// that cannot log in.
type Record struct {
	Username          string   `json:"username" yaml:"username"`
	Email             string   `json:"email" yaml:"email"`
	Password          *string  `json:"password" yaml:"password"`
	Name              string   `json:"name" yaml:"name"`
	City              string   `json:"city" yaml:"city"`
	Verification      float64  `json:"verification" yaml:"verification"`
	CommunityStanding float64  `json:"community_standing" yaml:"community_standing"`
	Birthdate         *Date    `json:"birthdate" yaml:"birthdate"`
	Gender            string   `json:"gender" yaml:"gender"`
	Languages         []string `json:"languages" yaml:"languages"`
	Occupation        string   `json:"occupation" yaml:"occupation"`
	AboutMe           string   `json:"about_me" yaml:"about_me"`
	AboutPlace        string   `json:"about_place" yaml:"about_place"`
	CountriesVisited  []string `json:"countries_visited" yaml:"countries_visited"`
	CountriesLived    []string `json:"countries_lived" yaml:"countries_lived"`
	AcceptedTOS       int      `json:"accepted_tos" yaml:"accepted_tos"`
}

// Result reports what a load did.
type Result struct {
	Created []string // usernames inserted
	Skipped []string // usernames already present
}

// Parse decodes seed records. Files ending in .json are decoded strictly as
// JSON; everything else is decoded as YAML.
func Parse(name string, data []byte) ([]Record, error) {
	var records []Record
	if strings.EqualFold(filepath.Ext(name), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&records); err != nil {
			return nil, oops.In("seed").With("file", name).Wrapf(err, "decoding JSON seed file")
		}
		return records, nil
	}

	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, oops.In("seed").With("file", name).Wrapf(err, "decoding YAML seed file")
	}
	return records, nil
}

// Loader inserts seed records into a user store.
type Loader struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a Loader hashing passwords with hasher.
func NewLoader(users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		users:  users,
		hasher: hasher,
		logger: logger.With("component", "seed"),
		now:    time.Now,
	}
}

// LoadFile parses the seed file at path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("seed").With("file", path).Wrapf(err, "reading seed file")
	}
	records, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, records)
}

// Load inserts records in order. Records whose username or email already
// exists are skipped and reported; any other failure stops the load.
func (l *Loader) Load(ctx context.Context, records []Record) (*Result, error) {
	res := &Result{}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		user, err := l.toUser(rec)
		if err != nil {
			return res, oops.In("seed").With("index", i).With("username", rec.Username).Wrap(err)
		}

		err = l.users.CreateUser(ctx, user)
		if errors.Is(err, store.ErrUsernameExists) {
			l.logger.Info("skipping existing user", "username", rec.Username)
			res.Skipped = append(res.Skipped, rec.Username)
			continue
		}
		if err != nil {
			return res, oops.In("seed").With("index", i).With("username", rec.Username).Wrapf(err, "creating user")
		}

		l.logger.Debug("created user", "username", rec.Username, "id", user.ID)
		res.Created = append(res.Created, rec.Username)
	}
	return res, nil
}

func (l *Loader) toUser(rec Record) (*store.User, error) {
	if strings.TrimSpace(rec.Username) == "" {
		return nil, errors.New("username is required")
	}
	if strings.TrimSpace(rec.Email) == "" {
		return nil, errors.New("email is required")
	}

	var hash string
	if rec.Password != nil && *rec.Password != "" {
		var err error
		if hash, err = l.hasher.Hash(*rec.Password); err != nil {
			return nil, err
		}
	}

	now := l.now().UTC().Truncate(time.Second)
	u := &store.User{
		ID:                uuid.NewString(),
		Username:          rec.Username,
		Email:             rec.Email,
		PasswordHash:      hash,
		Name:              rec.Name,
		City:              rec.City,
		Gender:            rec.Gender,
		Occupation:        rec.Occupation,
		AboutMe:           rec.AboutMe,
		AboutPlace:        rec.AboutPlace,
		Languages:         rec.Languages,
		CountriesVisited:  rec.CountriesVisited,
		CountriesLived:    rec.CountriesLived,
		Verification:      rec.Verification,
		CommunityStanding: rec.CommunityStanding,
		AcceptedTOS:       rec.AcceptedTOS,
		CreatedAt:         now,
		LastActiveAt:      now,
	}
	if rec.Birthdate != nil {
		u.Birthdate = rec.Birthdate.Time()
	}
	return u, nil
}
