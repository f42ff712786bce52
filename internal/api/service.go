// ABOUTME: API service handlers for authenticated callers
// ABOUTME: Ping echoes the caller; GetUser serves a public profile by id, username, or email

package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
)

// UserReader defines the lookups the API service needs
type UserReader interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// Service implements rpc.APIServer
type Service struct {
	rpc.UnimplementedAPIServer

	users  UserReader
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an API service backed by users.
func NewService(users UserReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		logger: logger.With("component", "api"),
		now:    time.Now,
	}
}

// Ping returns the caller's identity fields.
func (s *Service) Ping(ctx context.Context, _ *emptypb.Empty) (*rpc.PingResponse, error) {
	id := auth.MustFromContext(ctx)

	user, err := s.users.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, s.lookupError(ctx, "ping", err)
	}

	return &rpc.PingResponse{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// GetUser returns the public profile of the user named by req.User, which
// may be a user ID, an email address, or a username.
func (s *Service) GetUser(ctx context.Context, req *rpc.GetUserRequest) (*rpc.User, error) {
	key := strings.TrimSpace(req.User)
	if key == "" {
		return nil, rpc.InvalidArgument("user required")
	}

	user, err := s.findUser(ctx, key)
	if err != nil {
		return nil, s.lookupError(ctx, "get user", err)
	}

	return toProfile(user, s.now()), nil
}

func (s *Service) findUser(ctx context.Context, key string) (*store.User, error) {
	switch {
	case isUUID(key):
		return s.users.GetUser(ctx, key)
	case strings.Contains(key, "@"):
		return s.users.GetUserByEmail(ctx, key)
	default:
		return s.users.GetUserByUsername(ctx, key)
	}
}

func (s *Service) lookupError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return rpc.ContextError(ctxErr)
	}
	if errors.Is(err, store.ErrUserNotFound) {
		return rpc.NotFound("user not found")
	}
	s.logger.Error(op+" failed", "error", err)
	return status.Errorf(codes.Internal, "%s failed", op)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// toProfile converts a stored user into its public profile. Activity
// timestamps are coarsened to the hour.
func toProfile(u *store.User, now time.Time) *rpc.User {
	return &rpc.User{
		Username:          u.Username,
		Name:              u.Name,
		City:              u.City,
		Verification:      u.Verification,
		CommunityStanding: u.CommunityStanding,
		Gender:            u.Gender,
		Age:               u.Age(now),
		Joined:            u.CreatedAt.UTC().Truncate(time.Hour),
		LastActive:        u.LastActiveAt.UTC().Truncate(time.Hour),
		Occupation:        u.Occupation,
		AboutMe:           u.AboutMe,
		AboutPlace:        u.AboutPlace,
		Languages:         nonNil(u.Languages),
		CountriesVisited:  nonNil(u.CountriesVisited),
		CountriesLived:    nonNil(u.CountriesLived),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
