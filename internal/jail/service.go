// ABOUTME: Jail service handlers for reading and accepting the terms of service
// ABOUTME: All methods are allow-listed, so restricted callers reach them

package jail

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
)

// UserStore defines the user operations the jail service needs
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	SetAcceptedTOS(ctx context.Context, id string, version int) error
}

// Service implements rpc.JailServer
type Service struct {
	rpc.UnimplementedJailServer

	users  UserStore
	terms  *Terms
	logger *slog.Logger
}

// NewService creates a jail service enforcing terms.
func NewService(users UserStore, terms *Terms, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		terms:  terms,
		logger: logger.With("component", "jail"),
	}
}

// GetTOS reports which terms version the caller accepted and returns the
// current document.
func (s *Service) GetTOS(ctx context.Context, _ *emptypb.Empty) (*rpc.GetTOSResponse, error) {
	id := auth.MustFromContext(ctx)

	user, err := s.users.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, s.storeError(ctx, "get tos", err)
	}
	return s.tosResponse(user.AcceptedTOS, true), nil
}

// AcceptTOS records that the caller accepted the current terms version. The
// restriction lifts on the caller's next call, when it is recomputed from the
// updated record.
func (s *Service) AcceptTOS(ctx context.Context, req *rpc.AcceptTOSRequest) (*rpc.GetTOSResponse, error) {
	id := auth.MustFromContext(ctx)

	// Withdrawing acceptance is not supported; accept=false never re-jails.
	if !req.Accept {
		return nil, rpc.InvalidArgument("terms must be accepted")
	}

	if err := s.users.SetAcceptedTOS(ctx, id.UserID, s.terms.Version); err != nil {
		return nil, s.storeError(ctx, "accept tos", err)
	}

	s.logger.Info("terms accepted", "user_id", id.UserID, "version", s.terms.Version)
	return s.tosResponse(s.terms.Version, false), nil
}

// JailInfo reports whether the caller is restricted and why. It reads the
// current user record and performs no writes.
func (s *Service) JailInfo(ctx context.Context, _ *emptypb.Empty) (*rpc.JailInfoResponse, error) {
	id := auth.MustFromContext(ctx)

	user, err := s.users.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, s.storeError(ctx, "jail info", err)
	}

	r := auth.Restrict(user, s.terms.Version)
	return &rpc.JailInfoResponse{
		Jailed:  r.IsRestricted(),
		Reasons: r.Strings(),
	}, nil
}

func (s *Service) tosResponse(accepted int, withTerms bool) *rpc.GetTOSResponse {
	resp := &rpc.GetTOSResponse{
		Accepted:        accepted >= s.terms.Version,
		AcceptedVersion: accepted,
		CurrentVersion:  s.terms.Version,
	}
	if withTerms {
		resp.TermsHTML = s.terms.HTML
	}
	return resp
}

func (s *Service) storeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return rpc.ContextError(ctxErr)
	}
	if errors.Is(err, store.ErrUserNotFound) {
		return rpc.NotFound("user not found")
	}
	s.logger.Error(op+" failed", "error", err)
	return status.Errorf(codes.Internal, "%s failed", op)
}
