// ABOUTME: gRPC Auth service served on the bootstrap endpoint
// ABOUTME: Maps issuer oops codes onto status errors with ErrorInfo reasons

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389/warden/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Service implements rpc.AuthServer.
type Service struct {
	rpc.UnimplementedAuthServer

	issuer *Issuer
	logger *slog.Logger
}

// Ensure Service implements rpc.AuthServer.
var _ rpc.AuthServer = (*Service)(nil)

// NewService creates the Auth gRPC service.
func NewService(issuer *Issuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		issuer: issuer,
		logger: logger.With("component", "auth-service"),
	}
}

// Login exchanges a username and password for a session credential.
func (s *Service) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	cred, user, err := s.issuer.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	return &rpc.LoginResponse{
		Token:     cred.Token,
		UserID:    user.ID,
		ExpiresAt: cred.Session.ExpiresAt,
	}, nil
}

// Logout invalidates a session credential.
func (s *Service) Logout(ctx context.Context, req *rpc.LogoutRequest) (*emptypb.Empty, error) {
	if err := s.issuer.Logout(ctx, req.Token); err != nil {
		return nil, s.toStatus(ctx, "logout", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) toStatus(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return rpc.ContextError(err)
	}

	switch ErrorCode(err) {
	case CodeInvalidCredentials:
		logAuthFailure(s.logger, ctx, "invalid_credentials")
		return rpc.InvalidCredentials()
	case CodeSessionInvalid, CodeSessionExpired:
		logAuthFailure(s.logger, ctx, "invalid_session", "op", op)
		return rpc.Unauthenticated("invalid or expired session")
	}

	s.logger.Error(op+" failed", "error", err)
	return status.Error(codes.Internal, op+" failed")
}
