// ABOUTME: gRPC interceptors for authenticating main-endpoint calls
// ABOUTME: Resolves the session credential from metadata and attaches the caller Identity

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// SessionResolver maps a credential to a live session without side effects.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*store.Session, error)
}

// UserGetter reads the current user record for restriction decisions.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// logAuthFailure logs an authentication failure with structured context.
// The credential itself is never logged.
func logAuthFailure(logger *slog.Logger, ctx context.Context, reason string, attrs ...any) {
	if logger == nil {
		return
	}
	baseAttrs := []any{"reason", reason}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		baseAttrs = append(baseAttrs, "peer_addr", p.Addr.String())
	}
	baseAttrs = append(baseAttrs, attrs...)
	logger.Warn("auth failure", baseAttrs...)
}

// UnaryInterceptor returns a gRPC unary interceptor that authenticates requests.
// The handler only runs when the credential resolves; the restriction state
// is derived from the user record read during the same call.
// The optional logger enables auth failure logging for security monitoring.
func UnaryInterceptor(sessions SessionResolver, users UserGetter, tosVersion int, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		id, err := extractIdentity(ctx, sessions, users, tosVersion, logger)
		if err != nil {
			return nil, err
		}

		return handler(WithIdentity(ctx, id), req)
	}
}

// StreamInterceptor returns a gRPC stream interceptor that authenticates requests.
// The optional logger enables auth failure logging for security monitoring.
func StreamInterceptor(sessions SessionResolver, users UserGetter, tosVersion int, logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		id, err := extractIdentity(ss.Context(), sessions, users, tosVersion, logger)
		if err != nil {
			return err
		}

		wrapped := &wrappedServerStream{
			ServerStream: ss,
			ctx:          WithIdentity(ss.Context(), id),
		}
		return handler(srv, wrapped)
	}
}

// wrappedServerStream wraps a grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

// extractIdentity resolves the caller of a call:
// metadata → bearer token → live session → current user → Identity.
func extractIdentity(ctx context.Context, sessions SessionResolver, users UserGetter, tosVersion int, logger *slog.Logger) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, rpc.ContextError(err)
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		logAuthFailure(logger, ctx, "missing_metadata")
		return nil, rpc.Unauthenticated("missing metadata")
	}

	token := rpc.TokenFromMetadata(md)
	if token == "" {
		logAuthFailure(logger, ctx, "missing_credential")
		return nil, rpc.Unauthenticated("missing session credential")
	}

	session, err := sessions.Resolve(ctx, token)
	if err != nil {
		if isContextErr(err) {
			return nil, rpc.ContextError(err)
		}
		if IsInvalidSession(err) {
			logAuthFailure(logger, ctx, "invalid_session", "code", ErrorCode(err))
			return nil, rpc.Unauthenticated("invalid or expired session")
		}
		logAuthFailure(logger, ctx, "session_lookup_failed", "error", err.Error())
		return nil, status.Error(codes.Internal, "failed to resolve session")
	}

	user, err := users.GetUser(ctx, session.UserID)
	if err != nil {
		if isContextErr(err) {
			return nil, rpc.ContextError(err)
		}
		if errors.Is(err, store.ErrUserNotFound) {
			logAuthFailure(logger, ctx, "user_not_found", "user_id", session.UserID)
			return nil, rpc.Unauthenticated("invalid or expired session")
		}
		logAuthFailure(logger, ctx, "user_lookup_failed", "user_id", session.UserID, "error", err.Error())
		return nil, status.Error(codes.Internal, "failed to load user")
	}

	return &Identity{
		UserID:      user.ID,
		Username:    user.Username,
		SessionID:   session.ID,
		Restriction: Restrict(user, tosVersion),
	}, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
