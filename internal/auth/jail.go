// ABOUTME: Jail gate interceptor restricting jailed callers to an allow-list
// ABOUTME: Runs after authentication; the allow-list is the only source of jail exceptions

package auth

import (
	"context"
	"log/slog"

	"github.com/2389/warden/internal/rpc"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"google.golang.org/grpc"
)

// DefaultAllowPatterns lets jailed callers reach every Jail method, which
// includes the method that lifts the restriction.
var DefaultAllowPatterns = []string{"/" + rpc.JailServiceName + "/*"}

// AllowList is the set of full method names a restricted caller may invoke.
// Patterns are globs with '/' as the separator, so "/warden.Jail/*" matches
// every Jail method and nothing outside it.
type AllowList struct {
	patterns []string
	globs    []glob.Glob
}

// NewAllowList compiles patterns. It fails unless AcceptTOS is covered, since
// a jailed caller would otherwise have no way out.
func NewAllowList(patterns ...string) (*AllowList, error) {
	a := &AllowList{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, oops.Code(CodeInvalidAllowList).With("pattern", p).Wrapf(err, "compiling allow-list pattern")
		}
		a.patterns = append(a.patterns, p)
		a.globs = append(a.globs, g)
	}

	if !a.Allows(rpc.Jail_AcceptTOS_FullMethodName) {
		return nil, oops.Code(CodeInvalidAllowList).
			With("patterns", patterns).
			Errorf("allow-list must include %s", rpc.Jail_AcceptTOS_FullMethodName)
	}
	return a, nil
}

// DefaultAllowList returns the allow-list built from DefaultAllowPatterns.
func DefaultAllowList() *AllowList {
	a, err := NewAllowList(DefaultAllowPatterns...)
	if err != nil {
		panic(err)
	}
	return a
}

// Allows reports whether method may be called while restricted.
func (a *AllowList) Allows(method string) bool {
	for _, g := range a.globs {
		if g.Match(method) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (a *AllowList) Patterns() []string {
	return append([]string(nil), a.patterns...)
}

// decide is the gate's pure decision for a resolved identity.
func decide(id *Identity, method string, allow *AllowList) error {
	if id == nil {
		return rpc.Unauthenticated("authentication required")
	}
	if !id.IsRestricted() || allow.Allows(method) {
		return nil
	}
	return rpc.PermissionDenied(method, id.Restriction.Strings())
}

// JailGate returns a gRPC unary interceptor that rejects restricted callers
// invoking methods outside allow. It must run after UnaryInterceptor.
func JailGate(allow *AllowList, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, rpc.ContextError(err)
		}

		id := FromContext(ctx)
		if err := decide(id, info.FullMethod, allow); err != nil {
			logJailed(logger, ctx, id, info.FullMethod)
			return nil, err
		}

		return handler(ctx, req)
	}
}

// JailGateStream returns a gRPC stream interceptor that rejects restricted
// callers invoking streaming methods outside allow.
func JailGateStream(allow *AllowList, logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		if err := ctx.Err(); err != nil {
			return rpc.ContextError(err)
		}

		id := FromContext(ctx)
		if err := decide(id, info.FullMethod, allow); err != nil {
			logJailed(logger, ctx, id, info.FullMethod)
			return err
		}

		return handler(srv, ss)
	}
}

func logJailed(logger *slog.Logger, ctx context.Context, id *Identity, method string) {
	if id == nil {
		logAuthFailure(logger, ctx, "missing_identity", "method", method)
		return
	}
	if logger != nil {
		logger.Info("jailed call rejected", "user_id", id.UserID, "method", method, "reasons", id.Restriction.Strings())
	}
}
