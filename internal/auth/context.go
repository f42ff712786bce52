// ABOUTME: Caller identity carried through the call context
// ABOUTME: Provides WithIdentity/FromContext for propagating the resolved caller to handlers

package auth

import (
	"context"
)

// Identity is the authenticated caller of a main-endpoint call. It is only
// ever produced by the auth interceptor after a credential resolves.
type Identity struct {
	UserID    string
	Username  string
	SessionID string

	// Restriction is derived from the user's attributes during this call.
	Restriction Restriction
}

// IsRestricted reports whether the caller is jailed.
func (i *Identity) IsRestricted() bool {
	return i.Restriction.IsRestricted()
}

// identityContextKey is the key type for storing Identity in context.Context.
type identityContextKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// MustFromContext retrieves the Identity from the context, panicking if not present.
// Handlers behind the auth interceptor can rely on it being set.
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}
