// ABOUTME: Session credential transport in call metadata
// ABOUTME: Provides the metadata key, bearer formatting, and a PerRPCCredentials helper

package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
)

// MetadataKey is the call metadata key carrying the session credential.
const MetadataKey = "authorization"

const bearerPrefix = "Bearer "

// BearerValue formats a token for the authorization metadata value.
func BearerValue(token string) string {
	return bearerPrefix + token
}

// TokenFromMetadata extracts the session token from incoming metadata.
// It returns "" when the key is absent, the value is empty, or the
// scheme is not Bearer.
func TokenFromMetadata(md metadata.MD) string {
	values := md.Get(MetadataKey)
	if len(values) == 0 {
		return ""
	}
	v := values[0]
	if len(v) < len(bearerPrefix) || !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

// WithToken returns a context whose outgoing calls carry token.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, BearerValue(token))
}

// BearerCredentials attaches a session token to every call on a connection.
// Use with grpc.WithPerRPCCredentials.
type BearerCredentials struct {
	Token string
}

// Ensure BearerCredentials implements credentials.PerRPCCredentials.
var _ credentials.PerRPCCredentials = BearerCredentials{}

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (b BearerCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	if b.Token == "" {
		return nil, nil
	}
	return map[string]string{MetadataKey: BearerValue(b.Token)}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials.
// Transport protection is left to the network (e.g. tailscale).
func (b BearerCredentials) RequireTransportSecurity() bool {
	return false
}
