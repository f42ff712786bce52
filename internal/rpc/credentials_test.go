// ABOUTME: Tests for session credential metadata handling
// ABOUTME: Covers bearer parsing, outgoing context, and PerRPCCredentials

package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestTokenFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   metadata.MD
		want string
	}{
		{"absent", metadata.MD{}, ""},
		{"empty value", metadata.Pairs(MetadataKey, ""), ""},
		{"bearer only", metadata.Pairs(MetadataKey, "Bearer "), ""},
		{"wrong scheme", metadata.Pairs(MetadataKey, "Basic abc"), ""},
		{"valid", metadata.Pairs(MetadataKey, "Bearer abc.def"), "abc.def"},
		{"case insensitive scheme", metadata.Pairs(MetadataKey, "bearer abc"), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFromMetadata(tt.md))
		})
	}
}

func TestWithToken(t *testing.T) {
	ctx := WithToken(context.Background(), "tok")
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Bearer tok"}, md.Get(MetadataKey))
}

func TestBearerCredentials(t *testing.T) {
	creds := BearerCredentials{Token: "tok"}
	md, err := creds.GetRequestMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", md[MetadataKey])
	assert.False(t, creds.RequireTransportSecurity())

	md, err = BearerCredentials{}.GetRequestMetadata(context.Background())
	require.NoError(t, err)
	assert.Empty(t, md)
}
