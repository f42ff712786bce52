// ABOUTME: Tests for the Jail service handlers
// ABOUTME: Covers terms state, acceptance, and write-free restriction reporting

package jail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
)

func setupService(t *testing.T, acceptedTOS, currentTOS int) (*Service, *store.MockStore, context.Context) {
	t.Helper()
	s := store.NewMockStore()
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.CreateUser(context.Background(), &store.User{
		ID:           "u-alice",
		Username:     "alice",
		Email:        "alice@example.com",
		AcceptedTOS:  acceptedTOS,
		CreatedAt:    now,
		LastActiveAt: now,
	}))

	terms, err := RenderTerms(currentTOS, []byte("# Terms\n\nBe kind."))
	require.NoError(t, err)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{UserID: "u-alice", Username: "alice"})
	return NewService(s, terms, nil), s, ctx
}

func TestGetTOS(t *testing.T) {
	svc, _, ctx := setupService(t, 0, 1)

	resp, err := svc.GetTOS(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.False(t, resp.Accepted)
	assert.Equal(t, 0, resp.AcceptedVersion)
	assert.Equal(t, 1, resp.CurrentVersion)
	assert.Contains(t, resp.TermsHTML, "<h1>Terms</h1>")
	assert.Contains(t, resp.TermsHTML, "<p>Be kind.</p>")
}

func TestGetTOS_OlderVersion(t *testing.T) {
	svc, _, ctx := setupService(t, 1, 2)

	resp, err := svc.GetTOS(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.False(t, resp.Accepted)
	assert.Equal(t, 1, resp.AcceptedVersion)
	assert.Equal(t, 2, resp.CurrentVersion)
}

func TestAcceptTOS(t *testing.T) {
	svc, s, ctx := setupService(t, 0, 3)

	resp, err := svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: true})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Equal(t, 3, resp.AcceptedVersion)
	assert.Empty(t, resp.TermsHTML)

	u, err := s.GetUser(context.Background(), "u-alice")
	require.NoError(t, err)
	assert.Equal(t, 3, u.AcceptedTOS)
	assert.False(t, auth.Restrict(u, 3).IsRestricted())
}

func TestAcceptTOS_Idempotent(t *testing.T) {
	svc, _, ctx := setupService(t, 1, 1)

	for range 2 {
		resp, err := svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: true})
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
	}
}

func TestAcceptTOS_Declined(t *testing.T) {
	svc, s, ctx := setupService(t, 0, 1)

	_, err := svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: false})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, rpc.ReasonInvalidArgument, rpc.ReasonOf(err))

	u, err := s.GetUser(context.Background(), "u-alice")
	require.NoError(t, err)
	assert.Equal(t, 0, u.AcceptedTOS)
}

func TestAcceptTOS_DeclineDoesNotRejail(t *testing.T) {
	svc, s, ctx := setupService(t, 1, 1)

	_, err := svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: false})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	u, err := s.GetUser(context.Background(), "u-alice")
	require.NoError(t, err)
	assert.Equal(t, 1, u.AcceptedTOS)

	info, err := svc.JailInfo(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.False(t, info.Jailed)
}

func TestJailInfo(t *testing.T) {
	tests := []struct {
		name        string
		accepted    int
		current     int
		wantJailed  bool
		wantReasons []string
	}{
		{"never accepted", 0, 1, true, []string{"MISSING_TOS"}},
		{"stale version", 1, 2, true, []string{"MISSING_TOS"}},
		{"current", 2, 2, false, []string{}},
		{"ahead of current", 3, 2, false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s, ctx := setupService(t, tt.accepted, tt.current)

			resp, err := svc.JailInfo(ctx, &emptypb.Empty{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantJailed, resp.Jailed)
			assert.Equal(t, tt.wantReasons, resp.Reasons)
			assert.Zero(t, s.SessionWrites())
		})
	}
}

func TestJailInfo_ReflectsAcceptance(t *testing.T) {
	svc, _, ctx := setupService(t, 0, 1)

	before, err := svc.JailInfo(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	require.True(t, before.Jailed)

	_, err = svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: true})
	require.NoError(t, err)

	after, err := svc.JailInfo(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.False(t, after.Jailed)
}

func TestService_StoreErrors(t *testing.T) {
	svc, s, ctx := setupService(t, 0, 1)
	s.SetError(errors.New("db down"))

	_, err := svc.GetTOS(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.Internal, status.Code(err))
	_, err = svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: true})
	assert.Equal(t, codes.Internal, status.Code(err))
	_, err = svc.JailInfo(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestService_UnknownUser(t *testing.T) {
	svc, _, _ := setupService(t, 0, 1)
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{UserID: "ghost"})

	_, err := svc.JailInfo(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = svc.AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: true})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
