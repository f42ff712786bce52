// ABOUTME: End-to-end tests of both endpoints over in-process gRPC connections
// ABOUTME: Drives login, authenticated calls, jailing, and terms acceptance through the real chain

package gateway

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
)

type harness struct {
	gw    *Gateway
	store *store.SQLiteStore
	boot  *grpc.ClientConn
	main  *grpc.ClientConn
}

func (h *harness) auth() rpc.AuthClient { return rpc.NewAuthClient(h.boot) }
func (h *harness) api() rpc.APIClient   { return rpc.NewAPIClient(h.main) }
func (h *harness) jail() rpc.JailClient { return rpc.NewJailClient(h.main) }

func dialListener(t *testing.T, lis *bufconn.Listener) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// newHarness serves a gateway on bufconn listeners with alice (pw1) seeded.
func newHarness(t *testing.T, aliceTOS int) *harness {
	t.Helper()
	cfg := testConfig(t)

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	require.NoError(t, err)

	hash, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash("pw1")
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.CreateUser(context.Background(), &store.User{
		ID:           "11111111-2222-3333-4444-555555555555",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Name:         "Alice Liddell",
		City:         "Oxford",
		AcceptedTOS:  aliceTOS,
		CreatedAt:    now,
		LastActiveAt: now,
	}))

	gw, err := NewWithStore(cfg, s, testLogger())
	require.NoError(t, err)

	bootLis := bufconn.Listen(1 << 20)
	mainLis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Serve(ctx, Listeners{Bootstrap: bootLis, Main: mainLis}) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("gateway did not shutdown in time")
		}
	})

	return &harness{
		gw:    gw,
		store: s,
		boot:  dialListener(t, bootLis),
		main:  dialListener(t, mainLis),
	}
}

func (h *harness) login(t *testing.T) string {
	t.Helper()
	resp, err := h.auth().Login(context.Background(), &rpc.LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestE2E_AliceScenario(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()

	// Login on the bootstrap endpoint
	t1 := h.login(t)

	// Ping with T1 returns alice's identity fields
	pong, err := h.api().Ping(rpc.WithToken(ctx, t1), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", pong.UserID)
	assert.Equal(t, "alice", pong.Username)
	assert.Equal(t, "Alice Liddell", pong.Name)

	// Ping without metadata is rejected
	_, err = h.api().Ping(ctx, &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, rpc.ReasonUnauthenticated, rpc.ReasonOf(err))

	// A newly restricted alice is jailed on the very next call
	require.NoError(t, h.store.SetAcceptedTOS(ctx, pong.UserID, 0))
	_, err = h.api().Ping(rpc.WithToken(ctx, t1), &emptypb.Empty{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Equal(t, rpc.ReasonJailed, rpc.ReasonOf(err))

	info, err := h.jail().JailInfo(rpc.WithToken(ctx, t1), &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, info.Jailed)
	assert.Equal(t, []string{"MISSING_TOS"}, info.Reasons)

	// Accepting the terms succeeds while restricted and lifts the restriction
	tos, err := h.jail().AcceptTOS(rpc.WithToken(ctx, t1), &rpc.AcceptTOSRequest{Accept: true})
	require.NoError(t, err)
	assert.True(t, tos.Accepted)

	pong, err = h.api().Ping(rpc.WithToken(ctx, t1), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "alice", pong.Username)

	// Metrics saw the denied call; logging and metrics wrap the auth stages
	denied := testutil.ToFloat64(h.gw.metrics.CallsTotal.WithLabelValues(EndpointMain, rpc.API_Ping_FullMethodName, codes.PermissionDenied.String()))
	assert.Equal(t, float64(1), denied)
	unauth := testutil.ToFloat64(h.gw.metrics.CallsTotal.WithLabelValues(EndpointMain, rpc.API_Ping_FullMethodName, codes.Unauthenticated.String()))
	assert.Equal(t, float64(1), unauth)
}

func TestE2E_LoginFailuresAreUniform(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()

	_, wrongPw := h.auth().Login(ctx, &rpc.LoginRequest{Username: "alice", Password: "nope"})
	_, noUser := h.auth().Login(ctx, &rpc.LoginRequest{Username: "mallory", Password: "pw1"})

	for _, err := range []error{wrongPw, noUser} {
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, rpc.ReasonInvalidCredentials, rpc.ReasonOf(err))
	}
	assert.Equal(t, status.Convert(wrongPw).Message(), status.Convert(noUser).Message())
}

func TestE2E_EndpointsAreSeparate(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()
	token := h.login(t)

	// Login is not registered on the main endpoint
	_, err := rpc.NewAuthClient(h.main).Login(ctx, &rpc.LoginRequest{Username: "alice", Password: "pw1"})
	assert.Equal(t, codes.Unimplemented, status.Code(err))

	// Business services are not served on the bootstrap endpoint
	_, err = rpc.NewAPIClient(h.boot).Ping(rpc.WithToken(ctx, token), &emptypb.Empty{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestE2E_JailedUserRestrictedToAllowList(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	authed := rpc.WithToken(ctx, h.login(t))

	_, err := h.api().GetUser(authed, &rpc.GetUserRequest{User: "alice"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	tos, err := h.jail().GetTOS(authed, &emptypb.Empty{})
	require.NoError(t, err)
	assert.False(t, tos.Accepted)
	assert.Equal(t, 1, tos.CurrentVersion)
	assert.NotEmpty(t, tos.TermsHTML)

	_, err = h.jail().AcceptTOS(authed, &rpc.AcceptTOSRequest{Accept: false})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.jail().AcceptTOS(authed, &rpc.AcceptTOSRequest{Accept: true})
	require.NoError(t, err)

	u, err := h.api().GetUser(authed, &rpc.GetUserRequest{User: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Oxford", u.City)

	_, err = h.api().GetUser(authed, &rpc.GetUserRequest{User: "nobody"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestE2E_Logout(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()
	token := h.login(t)

	_, err := h.auth().Logout(ctx, &rpc.LogoutRequest{Token: token})
	require.NoError(t, err)

	_, err = h.api().Ping(rpc.WithToken(ctx, token), &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestE2E_BearerCredentials(t *testing.T) {
	h := newHarness(t, 1)
	token := h.login(t)

	_, err := h.api().Ping(context.Background(), &emptypb.Empty{}, grpc.PerRPCCredentials(rpc.BearerCredentials{Token: token}))
	require.NoError(t, err)
}

func TestE2E_ConcurrentCalls(t *testing.T) {
	h := newHarness(t, 1)
	authed := rpc.WithToken(context.Background(), h.login(t))

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.api().Ping(authed, &emptypb.Empty{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestE2E_ExpiredSessionsSwept(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()
	token := h.login(t)

	swept, err := h.gw.sessions.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, swept, "live sessions survive a sweep")

	_, err = h.api().Ping(rpc.WithToken(ctx, token), &emptypb.Empty{})
	assert.NoError(t, err)
}
