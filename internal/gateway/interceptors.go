// ABOUTME: Logging and metrics interceptors plus interceptor chain composition
// ABOUTME: Chains are explicit ordered slices; the main endpoint adds auth and the jail gate

package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/2389/warden/internal/auth"
)

// Endpoint labels.
const (
	EndpointBootstrap = "bootstrap"
	EndpointMain      = "main"
)

// LoggingInterceptor logs each call's method and outcome code. It never
// alters the handler's response or error and does not read the Identity.
func LoggingInterceptor(logger *slog.Logger, endpoint string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, logger, endpoint, info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

// LoggingStreamInterceptor is the streaming counterpart of LoggingInterceptor.
func LoggingStreamInterceptor(logger *slog.Logger, endpoint string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(ss.Context(), logger, endpoint, info.FullMethod, err, time.Since(start))
		return err
	}
}

func logCall(ctx context.Context, logger *slog.Logger, endpoint, method string, err error, elapsed time.Duration) {
	code := status.Code(err)
	attrs := []any{
		"endpoint", endpoint,
		"method", method,
		"code", code.String(),
		"duration", elapsed,
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		attrs = append(attrs, "peer_addr", p.Addr.String())
	}

	switch code {
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		logger.Error("rpc", append(attrs, "error", err)...)
	default:
		logger.Info("rpc", attrs...)
	}
}

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	CallsTotal   *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers gateway metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_rpc_calls_total",
				Help: "Total number of RPC calls by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "code"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_rpc_duration_seconds",
				Help:    "RPC handling duration in seconds, including interceptors",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),
	}

	reg.MustRegister(m.CallsTotal)
	reg.MustRegister(m.CallDuration)
	return m
}

func (m *Metrics) record(endpoint, method string, err error, elapsed time.Duration) {
	m.CallsTotal.WithLabelValues(endpoint, method, status.Code(err).String()).Inc()
	m.CallDuration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

// UnaryInterceptor counts calls and observes their duration.
func (m *Metrics) UnaryInterceptor(endpoint string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.record(endpoint, info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

// StreamInterceptor counts streams and observes their duration.
func (m *Metrics) StreamInterceptor(endpoint string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		m.record(endpoint, info.FullMethod, err, time.Since(start))
		return err
	}
}

// ChainDeps are the collaborators the main-endpoint chain is built from.
type ChainDeps struct {
	Logger     *slog.Logger
	Metrics    *Metrics
	Sessions   auth.SessionResolver
	Users      auth.UserGetter
	TOSVersion int
	Allow      *auth.AllowList
}

// BootstrapChain returns the bootstrap endpoint's interceptors in order:
// logging then metrics. Nothing on this endpoint requires a credential.
func BootstrapChain(d ChainDeps) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		LoggingInterceptor(d.Logger, EndpointBootstrap),
		d.Metrics.UnaryInterceptor(EndpointBootstrap),
	}
}

// MainChain returns the main endpoint's unary interceptors in order:
// logging, metrics, authentication, jail gate.
func MainChain(d ChainDeps) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		LoggingInterceptor(d.Logger, EndpointMain),
		d.Metrics.UnaryInterceptor(EndpointMain),
		auth.UnaryInterceptor(d.Sessions, d.Users, d.TOSVersion, d.Logger),
		auth.JailGate(d.Allow, d.Logger),
	}
}

// MainStreamChain is the streaming counterpart of MainChain.
func MainStreamChain(d ChainDeps) []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{
		LoggingStreamInterceptor(d.Logger, EndpointMain),
		d.Metrics.StreamInterceptor(EndpointMain),
		auth.StreamInterceptor(d.Sessions, d.Users, d.TOSVersion, d.Logger),
		auth.JailGateStream(d.Allow, d.Logger),
	}
}
