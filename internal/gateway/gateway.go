// ABOUTME: Gateway orchestrator that coordinates the bootstrap, main gRPC, and HTTP servers
// ABOUTME: Manages the store, session sweeper, health endpoints, and optional tailscale listeners

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/warden/internal/api"
	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/config"
	"github.com/2389/warden/internal/jail"
	"github.com/2389/warden/internal/rpc"
	"github.com/2389/warden/internal/store"
)

// EnvDBPath overrides database.path when set.
const EnvDBPath = "WARDEN_DB_PATH"

// Tailscale listener ports.
const (
	tailscaleBootstrapPort = ":50050"
	tailscaleGRPCPort      = ":50051"
	tailscaleHTTPPort      = ":80"
)

// Gateway orchestrates the warden server components.
// The bootstrap server issues credentials; the main server requires them.
type Gateway struct {
	config          *config.Config
	store           store.Store
	sessions        *auth.SessionManager
	bootstrapServer *grpc.Server
	grpcServer      *grpc.Server
	httpServer      *http.Server
	tsnetServer     *tsnet.Server
	registry        *prometheus.Registry
	metrics         *Metrics
	logger          *slog.Logger

	// sweeper tracks the expired-session sweeper goroutine
	sweeper sync.WaitGroup
}

// Listeners are the sockets the gateway serves on. HTTP may be nil.
type Listeners struct {
	Bootstrap net.Listener
	Main      net.Listener
	HTTP      net.Listener
}

// initStore creates and returns a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv(EnvDBPath); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStoreWithDriver(cfg.Database.Driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// serverOptions returns options shared by both gRPC servers. Each endpoint
// gets its own bounded worker pool.
func serverOptions(cfg *config.Config) []grpc.ServerOption {
	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    15 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	if n := cfg.Server.MaxConcurrentCalls; n > 0 {
		opts = append(opts,
			grpc.NumStreamWorkers(uint32(n)),
			grpc.MaxConcurrentStreams(uint32(n)),
		)
	}
	return opts
}

// allowList builds the jail allow-list from the defaults plus configured patterns.
func allowList(cfg *config.Config) (*auth.AllowList, error) {
	patterns := append([]string(nil), auth.DefaultAllowPatterns...)
	patterns = append(patterns, cfg.Jail.Allow...)
	return auth.NewAllowList(patterns...)
}

// New creates a new Gateway, opening the store named by cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	gw, err := NewWithStore(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return gw, nil
}

// NewWithStore creates a Gateway on an already opened store. The gateway
// takes ownership of s and closes it on Shutdown.
func NewWithStore(cfg *config.Config, s store.Store, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		return nil, fmt.Errorf("creating password hasher: %w", err)
	}
	signer, err := auth.NewTokenSigner([]byte(cfg.Auth.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("creating token signer: %w", err)
	}
	allow, err := allowList(cfg)
	if err != nil {
		return nil, fmt.Errorf("building jail allow-list: %w", err)
	}
	terms, err := jail.LoadTerms(cfg.Jail.TOSVersion, cfg.Jail.TOSPath)
	if err != nil {
		return nil, fmt.Errorf("loading terms of service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := NewMetrics(registry)

	sessions := auth.NewSessionManager(s, signer, cfg.Auth.SessionTTL, logger)
	issuer := auth.NewIssuer(s, sessions, hasher, logger)

	deps := ChainDeps{
		Logger:     logger.With("component", "grpc"),
		Metrics:    metrics,
		Sessions:   sessions,
		Users:      s,
		TOSVersion: cfg.Jail.TOSVersion,
		Allow:      allow,
	}

	bootstrapServer := grpc.NewServer(append(serverOptions(cfg),
		grpc.ChainUnaryInterceptor(BootstrapChain(deps)...),
	)...)
	rpc.RegisterAuthServer(bootstrapServer, auth.NewService(issuer, logger))

	grpcServer := grpc.NewServer(append(serverOptions(cfg),
		grpc.ChainUnaryInterceptor(MainChain(deps)...),
		grpc.ChainStreamInterceptor(MainStreamChain(deps)...),
	)...)
	rpc.RegisterAPIServer(grpcServer, api.NewService(s, logger))
	rpc.RegisterJailServer(grpcServer, jail.NewService(s, terms, logger))
	logger.Info("auth interceptors enabled",
		"tos_version", cfg.Jail.TOSVersion,
		"allow", allow.Patterns(),
	)

	gw := &Gateway{
		config:          cfg,
		store:           s,
		sessions:        sessions,
		bootstrapServer: bootstrapServer,
		grpcServer:      grpcServer,
		registry:        registry,
		metrics:         metrics,
		logger:          logger.With("component", "gateway"),
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Handler returns the HTTP handler serving health and metrics endpoints.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)

	if g.config.Metrics.Enabled {
		mux.Handle(g.config.Metrics.Path, promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	return mux
}

// Registry returns the Prometheus registry the gateway reports to.
func (g *Gateway) Registry() *prometheus.Registry {
	return g.registry
}

// setupTCPListeners creates standard TCP listeners for both gRPC endpoints and HTTP.
func (g *Gateway) setupTCPListeners() (Listeners, error) {
	g.logger.Info("starting gateway",
		"bootstrap_addr", g.config.Server.BootstrapAddr,
		"grpc_addr", g.config.Server.GRPCAddr,
		"http_addr", g.config.Server.HTTPAddr,
	)

	var ls Listeners
	var err error

	ls.Bootstrap, err = net.Listen("tcp", g.config.Server.BootstrapAddr)
	if err != nil {
		return Listeners{}, fmt.Errorf("listening on bootstrap address: %w", err)
	}

	ls.Main, err = net.Listen("tcp", g.config.Server.GRPCAddr)
	if err != nil {
		ls.close()
		return Listeners{}, fmt.Errorf("listening on gRPC address: %w", err)
	}

	if g.config.Server.HTTPAddr != "" {
		ls.HTTP, err = net.Listen("tcp", g.config.Server.HTTPAddr)
		if err != nil {
			ls.close()
			return Listeners{}, fmt.Errorf("listening on HTTP address: %w", err)
		}
	}

	return ls, nil
}

func (ls Listeners) close() {
	for _, ln := range []net.Listener{ls.Bootstrap, ls.Main, ls.HTTP} {
		if ln != nil {
			_ = ln.Close()
		}
	}
}

// warnIgnoredAddresses logs a warning if server addresses are configured but Tailscale is enabled.
func (g *Gateway) warnIgnoredAddresses() {
	if g.config.Server.BootstrapAddr != "" || g.config.Server.GRPCAddr != "" || g.config.Server.HTTPAddr != "" {
		g.logger.Warn("server addresses are ignored when tailscale is enabled",
			"bootstrap_addr", g.config.Server.BootstrapAddr,
			"grpc_addr", g.config.Server.GRPCAddr,
			"http_addr", g.config.Server.HTTPAddr,
		)
	}
}

// setupListeners creates listeners based on configuration (Tailscale or TCP).
func (g *Gateway) setupListeners(ctx context.Context) (Listeners, error) {
	if g.config.Tailscale.Enabled {
		g.warnIgnoredAddresses()
		return g.setupTailscaleListeners(ctx)
	}
	return g.setupTCPListeners()
}

// startServers starts each server in a goroutine, returning the error channel.
func (g *Gateway) startServers(ls Listeners) chan error {
	errCh := make(chan error, 3)

	go func() {
		g.logger.Info("bootstrap server listening", "addr", ls.Bootstrap.Addr().String())
		if err := g.bootstrapServer.Serve(ls.Bootstrap); err != nil {
			errCh <- fmt.Errorf("bootstrap server: %w", err)
		}
	}()

	go func() {
		g.logger.Info("gRPC server listening", "addr", ls.Main.Addr().String())
		if err := g.grpcServer.Serve(ls.Main); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	if ls.HTTP != nil {
		go func() {
			g.logger.Info("HTTP server listening", "addr", ls.HTTP.Addr().String())
			if err := g.httpServer.Serve(ls.HTTP); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("HTTP server: %w", err)
			}
		}()
	}

	return errCh
}

// startSweeper removes expired sessions every sweep_interval until ctx ends.
func (g *Gateway) startSweeper(ctx context.Context) {
	interval := g.config.Auth.SweepInterval
	if interval <= 0 {
		return
	}
	g.sweeper.Add(1)
	go func() {
		defer g.sweeper.Done()
		g.sessions.RunSweeper(ctx, interval)
	}()
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		g.drainErrors(errCh)
		return err
	}
}

// drainErrors drains any remaining errors from the channel.
func (g *Gateway) drainErrors(errCh chan error) {
	select {
	case additionalErr := <-errCh:
		g.logger.Error("additional server error", "error", additionalErr)
	default:
	}
}

// Run opens the configured listeners and serves until ctx is canceled.
// Returns nil on graceful shutdown, or an error if a server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ls, err := g.setupListeners(ctx)
	if err != nil {
		return err
	}
	return g.Serve(ctx, ls)
}

// Serve serves on ls until ctx is canceled or a server fails, then shuts
// everything down.
func (g *Gateway) Serve(ctx context.Context, ls Listeners) error {
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	g.startSweeper(sweepCtx)

	errCh := g.startServers(ls)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	stopSweeper()
	g.sweeper.Wait()

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "warden", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListeners creates a tsnet server and returns listeners on the tailnet.
func (g *Gateway) setupTailscaleListeners(ctx context.Context) (Listeners, error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return Listeners{}, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return Listeners{}, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return Listeners{}, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return Listeners{}, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, status)

	var ls Listeners
	for _, l := range []struct {
		port string
		dst  *net.Listener
		name string
	}{
		{tailscaleBootstrapPort, &ls.Bootstrap, "bootstrap"},
		{tailscaleGRPCPort, &ls.Main, "gRPC"},
		{tailscaleHTTPPort, &ls.HTTP, "HTTP"},
	} {
		ln, err := g.tsnetServer.Listen("tcp", l.port)
		if err != nil {
			ls.close()
			_ = g.tsnetServer.Close()
			return Listeners{}, fmt.Errorf("listening on tailscale %s port: %w", l.name, err)
		}
		*l.dst = ln
	}
	return ls, nil
}

// logTailscaleStatus logs info about the tailscale node status.
func (g *Gateway) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// stopGRPCServer gracefully stops a gRPC server or force-stops on context cancel.
func stopGRPCServer(ctx context.Context, srv *grpc.Server) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		srv.Stop()
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops all gateway servers and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	stopGRPCServer(ctx, g.bootstrapServer)
	stopGRPCServer(ctx, g.grpcServer)

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", g.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store is reachable.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := g.store.Ping(ctx); err != nil {
		g.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
