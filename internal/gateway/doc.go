// Package gateway wires warden's servers together.
//
// # Endpoints
//
// The gateway runs two gRPC servers and one HTTP server:
//
//   - bootstrap (server.bootstrap_addr): warden.Auth Login/Logout, no credential required
//   - main (server.grpc_addr): warden.API and warden.Jail, every call authenticated
//   - HTTP (server.http_addr): /health, /health/ready, and Prometheus metrics
//
// Each gRPC server has its own worker pool bounded by
// server.max_concurrent_calls.
//
// # Interceptor Chains
//
// Chains are explicit ordered slices built at construction:
//
//	bootstrap: Logging → Metrics → handler
//	main:      Logging → Metrics → Auth → JailGate → handler
//
// Logging and metrics sit outside authentication so rejected calls are
// still recorded with their status code. See MainChain and BootstrapChain.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//	...
//	cancel() // Run shuts everything down and returns
//
// Serve runs on caller-provided listeners, which is how tests drive the
// gateway over in-process connections. A sweeper goroutine removes expired
// sessions every auth.sweep_interval while the gateway is serving.
package gateway
