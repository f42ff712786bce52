// ABOUTME: Root command and connection flags for warden-cli
// ABOUTME: Endpoint addresses and the token file come from flags or WARDEN_* environment variables

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Environment variables consulted for flag defaults.
const (
	envBootstrap = "WARDEN_BOOTSTRAP"
	envAddr      = "WARDEN_ADDR"
	envToken     = "WARDEN_TOKEN"
)

const defaultTimeout = 10 * time.Second

type cliOptions struct {
	bootstrap string
	addr      string
	tokenFile string
	timeout   time.Duration
}

// NewRootCmd creates the root command for warden-cli.
func NewRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "warden-cli",
		Short: "Command-line client for a warden gateway",
		Long: `warden-cli logs in on the bootstrap endpoint, caches the session token,
and calls the main endpoint with it. Accounts that have not accepted the
current terms of service can only use tos, accept-tos, and jail-info.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.bootstrap, "bootstrap", envOr(envBootstrap, "localhost:50050"), "bootstrap endpoint address ($"+envBootstrap+")")
	flags.StringVar(&opts.addr, "addr", envOr(envAddr, "localhost:50051"), "main endpoint address ($"+envAddr+")")
	flags.StringVar(&opts.tokenFile, "token-file", "", "session token file (default $XDG_STATE_HOME/warden/token)")
	flags.DurationVar(&opts.timeout, "timeout", defaultTimeout, "per-call timeout")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newPingCmd(opts))
	cmd.AddCommand(newUserCmd(opts))
	cmd.AddCommand(newTOSCmd(opts))
	cmd.AddCommand(newAcceptTOSCmd(opts))
	cmd.AddCommand(newJailInfoCmd(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dialOptions() []grpc.DialOption {
	return []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
}

// dial opens a client connection to addr. Transport protection is left to
// the network the gateway listens on.
func dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, dialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return conn, nil
}

// callContext bounds a single RPC by the --timeout flag.
func (o *cliOptions) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, o.timeout)
}
