// ABOUTME: serve subcommand that runs the gateway until interrupted
// ABOUTME: Prints a startup banner then hands off to gateway.Run

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/warden/internal/gateway"
)

const banner = `
                         _
 __      ____ _ _ __ __| | ___ _ __
 \ \ /\ / / _' | '__/ _' |/ _ \ '_ \
  \ V  V / (_| | | | (_| |  __/ | | |
   \_/\_/ \__,_|_|  \__,_|\___|_| |_|
`

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bootstrap, main, and HTTP servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan)
			gray := color.New(color.FgHiBlack)
			green := color.New(color.FgGreen)

			cyan.Fprint(out, banner)
			gray.Fprintf(out, "    version: %s\n\n", version)

			line := func(label, value string) {
				green.Fprint(out, "    ▶ ")
				fmt.Fprintf(out, "%-10s %s\n", label+":", value)
			}
			line("Config", path)
			if cfg.Tailscale.Enabled {
				line("Tailscale", cfg.Tailscale.Hostname)
			} else {
				line("Bootstrap", cfg.Server.BootstrapAddr)
				line("gRPC", cfg.Server.GRPCAddr)
				line("HTTP", cfg.Server.HTTPAddr)
			}
			line("Terms", fmt.Sprintf("v%d", cfg.Jail.TOSVersion))
			fmt.Fprintln(out)

			logger := setupLogger(cfg.Logging, out)
			logger.Info("starting warden",
				"config", path,
				"bootstrap_addr", cfg.Server.BootstrapAddr,
				"grpc_addr", cfg.Server.GRPCAddr,
				"http_addr", cfg.Server.HTTPAddr,
			)

			gw, err := gateway.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating gateway: %w", err)
			}
			return gw.Run(cmd.Context())
		},
	}
}
