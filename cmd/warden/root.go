// ABOUTME: Root command, global flags, and shared helpers for the warden binary
// ABOUTME: Resolves the config path and opens the configured store

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2389/warden/internal/config"
	"github.com/2389/warden/internal/gateway"
	"github.com/2389/warden/internal/store"
)

// configFile is the --config flag shared by every subcommand.
var configFile string

// NewRootCmd creates the root command for the warden CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warden",
		Short: "warden - session-authenticated gRPC gateway",
		Long: `warden serves a bootstrap endpoint that issues session credentials and a
main endpoint where every call is authenticated and jailed callers are
limited to an allow-list until they accept the current terms of service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $"+config.EnvConfigPath+" or $XDG_CONFIG_HOME/warden/warden.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewSweepCmd())

	return cmd
}

// configPath returns --config if set, otherwise the default location.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, string, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

// openStore opens the store named by cfg, honoring the database path override.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	path := cfg.Database.Path
	if envPath := os.Getenv(gateway.EnvDBPath); envPath != "" {
		path = envPath
	}
	s, err := store.NewSQLiteStoreWithDriver(cfg.Database.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return s, nil
}
