// ABOUTME: init subcommand that writes a default configuration file
// ABOUTME: Generates a fresh session secret and refuses to overwrite without --force

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/warden/internal/config"
)

type initConfig struct {
	force  bool
	dbPath string
}

// NewInitCmd creates the init subcommand.
func NewInitCmd() *cobra.Command {
	cfg := &initConfig{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file with a fresh session secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&cfg.dbPath, "db", "", "SQLite database path (default next to the config file)")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initConfig) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.Default()
	cfg.Database.Path = opts.dbPath
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(filepath.Dir(path), "warden.db")
	}

	if err := config.Write(path, cfg); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	out := cmd.OutOrStdout()

	green.Fprintf(out, "  ✓ Created config: %s\n", path)
	green.Fprintf(out, "  ✓ Database:       %s\n", cfg.Database.Path)
	fmt.Fprintln(out)
	yellow.Fprintln(out, "  Next:")
	fmt.Fprintln(out, "    warden user add --username you --email you@example.com")
	fmt.Fprintln(out, "    warden serve")
	return nil
}
