// ABOUTME: seed subcommand that loads accounts from a JSON or YAML file
// ABOUTME: Idempotent: existing usernames are skipped and reported

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/seed"
)

// Default timeout for seed command.
const defaultSeedTimeout = time.Minute

type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load user accounts from a JSON or YAML file",
		Long: `Creates the accounts listed in FILE, hashing their passwords.
This command is idempotent - accounts that already exist are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args[0], cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, file string, opts *seedConfig) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	res, err := seed.NewLoader(s, hasher, nil).LoadFile(ctx, file)
	if res != nil {
		out := cmd.OutOrStdout()
		for _, name := range res.Created {
			color.New(color.FgGreen).Fprintf(out, "  ✓ created %s\n", name)
		}
		for _, name := range res.Skipped {
			color.New(color.FgYellow).Fprintf(out, "  - skipped %s (already exists)\n", name)
		}
		fmt.Fprintf(out, "%d created, %d skipped\n", len(res.Created), len(res.Skipped))
	}
	return err
}
