// ABOUTME: sweep subcommand that deletes expired sessions once
// ABOUTME: The running gateway does the same on sweep_interval

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSweepCmd creates the sweep subcommand.
func NewSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.DeleteExpiredSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweeping sessions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired session(s)\n", n)
			return nil
		},
	}
}
