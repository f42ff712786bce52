// ABOUTME: hash-password subcommand for producing password hashes offline
// ABOUTME: Reads the password from stdin and prints the encoded hash

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389/warden/internal/auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var hasherName string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasher, err := auth.NewHasher(hasherName)
			if err != nil {
				return err
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&hasherName, "hasher", auth.HasherArgon2id, "argon2id or bcrypt")
	return cmd
}
