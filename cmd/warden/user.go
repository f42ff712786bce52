// ABOUTME: user subcommands for managing member accounts from the command line
// ABOUTME: add creates an account; list prints accounts with their terms state

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/2389/warden/internal/auth"
	"github.com/2389/warden/internal/store"
)

type userAddConfig struct {
	username    string
	email       string
	name        string
	acceptedTOS int
}

// NewUserCmd creates the user command group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserListCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	cfg := &userAddConfig{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user; the password is read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUserAdd(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&cfg.name, "name", "", "display name (default username)")
	cmd.Flags().IntVar(&cfg.acceptedTOS, "accepted-tos", 0, "terms version already accepted (0 = jailed until accepted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword reads a single line from r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}

func runUserAdd(cmd *cobra.Command, opts *userAddConfig) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	name := opts.name
	if name == "" {
		name = opts.username
	}
	now := time.Now().UTC().Truncate(time.Second)
	user := &store.User{
		ID:           uuid.NewString(),
		Username:     opts.username,
		Email:        opts.email,
		PasswordHash: hash,
		Name:         name,
		AcceptedTOS:  opts.acceptedTOS,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.CreateUser(cmd.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return fmt.Errorf("user %q or email %q already exists", opts.username, opts.email)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr())
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "  ✓ Created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users and whether they are jailed",
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

			users, err := s.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing users: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tEMAIL\tTOS\tSTATUS")
			for _, u := range users {
				state := "ok"
				if r := auth.Restrict(u, cfg.Jail.TOSVersion); r.IsRestricted() {
					state = "jailed: " + strings.Join(r.Strings(), ",")
				}
				fmt.Fprintf(tw, "%s\t%s\tv%d\t%s\n", u.Username, u.Email, u.AcceptedTOS, state)
			}
			return tw.Flush()
		},
	}
}
