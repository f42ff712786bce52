// ABOUTME: warden-cli subcommands for the bootstrap and main endpoints
// ABOUTME: login/logout talk to bootstrap; everything else sends the cached bearer token

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/2389/warden/internal/rpc"
)

// describeError turns a gateway status error into a message that tells the
// user what to do next.
func describeError(op string, err error) error {
	switch rpc.ReasonOf(err) {
	case rpc.ReasonJailed:
		var reasons []string
		for k := range rpc.MetadataOf(err) {
			if r, ok := strings.CutPrefix(k, "reason."); ok {
				reasons = append(reasons, r)
			}
		}
		sort.Strings(reasons)
		return fmt.Errorf("%s: account is restricted (%s); run warden-cli tos and warden-cli accept-tos",
			op, strings.Join(reasons, ", "))
	case rpc.ReasonUnauthenticated:
		return fmt.Errorf("%s: session is invalid or expired; run warden-cli login USERNAME", op)
	case rpc.ReasonInvalidCredentials:
		return fmt.Errorf("%s: invalid username or password", op)
	}
	if st, ok := status.FromError(err); ok {
		return fmt.Errorf("%s: %s", op, st.Message())
	}
	return fmt.Errorf("%s: %w", op, err)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// withMain runs fn against a main-endpoint connection carrying the cached token.
func (o *cliOptions) withMain(fn func(*grpc.ClientConn) error) error {
	token, err := o.loadToken()
	if err != nil {
		return err
	}
	conn, err := grpc.NewClient(o.addr,
		append(dialOptions(), grpc.WithPerRPCCredentials(rpc.BearerCredentials{Token: token}))...)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", o.addr, err)
	}
	defer conn.Close()
	return fn(conn)
}

func newLoginCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in and cache the session token; the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			password, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr())

			conn, err := dial(opts.bootstrap)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := opts.callContext(cmd.Context())
			defer cancel()
			resp, err := rpc.NewAuthClient(conn).Login(ctx, &rpc.LoginRequest{Username: args[0], Password: password})
			if err != nil {
				return describeError("login", err)
			}

			path, err := opts.saveToken(resp.Token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "  ✓ Logged in as %s\n", args[0])
			fmt.Fprintf(out, "  Token saved to %s (expires %s)\n", path, resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newLogoutCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the cached session and delete the token file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := opts.loadToken()
			if err != nil {
				return err
			}

			conn, err := dial(opts.bootstrap)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := opts.callContext(cmd.Context())
			defer cancel()
			_, err = rpc.NewAuthClient(conn).Logout(ctx, &rpc.LogoutRequest{Token: token})
			// An already-dead session still clears the local token
			if err != nil && status.Code(err) != codes.Unauthenticated {
				return describeError("logout", err)
			}

			if err := opts.removeToken(); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "  ✓ Logged out")
			return nil
		},
	}
}

func newPingCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the session and show who you are",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withMain(func(conn *grpc.ClientConn) error {
				ctx, cancel := opts.callContext(cmd.Context())
				defer cancel()
				resp, err := rpc.NewAPIClient(conn).Ping(ctx, &emptypb.Empty{})
				if err != nil {
					return describeError("ping", err)
				}
				out := cmd.OutOrStdout()
				color.New(color.FgGreen).Fprint(out, "  pong ")
				fmt.Fprintf(out, "%s (%s) %s\n", resp.Username, resp.Name, resp.UserID)
				return nil
			})
		},
	}
}

func newUserCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user NAME",
		Short: "Show a user's public profile by id, username, or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMain(func(conn *grpc.ClientConn) error {
				ctx, cancel := opts.callContext(cmd.Context())
				defer cancel()
				u, err := rpc.NewAPIClient(conn).GetUser(ctx, &rpc.GetUserRequest{User: args[0]})
				if err != nil {
					return describeError("user", err)
				}
				printProfile(cmd.OutOrStdout(), u)
				return nil
			})
		},
	}
}

func printProfile(out io.Writer, u *rpc.User) {
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(out)
	cyan.Fprintf(out, "  %s\n", u.Username)
	cyan.Fprintln(out, "  "+strings.Repeat("-", len(u.Username)))
	fmt.Fprintf(out, "  Name:         %s\n", u.Name)
	if u.City != "" {
		fmt.Fprintf(out, "  City:         %s\n", u.City)
	}
	if u.Age > 0 {
		fmt.Fprintf(out, "  Age:          %d\n", u.Age)
	}
	if u.Occupation != "" {
		fmt.Fprintf(out, "  Occupation:   %s\n", u.Occupation)
	}
	if len(u.Languages) > 0 {
		fmt.Fprintf(out, "  Languages:    %s\n", strings.Join(u.Languages, ", "))
	}
	fmt.Fprintf(out, "  Verification: %.2f\n", u.Verification)
	fmt.Fprintf(out, "  Standing:     %.2f\n", u.CommunityStanding)
	fmt.Fprintf(out, "  Joined:       %s\n", u.Joined.Format("2006-01-02"))
	fmt.Fprintf(out, "  Last active:  %s\n", u.LastActive.Format("2006-01-02 15:00"))
	if u.AboutMe != "" {
		fmt.Fprintf(out, "\n  %s\n", u.AboutMe)
	}
	fmt.Fprintln(out)
}

func printTOSState(out io.Writer, resp *rpc.GetTOSResponse) {
	if resp.Accepted {
		color.New(color.FgGreen).Fprintf(out, "  ✓ Terms v%d accepted\n", resp.CurrentVersion)
		return
	}
	color.New(color.FgYellow).Fprintf(out, "  ! Terms v%d not accepted (accepted: v%d)\n", resp.CurrentVersion, resp.AcceptedVersion)
}

func newTOSCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tos",
		Short: "Show the current terms of service and whether you accepted them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withMain(func(conn *grpc.ClientConn) error {
				ctx, cancel := opts.callContext(cmd.Context())
				defer cancel()
				resp, err := rpc.NewJailClient(conn).GetTOS(ctx, &emptypb.Empty{})
				if err != nil {
					return describeError("tos", err)
				}
				out := cmd.OutOrStdout()
				printTOSState(out, resp)
				if resp.TermsHTML != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, strings.TrimSpace(resp.TermsHTML))
				}
				return nil
			})
		},
	}
}

func newAcceptTOSCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accept-tos",
		Short: "Accept the current terms of service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withMain(func(conn *grpc.ClientConn) error {
				ctx, cancel := opts.callContext(cmd.Context())
				defer cancel()
				resp, err := rpc.NewJailClient(conn).AcceptTOS(ctx, &rpc.AcceptTOSRequest{Accept: true})
				if err != nil {
					return describeError("accept-tos", err)
				}
				printTOSState(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}
}

func newJailInfoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "jail-info",
		Short: "Show whether your account is restricted and why",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withMain(func(conn *grpc.ClientConn) error {
				ctx, cancel := opts.callContext(cmd.Context())
				defer cancel()
				resp, err := rpc.NewJailClient(conn).JailInfo(ctx, &emptypb.Empty{})
				if err != nil {
					return describeError("jail-info", err)
				}
				out := cmd.OutOrStdout()
				if !resp.Jailed {
					color.New(color.FgGreen).Fprintln(out, "  ✓ Not restricted")
					return nil
				}
				color.New(color.FgYellow).Fprintf(out, "  ! Restricted: %s\n", strings.Join(resp.Reasons, ", "))
				return nil
			})
		},
	}
}
