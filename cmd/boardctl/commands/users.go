package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// create-user flags
	userEmail    string
	userRole     string
	userPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user USERNAME",
	Short: "Create an account",
	Long: `Create an account with the given role (user, moderator or admin).

The password is taken from --password, prompted for on a terminal, or read
as one line from stdin.

Examples:
  boardctl create-user alice --email alice@example.com
  echo s3cret | boardctl create-user bob --email bob@example.com --role moderator`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readSecret(cmd)
		if err != nil {
			return err
		}
		return withAdmin(cmd, func(ctx context.Context, admin adminAPI) error {
			u, err := admin.CreateUser(ctx, args[0], userEmail, secret, userRole)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id=%d, role=%s)\n", u.UserName, u.ID, u.Role)
			return nil
		})
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user USERNAME",
	Short: "Delete an account together with its posts and sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(ctx context.Context, admin adminAPI) error {
			if err := admin.DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		})
	},
}

// isTerminal is swapped in tests.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func readSecret(cmd *cobra.Command) (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}

	if isTerminal() {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(createUserCmd, deleteUserCmd)

	createUserCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	createUserCmd.Flags().StringVar(&userRole, "role", "user", "Role: user, moderator or admin")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Password (prompted when omitted)")
	_ = createUserCmd.MarkFlagRequired("email")
}
