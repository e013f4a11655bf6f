package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// reset flags
	confirmReset bool
	seedAfter    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(ctx context.Context, admin adminAPI) error {
			if err := admin.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo users and posts into empty tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(ctx context.Context, admin adminAPI) error {
			return runSeed(ctx, cmd, admin)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all tables and migrate again",
	Long: `Roll every migration back and apply them again, leaving empty tables.
All users, posts and sessions are lost.

Examples:
  boardctl reset --yes          # Recreate empty tables
  boardctl reset --yes --seed   # Recreate and insert demo data`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmReset {
			return errors.New("refusing to reset without --yes")
		}
		return withAdmin(cmd, func(ctx context.Context, admin adminAPI) error {
			if err := admin.ResetSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema reset")
			if seedAfter {
				return runSeed(ctx, cmd, admin)
			}
			return nil
		})
	},
}

func runSeed(ctx context.Context, cmd *cobra.Command, admin adminAPI) error {
	res, err := admin.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d posts\n", res.Users, res.Posts)
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, resetCmd)

	resetCmd.Flags().BoolVar(&confirmReset, "yes", false, "Confirm destroying all data")
	resetCmd.Flags().BoolVar(&seedAfter, "seed", false, "Seed demo data after the reset")
}
