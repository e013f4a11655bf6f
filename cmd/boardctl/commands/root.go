// Package commands implements boardctl, the roleboard administration tool.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/roleboard/internal/buildinfo"
	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/auth"
	"github.com/dmitrijs2005/roleboard/internal/server/config"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/roleboard/internal/server/services"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL          string
	passwordScheme string
	verbose        bool
)

// adminAPI is the slice of services.AdminService the commands use.
type adminAPI interface {
	Migrate(ctx context.Context) error
	ResetSchema(ctx context.Context) error
	Seed(ctx context.Context) (services.SeedResult, error)
	CreateUser(ctx context.Context, username, email, secret, role string) (*models.User, error)
	DeleteUser(ctx context.Context, username string) error
	ListPosts(ctx context.Context) ([]models.PostRow, error)
}

// openAdmin connects to the database described by the environment and the
// global flags. The returned func releases the connection.
var openAdmin = func(ctx context.Context, stderr io.Writer) (adminAPI, func(), error) {
	cfg := config.LoadEnvConfig()
	if dbURL != "" {
		cfg.DatabaseDSN = dbURL
	}
	if passwordScheme != "" {
		cfg.PasswordScheme = passwordScheme
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.New(stderr, level)

	checker, err := auth.NewCredentialChecker(cfg.PasswordScheme)
	if err != nil {
		return nil, nil, err
	}

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	admin := services.NewAdminService(db, repomanager.NewPostgresRepositoryManager(), checker, logger)
	return admin, func() { _ = db.Close() }, nil
}

// withAdmin runs fn against a freshly opened admin service.
func withAdmin(cmd *cobra.Command, fn func(ctx context.Context, admin adminAPI) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	admin, release, err := openAdmin(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx, admin)
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Roleboard administration",
	Long: `boardctl manages the roleboard database: schema migrations, demo data
and user accounts.

The database is taken from ROLEBOARD_DATABASE_DSN or DATABASE_URL (a .env
file in the working directory is honoured) unless --db is given.`,
	Version:       buildinfo.BuildVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL")
	rootCmd.PersistentFlags().StringVar(&passwordScheme, "password-scheme", "", "Password scheme for stored secrets (plain|bcrypt)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
