// Package server wires configuration, storage, services and the HTTP
// front end into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/roleboard/internal/filex"
	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/audit"
	"github.com/dmitrijs2005/roleboard/internal/server/auth"
	"github.com/dmitrijs2005/roleboard/internal/server/config"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/roleboard/internal/server/services"
	"github.com/dmitrijs2005/roleboard/internal/server/web"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	auditOut  io.WriteCloser
	admin     *services.AdminService
	auth      *services.AuthService
	webServer *web.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	checker, err := auth.NewCredentialChecker(c.PasswordScheme)
	if err != nil {
		return nil, err
	}

	auditOut, err := openAuditLog(c.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN, c.DBMaxOpenConns)
	if err != nil {
		_ = auditOut.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	rec := audit.NewLineRecorder(auditOut)

	as := services.NewAuthService(db, rm, checker, rec, logger, c)
	ds := services.NewDashboardService(db, rm, rec, logger)
	adm := services.NewAdminService(db, rm, checker, logger)

	ws, err := web.NewHTTPServer(c, logger, as, ds)
	if err != nil {
		_ = db.Close()
		_ = auditOut.Close()
		return nil, err
	}

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		auditOut:  auditOut,
		admin:     adm,
		auth:      as,
		webServer: ws,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepare migrates the schema, seeds when configured and drops expired
// sessions.
func (app *App) prepare(ctx context.Context) error {
	if err := app.admin.Migrate(ctx); err != nil {
		return err
	}

	if app.config.SeedOnStart {
		if _, err := app.admin.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	n, err := app.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		app.logger.Info(ctx, "expired sessions removed", "count", n)
	}

	return nil
}

// Run blocks until the HTTP server stops, either on a signal or on error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	defer app.close(ctx)

	if err := app.prepare(ctx); err != nil {
		app.logger.Error(ctx, "startup failed", "error", err)
		return err
	}

	if err := app.webServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close db", "error", err)
	}
	if err := app.auditOut.Close(); err != nil {
		app.logger.Error(ctx, "close audit log", "error", err)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openAuditLog opens path for appending, or returns stdout when path is
// empty or "-".
func openAuditLog(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := filex.OpenAppend(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
