// Package web serves the login, dashboard and search pages.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/config"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticator opens, resolves and closes login sessions.
type Authenticator interface {
	Authenticate(ctx context.Context, ip, username, secret string) (*services.Session, error)
	ResolveSession(ctx context.Context, token string) (models.Identity, error)
	TerminateSession(ctx context.Context, ip string, id models.Identity, token string) error
}

// Dashboards runs role-scoped post queries.
type Dashboards interface {
	Dashboard(ctx context.Context, ip string, id models.Identity) (*services.View, error)
	Search(ctx context.Context, ip string, id models.Identity, term string) (*services.View, error)
}

type HTTPServer struct {
	address           string
	auth              Authenticator
	dashboards        Dashboards
	logger            logging.Logger
	views             *views
	cookieName        string
	cookieSecure      bool
	trustForwardedFor bool
	shutdownTimeout   time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, a Authenticator, d Dashboards) (*HTTPServer, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	return &HTTPServer{
		address:           cfg.HTTPAddr,
		auth:              a,
		dashboards:        d,
		logger:            l.With("module", "http_server"),
		views:             v,
		cookieName:        cfg.CookieName,
		cookieSecure:      cfg.CookieSecure,
		trustForwardedFor: cfg.TrustForwardedFor,
		shutdownTimeout:   10 * time.Second,
	}, nil
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleLoginForm)
	r.Post("/", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/logout", s.handleLogout)
		r.Get("/dashboard", s.handleDashboard)
		r.Post("/search", s.handleSearch)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
