package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	identityKey ctxKey = "identity"
	tokenKey    ctxKey = "token"
)

func identityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// requireSession resolves the session cookie and redirects to the login
// page when there is no live session.
func (s *HTTPServer) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(s.cookieName); err == nil {
			token = c.Value
		}

		id, err := s.auth.ResolveSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrUnauthenticated) {
				if token != "" {
					s.clearSessionCookie(w)
				}
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			s.logger.Error(r.Context(), "resolve session", "error", err)
			s.renderError(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// clientIP prefers the first X-Forwarded-For entry when forwarded headers
// are trusted, else the peer address.
func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get(common.ForwardedForHeader); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *HTTPServer) clientIP(r *http.Request) string {
	return clientIP(r, s.trustForwardedFor)
}
