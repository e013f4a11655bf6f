package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/roleboard/internal/common"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgLoginSuccess       = "Login successful"
	msgLoggedOut          = "Successfully logged out"
)

func (s *HTTPServer) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.views.login, http.StatusOK, loginPage{Flash: s.popFlash(w, r)})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")

	sess, err := s.auth.Authenticate(r.Context(), s.clientIP(r), username, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.render(w, r, s.views.login, http.StatusOK, loginPage{Flash: msgInvalidCredentials, Username: username})
			return
		}
		s.logger.Error(r.Context(), "login", "error", err)
		s.renderError(w, r)
		return
	}

	s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	s.setFlash(w, msgLoginSuccess)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := identityFrom(ctx)

	err := s.auth.TerminateSession(ctx, s.clientIP(r), id, tokenFrom(ctx))
	if err != nil && !errors.Is(err, common.ErrUnauthenticated) {
		s.logger.Error(ctx, "logout", "error", err)
		s.renderError(w, r)
		return
	}

	s.clearSessionCookie(w)
	s.setFlash(w, msgLoggedOut)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := identityFrom(ctx)

	v, err := s.dashboards.Dashboard(ctx, s.clientIP(r), id)
	if err != nil {
		s.logger.Error(ctx, "dashboard", "error", err)
		s.renderError(w, r)
		return
	}

	s.render(w, r, s.views.dashboard, http.StatusOK, newDashboardPage(id, v, s.popFlash(w, r)))
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	id, _ := identityFrom(ctx)

	v, err := s.dashboards.Search(ctx, s.clientIP(r), id, r.PostFormValue("search_term"))
	if err != nil {
		s.logger.Error(ctx, "search", "error", err)
		s.renderError(w, r)
		return
	}

	s.render(w, r, s.views.dashboard, http.StatusOK, newDashboardPage(id, v, s.popFlash(w, r)))
}
