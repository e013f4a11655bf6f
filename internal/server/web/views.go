package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/policy"
	"github.com/dmitrijs2005/roleboard/internal/server/services"
)

//go:embed templates/*.html
var templateFS embed.FS

type views struct {
	login     *template.Template
	dashboard *template.Template
	failure   *template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
}

func loadViews() (*views, error) {
	parse := func(page string) (*template.Template, error) {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		return t, nil
	}

	var (
		v   views
		err error
	)
	if v.login, err = parse("login.html"); err != nil {
		return nil, err
	}
	if v.dashboard, err = parse("dashboard.html"); err != nil {
		return nil, err
	}
	if v.failure, err = parse("error.html"); err != nil {
		return nil, err
	}
	return &v, nil
}

type loginPage struct {
	Flash    string
	Username string
}

type dashboardPage struct {
	Flash      string
	Identity   models.Identity
	View       string
	Posts      []models.PostRow
	ModPosts   []models.LimitedPost
	Searched   bool
	SearchTerm string
	Count      int
}

type errorPage struct {
	Status int
	Text   string
}

// viewName picks the dashboard layout for a scope.
func viewName(scope policy.Scope) string {
	switch {
	case scope.Projection == policy.Limited:
		return "moderator"
	case scope.Rows.All():
		return "admin"
	default:
		return "user"
	}
}

func newDashboardPage(id models.Identity, v *services.View, flash string) dashboardPage {
	return dashboardPage{
		Flash:      flash,
		Identity:   id,
		View:       viewName(v.Scope),
		Posts:      v.Full,
		ModPosts:   v.Limited,
		Searched:   v.Scope.Searching(),
		SearchTerm: v.Scope.Term(),
		Count:      v.Len(),
	}
}

// render executes t fully before writing so a failed render never reaches
// the client half-written.
func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, t *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		s.logger.Error(r.Context(), "render", "template", t.Name(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) renderError(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.views.failure, http.StatusInternalServerError, errorPage{
		Status: http.StatusInternalServerError,
		Text:   "Something went wrong. Please try again later.",
	})
}
