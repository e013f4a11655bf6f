package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/audit"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/policy"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/repomanager"
)

// View is a scoped query result. Exactly one of Full and Limited is
// populated, chosen by Scope.Projection.
type View struct {
	Scope   policy.Scope
	Full    []models.PostRow
	Limited []models.LimitedPost
}

// Len is the number of rows in the view.
func (v *View) Len() int {
	if v.Scope.Projection == policy.Limited {
		return len(v.Limited)
	}
	return len(v.Full)
}

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	audit       audit.Recorder
	logger      logging.Logger
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, rec audit.Recorder, logger logging.Logger) *DashboardService {
	return &DashboardService{
		db:          db,
		repomanager: m,
		audit:       rec,
		logger:      logger.With("module", "dashboard"),
	}
}

// Dashboard returns the posts id may see.
func (s *DashboardService) Dashboard(ctx context.Context, ip string, id models.Identity) (*View, error) {
	return s.run(ctx, ip, id, policy.For(id), audit.ActionDashboard)
}

// Search returns the posts id may see whose title or content contains term,
// ignoring case.
func (s *DashboardService) Search(ctx context.Context, ip string, id models.Identity, term string) (*View, error) {
	scope := policy.Search(id, term)

	ev := s.event(ip, id, audit.ActionSearch, scope)
	ev.Outcome = audit.OutcomeAttempt
	ev.Detail = "term=" + term
	s.audit.Record(ctx, ev)

	return s.run(ctx, ip, id, scope, audit.ActionSearch)
}

func (s *DashboardService) run(ctx context.Context, ip string, id models.Identity, scope policy.Scope, action string) (*View, error) {
	ev := s.event(ip, id, action, scope)

	if scope.Anomalous {
		s.logger.Warn(ctx, "unrecognized role, applying user scope",
			"username", id.UserName, "role", id.Role.String(), "id", id.ID)
		ev.Outcome = audit.OutcomeAnomalousRole
		s.audit.Record(ctx, ev)
	}

	rows, err := s.fetch(ctx, id, scope)
	if err != nil {
		s.logger.Error(ctx, "post query failed", "query", scope.Query, "error", err)
		ev.Outcome = audit.OutcomeError
		s.audit.Record(ctx, ev)
		return nil, fmt.Errorf("%w: %s: %v", common.ErrorInternal, scope.Query, err)
	}

	view := &View{Scope: scope}
	if scope.Projection == policy.Limited {
		view.Limited = make([]models.LimitedPost, 0, len(rows))
		for _, r := range rows {
			view.Limited = append(view.Limited, r.Limit())
		}
	} else {
		view.Full = rows
	}

	ev.Outcome = audit.OutcomeCompleted
	ev.Matches = audit.Count(view.Len())
	s.audit.Record(ctx, ev)

	return view, nil
}

func (s *DashboardService) fetch(ctx context.Context, id models.Identity, scope policy.Scope) ([]models.PostRow, error) {
	repo := s.repomanager.Posts(s.db)

	if scope.Searching() {
		return repo.Search(ctx, scope.Pattern(), scope.Rows)
	}

	if scope.Rows.All() {
		return repo.ListJoinedAuthor(ctx)
	}

	// own posts: the author is the caller
	posts, err := repo.ListByAuthor(ctx, scope.Rows.AuthorID())
	if err != nil {
		return nil, err
	}
	rows := make([]models.PostRow, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, models.PostRow{Post: p, AuthorName: id.UserName})
	}
	return rows, nil
}

func (s *DashboardService) event(ip string, id models.Identity, action string, scope policy.Scope) audit.Event {
	return audit.Event{
		IP:       ip,
		UserName: id.UserName,
		Role:     id.Role.String(),
		UserID:   id.ID,
		Action:   action,
		Query:    scope.Query,
	}
}
