package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/dbx"
	"github.com/dmitrijs2005/roleboard/internal/server/audit"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/posts"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore is an in-memory RepositoryManager. It ignores the DBTX it is
// handed; transactions are exercised through sqlmock expectations.
type memStore struct {
	mu       sync.Mutex
	users    []models.User
	posts    []models.Post
	sessions map[uuid.UUID]models.Session
	nextUser int64
	nextPost int64

	// failing makes every repository call return this error.
	failing error

	migrateErr error
	resetErr   error
	migrated   int
	resets     int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[uuid.UUID]models.Session{}}
}

// newSeededStore holds the demo users and posts with ids 1..4 in seed order.
func newSeededStore() *memStore {
	m := newMemStore()
	for _, su := range seedUsers {
		m.nextUser++
		m.users = append(m.users, models.User{
			ID: m.nextUser, UserName: su.UserName, Email: su.Email, Password: su.Secret, Role: su.Role,
		})
	}
	for _, sp := range seedPosts {
		m.nextPost++
		m.posts = append(m.posts, models.Post{
			ID: m.nextPost, Title: sp.Title, Content: sp.Content,
			Created: time.Date(2024, 1, int(m.nextPost), 0, 0, 0, 0, time.UTC), AuthorID: m.userID(sp.Author),
		})
	}
	return m
}

func (m *memStore) userID(name string) int64 {
	for _, u := range m.users {
		if u.UserName == name {
			return u.ID
		}
	}
	return 0
}

func (m *memStore) userName(id int64) string {
	for _, u := range m.users {
		if u.ID == id {
			return u.UserName
		}
	}
	return ""
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error {
	m.migrated++
	return m.migrateErr
}

func (m *memStore) ResetSchema(context.Context, *sql.DB) error {
	m.resets++
	return m.resetErr
}

func (m *memStore) Users(dbx.DBTX) users.Repository       { return memUsers{m} }
func (m *memStore) Posts(dbx.DBTX) posts.Repository       { return memPosts{m} }
func (m *memStore) Sessions(dbx.DBTX) sessions.Repository { return memSessions{m} }

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return nil, r.m.failing
	}
	for _, e := range r.m.users {
		if e.UserName == u.UserName || e.Email == u.Email {
			return nil, fmt.Errorf("%w: %s", common.ErrAlreadyExists, u.UserName)
		}
	}
	r.m.nextUser++
	u.ID = r.m.nextUser
	r.m.users = append(r.m.users, *u)
	return u, nil
}

func (r memUsers) GetUserByUsername(_ context.Context, name string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return nil, r.m.failing
	}
	for _, u := range r.m.users {
		if u.UserName == name {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return nil, r.m.failing
	}
	for _, u := range r.m.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// Delete cascades to posts and sessions like the schema does.
func (r memUsers) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return r.m.failing
	}
	idx := -1
	for i, u := range r.m.users {
		if u.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return common.ErrorNotFound
	}
	r.m.users = append(r.m.users[:idx], r.m.users[idx+1:]...)

	kept := r.m.posts[:0]
	for _, p := range r.m.posts {
		if p.AuthorID != id {
			kept = append(kept, p)
		}
	}
	r.m.posts = kept

	for sid, s := range r.m.sessions {
		if s.UserID == id {
			delete(r.m.sessions, sid)
		}
	}
	return nil
}

func (r memUsers) Count(context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return 0, r.m.failing
	}
	return int64(len(r.m.users)), nil
}

type memPosts struct{ m *memStore }

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return nil, r.m.failing
	}
	if r.m.userName(p.AuthorID) == "" {
		return nil, common.ErrorNotFound
	}
	r.m.nextPost++
	p.ID = r.m.nextPost
	p.Created = time.Now().UTC()
	r.m.posts = append(r.m.posts, *p)
	return p, nil
}

func (r memPosts) filter(keep func(models.Post) bool) ([]models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return nil, r.m.failing
	}
	var out []models.Post
	for _, p := range r.m.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPosts) join(ps []models.Post) []models.PostRow {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rows := make([]models.PostRow, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, models.PostRow{Post: p, AuthorName: r.m.userName(p.AuthorID)})
	}
	return rows
}

func (r memPosts) ListAll(context.Context) ([]models.Post, error) {
	return r.filter(func(models.Post) bool { return true })
}

func (r memPosts) ListByAuthor(_ context.Context, authorID int64) ([]models.Post, error) {
	return r.filter(func(p models.Post) bool { return p.AuthorID == authorID })
}

func (r memPosts) ListJoinedAuthor(ctx context.Context) ([]models.PostRow, error) {
	ps, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return r.join(ps), nil
}

// Search understands only the %term% patterns produced by policy.Scope.
func (r memPosts) Search(_ context.Context, pattern string, scope models.PostScope) ([]models.PostRow, error) {
	term := strings.ToLower(unescapeLike(strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")))
	ps, err := r.filter(func(p models.Post) bool {
		if !scope.All() && p.AuthorID != scope.AuthorID() {
			return false
		}
		return strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Content), term)
	})
	if err != nil {
		return nil, err
	}
	return r.join(ps), nil
}

func unescapeLike(s string) string {
	var b strings.Builder
	escaped := false
	for _, c := range s {
		if c == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(c)
	}
	return b.String()
}

func (r memPosts) Count(ctx context.Context) (int64, error) {
	ps, err := r.ListAll(ctx)
	return int64(len(ps)), err
}

func (r memPosts) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	ps, err := r.ListByAuthor(ctx, authorID)
	return int64(len(ps)), err
}

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, s *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return r.m.failing
	}
	s.CreatedAt = time.Now().UTC()
	r.m.sessions[s.ID] = *s
	return nil
}

func (r memSessions) Find(_ context.Context, id uuid.UUID) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return nil, r.m.failing
	}
	s, ok := r.m.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r memSessions) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return r.m.failing
	}
	delete(r.m.sessions, id)
	return nil
}

func (r memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failing != nil {
		return 0, r.m.failing
	}
	var n int64
	for id, s := range r.m.sessions {
		if s.Expired(now) {
			delete(r.m.sessions, id)
			n++
		}
	}
	return n, nil
}

// memAudit collects recorded events.
type memAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *memAudit) Record(_ context.Context, e audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *memAudit) outcomes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action+":"+e.Outcome)
	}
	return out
}

func (a *memAudit) last() audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}
