// Package services holds the login, dashboard and administration use cases.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/audit"
	"github.com/dmitrijs2005/roleboard/internal/server/auth"
	"github.com/dmitrijs2005/roleboard/internal/server/config"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Session is an established login: the signed cookie token and the identity
// it resolves to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  models.Identity
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	checker     auth.CredentialChecker
	audit       audit.Recorder
	logger      logging.Logger
	jwtSecret   []byte
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, checker auth.CredentialChecker,
	rec audit.Recorder, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		checker:     checker,
		audit:       rec,
		logger:      logger.With("module", "auth"),
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		now:         time.Now,
	}
}

// Authenticate checks username and secret and, on success, opens a session.
// Unknown users and wrong secrets both yield common.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, ip, username, secret string) (*Session, error) {
	ev := audit.Event{IP: ip, UserName: username, Action: audit.ActionLogin}
	s.record(ctx, ev, audit.OutcomeAttempt)

	user, err := s.repomanager.Users(s.db).GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.record(ctx, ev, audit.OutcomeFailure)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		s.record(ctx, ev, audit.OutcomeError)
		return nil, fmt.Errorf("%w: find user: %v", common.ErrorInternal, err)
	}

	if !s.checker.Match(user.Password, secret) {
		s.record(ctx, ev, audit.OutcomeFailure)
		return nil, common.ErrInvalidCredentials
	}

	ev.Role, ev.UserID = user.Role.String(), user.ID

	session := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}

	token, err := auth.GenerateToken(session.ID, s.jwtSecret, session.ExpiresAt)
	if err != nil {
		s.logger.Error(ctx, "sign session token", "error", err)
		s.record(ctx, ev, audit.OutcomeError)
		return nil, fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}

	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		s.logger.Error(ctx, "create session", "user_id", user.ID, "error", err)
		s.record(ctx, ev, audit.OutcomeError)
		return nil, fmt.Errorf("%w: create session: %v", common.ErrorInternal, err)
	}

	s.record(ctx, ev, audit.OutcomeSuccess)

	if !user.Role.Valid() {
		s.logger.Warn(ctx, "login with unrecognized role", "username", user.UserName, "role", user.Role.String(), "id", user.ID)
		s.record(ctx, ev, audit.OutcomeAnomalousRole)
	}

	return &Session{Token: token, ExpiresAt: session.ExpiresAt, Identity: user.Identity()}, nil
}

// ResolveSession maps a cookie token back to its identity. Any token that
// does not lead to a live session and an existing user yields an error
// matching common.ErrUnauthenticated.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, common.ErrUnauthenticated
	}

	sid, err := auth.GetSessionIDFromToken(token, s.jwtSecret)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}

	repo := s.repomanager.Sessions(s.db)

	session, err := repo.Find(ctx, sid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Identity{}, common.ErrUnauthenticated
		}
		return models.Identity{}, fmt.Errorf("%w: find session: %v", common.ErrorInternal, err)
	}

	if session.Expired(s.now()) {
		if err := repo.Delete(ctx, sid); err != nil {
			s.logger.Warn(ctx, "delete expired session", "session_id", sid.String(), "error", err)
		}
		return models.Identity{}, fmt.Errorf("%w: %w", common.ErrUnauthenticated, common.ErrSessionExpired)
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Identity{}, common.ErrUnauthenticated
		}
		return models.Identity{}, fmt.Errorf("%w: find user: %v", common.ErrorInternal, err)
	}

	return user.Identity(), nil
}

// TerminateSession deletes the session behind token and records the logout
// of id.
func (s *AuthService) TerminateSession(ctx context.Context, ip string, id models.Identity, token string) error {
	ev := audit.Event{IP: ip, UserName: id.UserName, Role: id.Role.String(), UserID: id.ID, Action: audit.ActionLogout}

	sid, err := auth.GetSessionIDFromToken(token, s.jwtSecret)
	if err != nil {
		s.record(ctx, ev, audit.OutcomeFailure)
		return fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}

	if err := s.repomanager.Sessions(s.db).Delete(ctx, sid); err != nil {
		s.logger.Error(ctx, "delete session", "session_id", sid.String(), "error", err)
		s.record(ctx, ev, audit.OutcomeError)
		return fmt.Errorf("%w: delete session: %v", common.ErrorInternal, err)
	}

	s.record(ctx, ev, audit.OutcomeSuccess)
	return nil
}

// PurgeExpiredSessions removes every session past its expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

func (s *AuthService) record(ctx context.Context, ev audit.Event, outcome string) {
	ev.Outcome = outcome
	s.audit.Record(ctx, ev)
}
