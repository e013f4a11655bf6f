package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/audit"
	"github.com/dmitrijs2005/roleboard/internal/server/auth"
	"github.com/dmitrijs2005/roleboard/internal/server/config"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIP = "203.0.113.9"

func newAuthService(t *testing.T, m *memStore, rec audit.Recorder) *AuthService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &config.Config{SecretKey: "k", SessionTTL: time.Hour}
	return NewAuthService(db, m, auth.PlainChecker{}, rec, logging.NopLogger{}, cfg)
}

func TestAuthenticate_Success(t *testing.T) {
	m := newSeededStore()
	rec := &memAudit{}
	s := newAuthService(t, m, rec)

	sess, err := s.Authenticate(context.Background(), testIP, "admin", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, models.Identity{ID: 1, UserName: "admin", Role: models.RoleAdmin}, sess.Identity)
	assert.Len(t, m.sessions, 1)

	assert.Equal(t, []string{"login:attempt", "login:success"}, rec.outcomes())
	last := rec.last()
	assert.Equal(t, testIP, last.IP)
	assert.Equal(t, "admin", last.Role)
	assert.Equal(t, int64(1), last.UserID)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	for _, su := range seedUsers {
		t.Run(su.UserName, func(t *testing.T) {
			m := newSeededStore()
			rec := &memAudit{}
			s := newAuthService(t, m, rec)

			_, err := s.Authenticate(context.Background(), testIP, su.UserName, su.Secret+"x")
			require.ErrorIs(t, err, common.ErrInvalidCredentials)
			assert.Empty(t, m.sessions)

			last := rec.last()
			assert.Equal(t, audit.OutcomeFailure, last.Outcome)
			assert.Equal(t, su.UserName, last.UserName)
			assert.Empty(t, last.Role, "role must not leak on failure")
		})
	}
}

func TestAuthenticate_UnknownUserSameError(t *testing.T) {
	m := newSeededStore()
	rec := &memAudit{}
	s := newAuthService(t, m, rec)

	_, errUnknown := s.Authenticate(context.Background(), testIP, "ghost", "admin123")
	_, errWrong := s.Authenticate(context.Background(), testIP, "admin", "nope")

	require.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, "ghost", rec.events[1].UserName)
	assert.Empty(t, m.sessions)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	m := newSeededStore()
	m.failing = errors.New("connection reset")
	rec := &memAudit{}
	s := newAuthService(t, m, rec)

	_, err := s.Authenticate(context.Background(), testIP, "admin", "admin123")
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, audit.OutcomeError, rec.last().Outcome)
}

func TestAuthenticate_AnomalousRoleIsRecorded(t *testing.T) {
	m := newSeededStore()
	m.users[3].Role = models.Role("superuser")
	rec := &memAudit{}
	s := newAuthService(t, m, rec)

	sess, err := s.Authenticate(context.Background(), testIP, "user2", "user456")
	require.NoError(t, err)
	assert.Equal(t, models.Role("superuser"), sess.Identity.Role)
	assert.Equal(t, []string{"login:attempt", "login:success", "login:anomalous_role"}, rec.outcomes())
}

func TestResolveSession_RoundTrip(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	sess, err := s.Authenticate(context.Background(), testIP, "user1", "user123")
	require.NoError(t, err)

	id, err := s.ResolveSession(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: 3, UserName: "user1", Role: models.RoleUser}, id)
}

func TestResolveSession_Rejects(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	sess, err := s.Authenticate(context.Background(), testIP, "user1", "user123")
	require.NoError(t, err)

	other := newAuthService(t, m, audit.Nop{})
	other.jwtSecret = []byte("other")

	_, err = s.ResolveSession(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = s.ResolveSession(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = other.ResolveSession(context.Background(), sess.Token)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestResolveSession_ExpiredRowIsDeleted(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	sess, err := s.Authenticate(context.Background(), testIP, "user1", "user123")
	require.NoError(t, err)

	// token still valid for a second, row already expired
	for id, row := range m.sessions {
		row.ExpiresAt = time.Now().Add(-time.Second)
		m.sessions[id] = row
	}

	_, err = s.ResolveSession(context.Background(), sess.Token)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	require.ErrorIs(t, err, common.ErrSessionExpired)
	assert.Empty(t, m.sessions)
}

func TestResolveSession_DeletedUser(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	sess, err := s.Authenticate(context.Background(), testIP, "user2", "user456")
	require.NoError(t, err)

	// the user vanished but the session row did not
	m.users = m.users[:3]

	_, err = s.ResolveSession(context.Background(), sess.Token)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestResolveSession_StoreFailure(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	sess, err := s.Authenticate(context.Background(), testIP, "admin", "admin123")
	require.NoError(t, err)

	m.failing = errors.New("db down")
	_, err = s.ResolveSession(context.Background(), sess.Token)
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)
}

func TestTerminateSession(t *testing.T) {
	m := newSeededStore()
	rec := &memAudit{}
	s := newAuthService(t, m, rec)

	sess, err := s.Authenticate(context.Background(), testIP, "mod1", "mod123")
	require.NoError(t, err)

	require.NoError(t, s.TerminateSession(context.Background(), testIP, sess.Identity, sess.Token))
	assert.Empty(t, m.sessions)

	last := rec.last()
	assert.Equal(t, audit.ActionLogout, last.Action)
	assert.Equal(t, audit.OutcomeSuccess, last.Outcome)
	assert.Equal(t, "mod1", last.UserName)

	_, err = s.ResolveSession(context.Background(), sess.Token)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestTerminateSession_BadToken(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	err := s.TerminateSession(context.Background(), testIP, models.Identity{UserName: "x"}, "bad")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestPurgeExpiredSessions(t *testing.T) {
	m := newSeededStore()
	s := newAuthService(t, m, audit.Nop{})

	_, err := s.Authenticate(context.Background(), testIP, "admin", "admin123")
	require.NoError(t, err)
	_, err = s.Authenticate(context.Background(), testIP, "user1", "user123")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	n, err := s.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, m.sessions)
}
