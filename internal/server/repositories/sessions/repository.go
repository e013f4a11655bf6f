// Package sessions declares the server-side session store contract and its
// PostgreSQL implementation.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/google/uuid"
)

// Repository persists login sessions.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *models.Session) error

	// Find looks up a session by id. Implementations return
	// common.ErrorNotFound when the session is absent.
	Find(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes every session that expired at or before now
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
