package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/roleboard/internal/dbx"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/posts"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or transaction
// and owns the schema lifecycle.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	ResetSchema(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Posts(db dbx.DBTX) posts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
