package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle, so services can
// use the same code inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
