// Package repomanager selects the account store backend and runs its
// migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/beppofit-auth/internal/dbx"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction
// and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
