package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/beppofit-auth/internal/dbx"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/repositories/users"
)

// MemoryRepositoryManager serves one shared in-memory users repository
// regardless of the DBTX passed in. Migrations are a no-op.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }
