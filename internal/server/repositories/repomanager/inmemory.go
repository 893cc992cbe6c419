package repomanager

import (
	"context"
	"database/sql"

	"ziplink/internal/dbx"
	"ziplink/internal/server/repositories/analytics"
	"ziplink/internal/server/repositories/claims"
	"ziplink/internal/server/repositories/links"
)

// InMemoryRepositoryManager vends map-backed repositories. The same instances
// are returned on every call so state is shared across the process, matching
// how a single database would behave.
type InMemoryRepositoryManager struct {
	links     *links.InMemoryRepository
	claims    *claims.InMemoryRepository
	analytics *analytics.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		links:     links.NewInMemoryRepository(),
		claims:    claims.NewInMemoryRepository(),
		analytics: analytics.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Links(dbx.DBTX) links.Repository {
	return m.links
}

func (m *InMemoryRepositoryManager) Claims(dbx.DBTX) claims.Repository {
	return m.claims
}

func (m *InMemoryRepositoryManager) Analytics(dbx.DBTX) analytics.Repository {
	return m.analytics
}
