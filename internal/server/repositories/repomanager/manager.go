package repomanager

import (
	"context"
	"database/sql"

	"ziplink/internal/dbx"
	"ziplink/internal/server/repositories/analytics"
	"ziplink/internal/server/repositories/claims"
	"ziplink/internal/server/repositories/links"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Links(db dbx.DBTX) links.Repository
	Claims(db dbx.DBTX) claims.Repository
	Analytics(db dbx.DBTX) analytics.Repository
}
