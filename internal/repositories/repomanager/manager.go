package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/wlog/internal/dbx"
	"github.com/dmitrijs2005/wlog/internal/repositories/entries"
)

// RepositoryManager vends repositories of one SQL dialect and migrates its schema.
type RepositoryManager interface {
	Driver() string
	RunMigrations(ctx context.Context, db *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
}
