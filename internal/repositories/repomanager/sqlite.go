package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/wlog/internal/dbx"
	"github.com/dmitrijs2005/wlog/internal/migrations"
	"github.com/dmitrijs2005/wlog/internal/repositories/entries"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager backs the local log file.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Driver() string { return "sqlite" }

func (m *SQLiteRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return gooseUp(ctx, goose.DialectSQLite3, db, migrations.SQLite())
}
