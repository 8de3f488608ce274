package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/dbx"
)

// ForDSN picks PostgreSQL for postgres:// and postgresql:// URLs and SQLite
// for everything else, which is then a file path.
func ForDSN(dsn string) RepositoryManager {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return &PostgresRepositoryManager{}
	}
	return &SQLiteRepositoryManager{}
}

// Open connects to dsn, verifies the connection and migrates the schema.
// Any failure is reported as common.ErrStoreUnavailable.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	m := ForDSN(dsn)

	db, err := dbx.Open(ctx, m.Driver(), dsn)
	if err != nil {
		return nil, nil, err
	}

	if _, ok := m.(*SQLiteRepositoryManager); ok {
		// one writer at a time; also keeps a ":memory:" database on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: migration error: %v", common.ErrStoreUnavailable, err)
	}

	return db, m, nil
}
