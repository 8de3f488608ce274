package entries

import "github.com/dmitrijs2005/wlog/internal/dbx"

var sqliteQueries = queries{
	insert:    `INSERT INTO entries (id, message, time_created) VALUES (?, ?, ?)`,
	exists:    `SELECT EXISTS (SELECT 1 FROM entries WHERE id = ?)`,
	selectAll: `SELECT id, message, time_created FROM entries ORDER BY seq`,
	byDate:    `SELECT id, message, time_created FROM entries WHERE time_created = ? ORDER BY seq`,
	byMessage: `SELECT id, message, time_created FROM entries WHERE instr(message, ?) > 0 ORDER BY seq`,
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}
