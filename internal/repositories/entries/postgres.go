package entries

import "github.com/dmitrijs2005/wlog/internal/dbx"

var postgresQueries = queries{
	insert:    `INSERT INTO entries (id, message, time_created) VALUES ($1, $2, $3)`,
	exists:    `SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`,
	selectAll: `SELECT id, message, time_created FROM entries ORDER BY seq`,
	byDate:    `SELECT id, message, time_created FROM entries WHERE time_created = $1 ORDER BY seq`,
	byMessage: `SELECT id, message, time_created FROM entries WHERE strpos(message, $1) > 0 ORDER BY seq`,
}

// NewPostgresRepository returns a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries}
}
