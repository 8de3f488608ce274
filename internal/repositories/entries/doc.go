// Package entries provides the persistence layer for log entries.
//
// # Overview
//
// Repository is the narrow storage contract the sync core relies on: insert,
// existence check by id, and three queries. SQLRepository implements it for
// SQLite (the local log) and PostgreSQL (a shared remote log) over a
// dbx.DBTX, so the same code runs against *sql.DB or inside a *sql.Tx.
//
// # Ordering
//
// Every table row carries an auto-incremented seq column; all queries return
// entries in insertion order.
//
// # Concurrency
//
// Repositories do not serialise check-then-insert sequences themselves. The
// store package wraps them in a mutex and a transaction for that.
//
// Typical Usage
//
//	repo := entries.NewSQLiteRepository(db)
//	_ = repo.Insert(ctx, &entry)
//	ok, _ := repo.ExistsByID(ctx, entry.ID)
//	day, _ := repo.SelectByDate(ctx, "2024-01-01")
package entries
