package entries

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "entries.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE entries (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  message TEXT NOT NULL,
  time_created TEXT NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func insertAll(t *testing.T, r Repository, es ...models.Entry) {
	t.Helper()
	for i := range es {
		require.NoError(t, r.Insert(context.Background(), &es[i]))
	}
}

func TestSQLite_InsertAndExists(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e := models.Restore(uuid.New(), "2024-01-01", "first")

	ok, err := r.ExistsByID(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Insert(ctx, &e))

	ok, err = r.ExistsByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLite_InsertDuplicateFails(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e := models.Restore(uuid.New(), "2024-01-01", "first")
	require.NoError(t, r.Insert(ctx, &e))

	err := r.Insert(ctx, &e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert entry")
}

func TestSQLite_SelectAll_InsertionOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	a := models.Restore(uuid.New(), "2024-01-02", "a")
	b := models.Restore(uuid.New(), "2024-01-01", "b")
	c := models.Restore(uuid.New(), "2024-01-02", "c")
	insertAll(t, r, a, b, c)

	got, err := r.SelectAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{a, b, c}, got)
}

func TestSQLite_SelectAll_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.SelectAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_SelectByDate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	a := models.Restore(uuid.New(), "2024-01-01", "a")
	b := models.Restore(uuid.New(), "2024-01-02", "b")
	c := models.Restore(uuid.New(), "2024-01-01", "c")
	insertAll(t, r, a, b, c)

	got, err := r.SelectByDate(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{a, c}, got)
}

func TestSQLite_SelectByMessage_PlainSubstring(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	a := models.Restore(uuid.New(), "2024-01-01", "fixed the build")
	b := models.Restore(uuid.New(), "2024-01-02", "100% done")
	c := models.Restore(uuid.New(), "2024-01-03", "rebuilt cache")
	insertAll(t, r, a, b, c)

	got, err := r.SelectByMessage(context.Background(), "buil")
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{a, c}, got)

	got, err = r.SelectByMessage(context.Background(), "%")
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{b}, got, "wildcards are literal")
}

func TestSQLite_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	e := models.Restore(uuid.New(), "2024-01-01", "tx")
	require.NoError(t, NewSQLiteRepository(tx).Insert(ctx, &e))
	require.NoError(t, tx.Rollback())

	ok, err := NewSQLiteRepository(db).ExistsByID(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
