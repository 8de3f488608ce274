package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/repositories/entries"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "wlog.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := models.NewEntryOn("2024-01-01", "first task")
	b := models.NewEntryOn("2024-01-02", "second task")
	require.NoError(t, s.Insert(ctx, &a))
	require.NoError(t, s.Insert(ctx, &b))

	all, err := s.SelectAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{a, b}, all)

	day, err := s.SelectByDate(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{b}, day)

	found, err := s.SelectByMessage(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{a}, found)

	ok, err := s.ExistsByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ExistsByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_AtomicallyRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	boom := errors.New("boom")

	e := models.NewEntryOn("2024-01-01", "discarded")
	err := s.Atomically(ctx, func(ctx context.Context, repo entries.Repository) error {
		require.NoError(t, repo.Insert(ctx, &e))
		return boom
	})
	require.ErrorIs(t, err, boom)

	ok, err := s.ExistsByID(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_AtomicallySerializes(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	const workers = 8
	var (
		wg     sync.WaitGroup
		inside int
		peak   int
		mu     sync.Mutex
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Atomically(ctx, func(ctx context.Context, repo entries.Repository) error {
				mu.Lock()
				inside++
				if inside > peak {
					peak = inside
				}
				mu.Unlock()

				e := models.NewEntryOn("2024-01-01", "x")
				err := repo.Insert(ctx, &e)

				mu.Lock()
				inside--
				mu.Unlock()
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
	all, err := s.SelectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, workers)
}

func TestOpen_Unavailable(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "wlog.sqlite"))
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}
