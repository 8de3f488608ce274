// Package store owns the entry database shared by every connection and
// request. All access goes through one mutex because the storage medium is
// not assumed to be reentrant.
package store

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/wlog/internal/dbx"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/repositories/entries"
	"github.com/dmitrijs2005/wlog/internal/repositories/repomanager"
	"github.com/google/uuid"
)

type Store struct {
	mu    sync.Mutex
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func New(db *sql.DB, repos repomanager.RepositoryManager) *Store {
	return &Store{db: db, repos: repos}
}

// Open connects to dsn and migrates it. See repomanager.Open.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, repos, err := repomanager.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return New(db, repos), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Atomically runs fn while holding the store lock, inside one transaction.
// fn's repository must not be used after fn returns.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, repo entries.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repos.Entries(tx))
	})
}

func (s *Store) Insert(ctx context.Context, e *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Entries(s.db).Insert(ctx, e)
}

func (s *Store) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Entries(s.db).ExistsByID(ctx, id)
}

func (s *Store) SelectAll(ctx context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Entries(s.db).SelectAll(ctx)
}

func (s *Store) SelectByDate(ctx context.Context, date string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Entries(s.db).SelectByDate(ctx, date)
}

func (s *Store) SelectByMessage(ctx context.Context, pattern string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Entries(s.db).SelectByMessage(ctx, pattern)
}
