// Package merge implements the one rule every sync transport relies on:
// an incoming entry is stored only if its id has never been seen.
//
// Message and date are never compared. Two entries with the same id are the
// same entry even if their text differs; the first one stored wins.
package merge

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/repositories/entries"
)

// Store runs fn as one critical section against the entry repository.
type Store interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, repo entries.Repository) error) error
}

// Merge inserts e unless an entry with the same id exists. It reports
// whether an insert happened.
func Merge(ctx context.Context, s Store, e models.Entry) (bool, error) {
	var inserted bool

	err := s.Atomically(ctx, func(ctx context.Context, repo entries.Repository) error {
		exists, err := repo.ExistsByID(ctx, e.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := repo.Insert(ctx, &e); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("merge %s: %w", e.ID, err)
	}

	return inserted, nil
}

// MergeAll merges es in order and returns how many were new. It stops at the
// first store error.
func MergeAll(ctx context.Context, s Store, es []models.Entry) (int, error) {
	n := 0
	for _, e := range es {
		ok, err := Merge(ctx, s, e)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}
