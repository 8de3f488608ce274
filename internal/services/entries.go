// Package services holds the entry operations shared by the line protocol,
// the HTTP and gRPC endpoints and the CLI.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/merge"
	"github.com/dmitrijs2005/wlog/internal/models"
)

// Store is the entry store as seen by the service. *store.Store satisfies it.
type Store interface {
	merge.Store
	Insert(ctx context.Context, e *models.Entry) error
	SelectAll(ctx context.Context) ([]models.Entry, error)
	SelectByDate(ctx context.Context, date string) ([]models.Entry, error)
	SelectByMessage(ctx context.Context, pattern string) ([]models.Entry, error)
}

type EntryService struct {
	store Store
	now   models.Clock
}

func NewEntryService(store Store, now models.Clock) *EntryService {
	if now == nil {
		now = models.SystemClock
	}
	return &EntryService{store: store, now: now}
}

// Today is the current local date as YYYY-MM-DD.
func (s *EntryService) Today() string {
	return models.Today(s.now())
}

// Log stores a new entry for today. It never deduplicates.
func (s *EntryService) Log(ctx context.Context, message string) (models.Entry, error) {
	return s.insert(ctx, models.NewEntry(message, s.now()))
}

// LogOn stores a new entry for an explicit date.
func (s *EntryService) LogOn(ctx context.Context, date, message string) (models.Entry, error) {
	if !models.ValidDate(date) {
		return models.Entry{}, fmt.Errorf("%w: invalid date %q", common.ErrMalformedEntry, date)
	}
	return s.insert(ctx, models.NewEntryOn(date, message))
}

func (s *EntryService) insert(ctx context.Context, e models.Entry) (models.Entry, error) {
	if err := s.store.Insert(ctx, &e); err != nil {
		return models.Entry{}, err
	}
	return e, nil
}

func (s *EntryService) All(ctx context.Context) ([]models.Entry, error) {
	return s.store.SelectAll(ctx)
}

func (s *EntryService) ByDate(ctx context.Context, date string) ([]models.Entry, error) {
	return s.store.SelectByDate(ctx, date)
}

func (s *EntryService) Search(ctx context.Context, pattern string) ([]models.Entry, error) {
	return s.store.SelectByMessage(ctx, pattern)
}

// Import merges one entry received from a peer.
func (s *EntryService) Import(ctx context.Context, e models.Entry) (bool, error) {
	return merge.Merge(ctx, s.store, e)
}

// ImportAll merges es in order and returns how many were new.
func (s *EntryService) ImportAll(ctx context.Context, es []models.Entry) (int, error) {
	return merge.MergeAll(ctx, s.store, es)
}
