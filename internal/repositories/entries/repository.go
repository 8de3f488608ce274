package entries

import (
	"context"

	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/google/uuid"
)

// Repository describes the storage operations needed by the merge engine,
// the transports and the CLI.
type Repository interface {
	// Insert stores e. Duplicate ids are the caller's responsibility.
	Insert(ctx context.Context, e *models.Entry) error

	// ExistsByID reports whether an entry with id is stored.
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// SelectAll returns every entry in insertion order.
	SelectAll(ctx context.Context) ([]models.Entry, error)

	// SelectByDate returns the entries created on date (YYYY-MM-DD).
	SelectByDate(ctx context.Context, date string) ([]models.Entry, error)

	// SelectByMessage returns entries whose message contains pattern as a
	// plain substring.
	SelectByMessage(ctx context.Context, pattern string) ([]models.Entry, error)
}
