package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/dbx"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/google/uuid"
)

// queries is the dialect-specific SQL of a SQLRepository.
type queries struct {
	insert    string
	exists    string
	selectAll string
	byDate    string
	byMessage string
}

// SQLRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
	q  queries
}

// Insert adds one row. It fails on a duplicate id because of the unique index.
func (r *SQLRepository) Insert(ctx context.Context, e *models.Entry) error {
	_, err := r.db.ExecContext(ctx, r.q.insert, e.ID.String(), e.Message, e.Created)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *SQLRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, r.q.exists, id.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check entry: %w", err)
	}
	return exists, nil
}

func (r *SQLRepository) SelectAll(ctx context.Context) ([]models.Entry, error) {
	return r.selectEntries(ctx, r.q.selectAll)
}

func (r *SQLRepository) SelectByDate(ctx context.Context, date string) ([]models.Entry, error) {
	return r.selectEntries(ctx, r.q.byDate, date)
}

func (r *SQLRepository) SelectByMessage(ctx context.Context, pattern string) ([]models.Entry, error) {
	return r.selectEntries(ctx, r.q.byMessage, pattern)
}

func (r *SQLRepository) selectEntries(ctx context.Context, query string, args ...any) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	var result []models.Entry
	for rows.Next() {
		var id, message, created string
		if err := rows.Scan(&id, &message, &created); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("stored entry id %q: %w", id, err)
		}
		result = append(result, models.Restore(parsed, created, message))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
