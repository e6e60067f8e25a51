package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readings "climate-hub/internal/readings/domain"
)

const defaultReadingsTable = "readings"

// ReadingRepository is a Postgres implementation for reading persistence.
type ReadingRepository struct {
	db    *sql.DB
	table string
}

// NewReadingRepository constructs a repository with default table name.
func NewReadingRepository(db *sql.DB, opts ...RepositoryOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReadingRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Insert upserts one reading keyed by (device_id, ts). A re-sent sample
// for the same instant overwrites the stored values.
func (r *ReadingRepository) Insert(ctx context.Context, reading readings.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("readings repo: nil db")
	}
	if reading.DeviceID == "" || reading.Source == "" || reading.TS.IsZero() {
		return errors.New("readings repo: invalid reading")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	device_id,
	source,
	ts,
	temperature,
	humidity
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (device_id, ts)
DO UPDATE SET
	temperature = EXCLUDED.temperature,
	humidity = EXCLUDED.humidity,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		reading.DeviceID,
		reading.Source,
		reading.TS,
		reading.Temperature,
		reading.Humidity,
	)
	return err
}

// DeleteByID removes one reading; reports whether a row matched.
func (r *ReadingRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("readings repo: nil db")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// PurgeBefore removes readings strictly older than cutoff and returns
// the number of rows dropped.
func (r *ReadingRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("readings repo: nil db")
	}
	if cutoff.IsZero() {
		return 0, errors.New("readings repo: zero cutoff")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE ts < $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
