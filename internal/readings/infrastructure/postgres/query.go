package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readings "climate-hub/internal/readings/domain"
)

// ReadingQuery is a Postgres query implementation.
type ReadingQuery struct {
	db    *sql.DB
	table string
}

// NewReadingQuery constructs a query with default table name.
func NewReadingQuery(db *sql.DB, opts ...QueryOption) *ReadingQuery {
	query := &ReadingQuery{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(query)
	}
	return query
}

// QueryOption configures the reading query.
type QueryOption func(*ReadingQuery)

// WithQueryTable overrides the default table name for queries.
func WithQueryTable(table string) QueryOption {
	return func(query *ReadingQuery) {
		if query != nil && table != "" {
			query.table = table
		}
	}
}

// Range returns readings for a source within [from, to), ordered
// ascending by timestamp.
func (q *ReadingQuery) Range(ctx context.Context, source string, from, to time.Time) ([]readings.Reading, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("readings query: nil db")
	}
	if source == "" || from.IsZero() || to.IsZero() {
		return nil, errors.New("readings query: invalid arguments")
	}

	query := fmt.Sprintf(`
SELECT id, device_id, source, ts, temperature, humidity
FROM %s
WHERE source = $1
	AND ts >= $2
	AND ts < $3
ORDER BY ts ASC`, q.table)

	rows, err := q.db.QueryContext(ctx, query, source, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readings.Reading
	for rows.Next() {
		var r readings.Reading
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.Source, &r.TS, &r.Temperature, &r.Humidity); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Latest returns the most recent reading for a source, or nil when the
// table holds none.
func (q *ReadingQuery) Latest(ctx context.Context, source string) (*readings.Reading, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("readings query: nil db")
	}
	if source == "" {
		return nil, errors.New("readings query: empty source")
	}

	query := fmt.Sprintf(`
SELECT id, device_id, source, ts, temperature, humidity
FROM %s
WHERE source = $1
ORDER BY ts DESC
LIMIT 1`, q.table)

	var r readings.Reading
	err := q.db.QueryRowContext(ctx, query, source).Scan(&r.ID, &r.DeviceID, &r.Source, &r.TS, &r.Temperature, &r.Humidity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Count returns the total number of stored readings.
func (q *ReadingQuery) Count(ctx context.Context) (int64, error) {
	if q == nil || q.db == nil {
		return 0, errors.New("readings query: nil db")
	}
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, q.table)
	if err := q.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
