package readings

import (
	"context"
	"time"
)

// Source identifies who produced a reading.
const (
	SourceIndoor  = "indoor"
	SourceOutdoor = "outdoor"
)

// Reading is one immutable temperature/humidity sample written to
// storage. Readings are never mutated, only aggregated or filtered.
type Reading struct {
	ID          int64
	DeviceID    string
	Source      string
	TS          time.Time
	Temperature float64
	Humidity    float64
}

// Repository persists readings.
type Repository interface {
	Insert(ctx context.Context, reading Reading) error
	DeleteByID(ctx context.Context, id int64) (bool, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Query loads stored readings. Range results are ordered ascending by
// timestamp; downstream filters and aligners rely on that ordering.
type Query interface {
	Range(ctx context.Context, source string, from, to time.Time) ([]Reading, error)
	Latest(ctx context.Context, source string) (*Reading, error)
	Count(ctx context.Context) (int64, error)
}
