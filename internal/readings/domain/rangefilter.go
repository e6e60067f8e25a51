package readings

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned for a non-positive downsample interval.
var ErrInvalidInterval = errors.New("readings: downsample interval must be positive")

// Downsample returns the subsequence of series whose adjacent retained
// elements are at least minInterval apart. The first element is always
// kept; each later element is kept iff its timestamp is minInterval or
// more past the last kept element. This is a greedy forward scan over
// an ascending series, not a fixed-grid resample, so output order and
// values are exactly those of the input.
func Downsample(series []Reading, minInterval time.Duration) ([]Reading, error) {
	if minInterval <= 0 {
		return nil, ErrInvalidInterval
	}
	if len(series) == 0 {
		return nil, nil
	}
	out := make([]Reading, 0, len(series))
	out = append(out, series[0])
	lastKept := series[0].TS
	for _, r := range series[1:] {
		if r.TS.Sub(lastKept) >= minInterval {
			out = append(out, r)
			lastKept = r.TS
		}
	}
	return out, nil
}
