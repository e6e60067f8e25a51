package timeline

import "time"

// Align resamples a secondary series onto the grid by nearest-neighbor
// matching: each grid instant takes the value of the secondary point
// with the smallest absolute time distance, ties going to the earliest
// secondary index. A fill pass then forward-propagates values over any
// unmatched entries and backward-propagates over leading ones, so the
// result contains nil only when secondary is entirely empty.
//
// Values are copied, never blended: even a far-away nearest point wins.
// Staleness indication is a presentation concern handled by the caller.
func Align(grid []time.Time, secondary []Point) []*float64 {
	out := make([]*float64, len(grid))
	if len(secondary) == 0 {
		return out
	}
	for i, ts := range grid {
		if idx := nearest(secondary, ts); idx >= 0 {
			v := secondary[idx].Value
			out[i] = &v
		}
	}
	fill(out)
	return out
}

// nearest returns the index of the secondary point closest in time to
// target, or -1 for an empty series. Linear scan with strict-less
// comparison keeps the earliest index on ties.
func nearest(series []Point, target time.Time) int {
	best := -1
	var bestDiff time.Duration
	for i, p := range series {
		diff := p.TS.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return best
}

// fill forward-fills each nil with the nearest preceding value, then
// backward-fills the remaining leading nils.
func fill(values []*float64) {
	var last *float64
	for i, v := range values {
		if v != nil {
			last = v
		} else if last != nil {
			copied := *last
			values[i] = &copied
		}
	}
	var next *float64
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			next = values[i]
		} else if next != nil {
			copied := *next
			values[i] = &copied
		}
	}
}
