// Package timeline holds the display-side series tooling: linear gap
// interpolation and nearest-neighbor alignment of an independently
// sampled series onto a reference grid.
package timeline

import (
	"math"
	"time"
)

// Point is one timestamped value of a series.
type Point struct {
	TS    time.Time
	Value float64
}

// Interpolate generates up to maxPoints evenly spaced points strictly
// between t0 and t1 at step spacing from t0, linearly interpolated
// between v0 and v1 and rounded to one decimal. Generation stops early
// once the next instant would reach or pass t1.
//
// The value denominator is always maxPoints+1, so value spacing assumes
// the full grid even when the time axis truncates the tail. That
// matches the dashboard's historical rendering and must not be
// "corrected" to the generated count.
func Interpolate(t0, t1 time.Time, v0, v1 float64, step time.Duration, maxPoints int) []Point {
	if step <= 0 || maxPoints <= 0 || !t1.After(t0) {
		return nil
	}
	points := make([]Point, 0, maxPoints)
	for k := 1; k <= maxPoints; k++ {
		ts := t0.Add(time.Duration(k) * step)
		if !ts.Before(t1) {
			break
		}
		value := v0 + (v1-v0)*float64(k)/float64(maxPoints+1)
		points = append(points, Point{TS: ts, Value: roundTenth(value)})
	}
	return points
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
