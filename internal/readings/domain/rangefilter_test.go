package readings

import (
	"errors"
	"testing"
	"time"
)

func seriesAt(t0 time.Time, offsets ...time.Duration) []Reading {
	series := make([]Reading, len(offsets))
	for i, off := range offsets {
		series[i] = Reading{TS: t0.Add(off), Temperature: float64(i)}
	}
	return series
}

func TestDownsample_GreedyForwardScan(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Spacing is measured against the last kept element, not the last
	// seen one: 0s kept, 40s skipped, 70s kept (70 >= 60 past 0s),
	// 100s skipped (30 past 70s), 140s kept.
	series := seriesAt(t0, 0, 40*time.Second, 70*time.Second, 100*time.Second, 140*time.Second)

	out, err := Downsample(series, time.Minute)
	if err != nil {
		t.Fatalf("downsample: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(out))
	}
	for i, wantIdx := range []int{0, 2, 4} {
		if !out[i].TS.Equal(series[wantIdx].TS) {
			t.Fatalf("entry %d: expected ts of input %d, got %v", i, wantIdx, out[i].TS)
		}
	}
}

func TestDownsample_MonotonicSpacing(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	offsets := make([]time.Duration, 50)
	for i := range offsets {
		offsets[i] = time.Duration(i*17) * time.Second
	}
	out, err := Downsample(seriesAt(t0, offsets...), time.Minute)
	if err != nil {
		t.Fatalf("downsample: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if gap := out[i].TS.Sub(out[i-1].TS); gap < time.Minute {
			t.Fatalf("adjacent gap %s below minimum interval", gap)
		}
	}
}

func TestDownsample_Idempotent(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := seriesAt(t0, 0, 30*time.Second, 90*time.Second, 110*time.Second, 3*time.Minute)

	once, err := Downsample(series, time.Minute)
	if err != nil {
		t.Fatalf("downsample: %v", err)
	}
	twice, err := Downsample(once, time.Minute)
	if err != nil {
		t.Fatalf("downsample twice: %v", err)
	}
	if len(once) != len(twice) {
		t.Fatalf("expected idempotent filter, got %d then %d readings", len(once), len(twice))
	}
	for i := range once {
		if !once[i].TS.Equal(twice[i].TS) {
			t.Fatalf("entry %d changed on second pass", i)
		}
	}
}

func TestDownsample_Degenerate(t *testing.T) {
	out, err := Downsample(nil, time.Minute)
	if err != nil {
		t.Fatalf("downsample empty: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	single, err := Downsample(seriesAt(t0, 0), time.Minute)
	if err != nil {
		t.Fatalf("downsample single: %v", err)
	}
	if len(single) != 1 {
		t.Fatalf("expected single-element output, got %d", len(single))
	}
}

func TestDownsample_RejectsNonPositiveInterval(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, interval := range []time.Duration{0, -time.Second} {
		if _, err := Downsample(seriesAt(t0, 0), interval); !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval for %s, got %v", interval, err)
		}
	}
}
