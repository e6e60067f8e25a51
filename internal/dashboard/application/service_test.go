package application

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	readings "climate-hub/internal/readings/domain"
	"climate-hub/internal/weather"
)

type stubQuery struct {
	series []readings.Reading
	err    error
}

func (s stubQuery) Range(_ context.Context, _ string, _, _ time.Time) ([]readings.Reading, error) {
	return s.series, s.err
}

func (s stubQuery) Latest(_ context.Context, _ string) (*readings.Reading, error) {
	if len(s.series) == 0 {
		return nil, nil
	}
	latest := s.series[len(s.series)-1]
	return &latest, nil
}

func (s stubQuery) Count(_ context.Context) (int64, error) {
	return int64(len(s.series)), nil
}

type stubOutdoor struct {
	observations []weather.Observation
	err          error
}

func (s stubOutdoor) History(_ context.Context, _, _ time.Time) ([]weather.Observation, error) {
	return s.observations, s.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func indoorSeries(t0 time.Time, spacing time.Duration, temps ...float64) []readings.Reading {
	series := make([]readings.Reading, len(temps))
	for i, temp := range temps {
		series[i] = readings.Reading{
			DeviceID:    "sensor-test",
			Source:      readings.SourceIndoor,
			TS:          t0.Add(time.Duration(i) * spacing),
			Temperature: temp,
			Humidity:    50.0,
		}
	}
	return series
}

func TestTimeline_OverlaysOutdoor(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	indoor := indoorSeries(t0, 10*time.Minute, 20.0, 20.5, 21.0, 21.5)
	outdoor := []weather.Observation{
		{TS: t0.Add(5 * time.Minute), Temperature: 5.0, Humidity: 80},
		{TS: t0.Add(25 * time.Minute), Temperature: 6.0, Humidity: 78},
	}

	service, err := NewService(stubQuery{series: indoor}, stubOutdoor{observations: outdoor}, quietLogger(),
		WithClock(func() time.Time { return t0.Add(35 * time.Minute) }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := service.Timeline(context.Background(), t0, t0.Add(time.Hour), 10*time.Minute)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(result.Entries))
	}
	for i, entry := range result.Entries {
		if entry.Outdoor == nil {
			t.Fatalf("entry %d: expected outdoor value", i)
		}
	}
	// Nearest match: grid 12:00 and 12:10 -> 12:05 obs, later points -> 12:25 obs.
	if *result.Entries[0].Outdoor != 5.0 || *result.Entries[3].Outdoor != 6.0 {
		t.Fatalf("unexpected outdoor alignment: %v %v", *result.Entries[0].Outdoor, *result.Entries[3].Outdoor)
	}
	if result.Stale {
		t.Fatal("expected fresh timeline")
	}
}

func TestTimeline_EmptyOutdoorKeepsNil(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(stubQuery{series: indoorSeries(t0, 10*time.Minute, 20.0, 21.0)}, stubOutdoor{}, quietLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	result, err := service.Timeline(context.Background(), t0, t0.Add(time.Hour), 10*time.Minute)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	for i, entry := range result.Entries {
		if entry.Outdoor != nil {
			t.Fatalf("entry %d: expected nil outdoor for empty provider response", i)
		}
	}
}

func TestTimeline_OutdoorFetchFailureDegrades(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(
		stubQuery{series: indoorSeries(t0, 10*time.Minute, 20.0, 21.0)},
		stubOutdoor{err: errors.New("provider down")},
		quietLogger(),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	result, err := service.Timeline(context.Background(), t0, t0.Add(time.Hour), 10*time.Minute)
	if err != nil {
		t.Fatalf("expected degraded timeline, got error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	for i, entry := range result.Entries {
		if entry.Outdoor != nil {
			t.Fatalf("entry %d: expected nil outdoor on fetch failure", i)
		}
	}
}

func TestTimeline_GapFilledWithInterpolatedPoints(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	indoor := []readings.Reading{
		{Source: readings.SourceIndoor, TS: t0, Temperature: 10.0, Humidity: 40.0},
		{Source: readings.SourceIndoor, TS: t0.Add(time.Hour), Temperature: 20.0, Humidity: 60.0},
	}
	service, err := NewService(stubQuery{series: indoor}, nil, quietLogger(),
		WithGapFill(15*time.Minute, 3))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := service.Timeline(context.Background(), t0, t0.Add(2*time.Hour), 10*time.Minute)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	// Two real readings plus +15/+30/+45 interpolated points.
	if len(result.Entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(result.Entries))
	}
	wantTemps := []float64{10.0, 12.5, 15.0, 17.5, 20.0}
	for i, entry := range result.Entries {
		if entry.IndoorTemp != wantTemps[i] {
			t.Fatalf("entry %d: expected indoor temp %v, got %v", i, wantTemps[i], entry.IndoorTemp)
		}
	}
	for i, interpolated := range []bool{false, true, true, true, false} {
		if result.Entries[i].Interpolated != interpolated {
			t.Fatalf("entry %d: expected interpolated=%v", i, interpolated)
		}
	}
}

func TestTimeline_StaleWhenLatestTooOld(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(stubQuery{series: indoorSeries(t0, 10*time.Minute, 20.0)}, nil, quietLogger(),
		WithMaxAge(10*time.Minute),
		WithClock(func() time.Time { return t0.Add(time.Hour) }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	result, err := service.Timeline(context.Background(), t0, t0.Add(2*time.Hour), 10*time.Minute)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if !result.Stale {
		t.Fatal("expected stale timeline")
	}
}

func TestTimeline_EmptyIndoor(t *testing.T) {
	service, err := NewService(stubQuery{}, stubOutdoor{}, quietLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result, err := service.Timeline(context.Background(), t0, t0.Add(time.Hour), 10*time.Minute)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(result.Entries))
	}
	if !result.Stale {
		t.Fatal("expected stale with no data")
	}
}

// Aligning a downsampled grid against the original series must
// reproduce the original values exactly: nearest match against itself.
func TestTimeline_RoundTripThroughDownsampledGrid(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	indoor := indoorSeries(t0, 7*time.Minute, 18.0, 18.5, 19.0, 19.5, 20.0, 20.5, 21.0)

	grid, err := readings.Downsample(indoor, 20*time.Minute)
	if err != nil {
		t.Fatalf("downsample: %v", err)
	}
	outdoor := make([]weather.Observation, len(indoor))
	for i, r := range indoor {
		outdoor[i] = weather.Observation{TS: r.TS, Temperature: r.Temperature}
	}

	service, err := NewService(stubQuery{series: grid}, stubOutdoor{observations: outdoor}, quietLogger(),
		WithGapFill(time.Hour, 1))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	result, err := service.Timeline(context.Background(), t0, t0.Add(time.Hour), 20*time.Minute)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Entries) != len(grid) {
		t.Fatalf("expected %d entries, got %d", len(grid), len(result.Entries))
	}
	for i, entry := range result.Entries {
		if entry.Outdoor == nil || *entry.Outdoor != grid[i].Temperature {
			t.Fatalf("entry %d: expected round-trip value %v, got %v", i, grid[i].Temperature, entry.Outdoor)
		}
	}
}
