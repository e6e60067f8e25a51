package application

import (
	"context"
	"errors"
	"log"
	"time"

	"climate-hub/internal/observability/metrics"
	readings "climate-hub/internal/readings/domain"
	"climate-hub/internal/timeline"
	"climate-hub/internal/weather"
)

const labelLayout = "2006-01-02 15:04"

// OutdoorSource supplies the outdoor series overlaid on the dashboard.
type OutdoorSource interface {
	History(ctx context.Context, from, to time.Time) ([]weather.Observation, error)
}

// Entry is one display-ready point on the dashboard timeline. Outdoor
// is nil only when no outdoor data was available for the whole range.
type Entry struct {
	TS             time.Time `json:"ts"`
	Label          string    `json:"label"`
	IndoorTemp     float64   `json:"indoorTemp"`
	IndoorHumidity float64   `json:"indoorHumidity"`
	Outdoor        *float64  `json:"outdoorTemp"`
	Interpolated   bool      `json:"interpolated"`
}

// Timeline is the assembled dashboard view.
type Timeline struct {
	Entries []Entry `json:"entries"`
	Stale   bool    `json:"stale"`
}

// Service builds dashboard timelines: the downsampled indoor series is
// the alignment grid, indoor gaps are bridged by linear interpolation,
// and the outdoor series is resampled onto the grid by nearest match.
type Service struct {
	query   readings.Query
	outdoor OutdoorSource
	logger  *log.Logger
	now     func() time.Time

	maxAge       time.Duration
	gapStep      time.Duration
	maxGapPoints int
}

// Option configures the service.
type Option func(*Service)

// WithMaxAge overrides the staleness cutoff for the newest indoor
// reading.
func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Service) {
		if maxAge > 0 {
			s.maxAge = maxAge
		}
	}
}

// WithGapFill overrides the spacing and cap used when bridging indoor
// gaps with interpolated points.
func WithGapFill(step time.Duration, maxPoints int) Option {
	return func(s *Service) {
		if step > 0 {
			s.gapStep = step
		}
		if maxPoints > 0 {
			s.maxGapPoints = maxPoints
		}
	}
}

// WithClock overrides the staleness clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a dashboard service. The outdoor source may be
// nil; the timeline then carries indoor data only.
func NewService(query readings.Query, outdoor OutdoorSource, logger *log.Logger, opts ...Option) (*Service, error) {
	if query == nil {
		return nil, errors.New("dashboard: nil readings query")
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		query:        query,
		outdoor:      outdoor,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		maxAge:       10 * time.Minute,
		gapStep:      15 * time.Minute,
		maxGapPoints: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Timeline assembles the display timeline for [from, to) downsampled to
// interval spacing. A failing or empty outdoor fetch degrades to nil
// outdoor values; it never fails the timeline.
func (s *Service) Timeline(ctx context.Context, from, to time.Time, interval time.Duration) (Timeline, error) {
	start := time.Now()
	indoor, err := s.query.Range(ctx, readings.SourceIndoor, from, to)
	if err != nil {
		metrics.ObserveTimeline(metrics.ResultError, time.Since(start))
		return Timeline{}, err
	}

	grid, err := readings.Downsample(indoor, interval)
	if err != nil {
		metrics.ObserveTimeline(metrics.ResultError, time.Since(start))
		return Timeline{}, err
	}

	entries := s.buildEntries(grid)
	s.overlayOutdoor(ctx, entries, from, to)

	result := Timeline{Entries: entries, Stale: true}
	if len(indoor) > 0 {
		latest := indoor[len(indoor)-1].TS
		result.Stale = s.now().Sub(latest) > s.maxAge
	}
	metrics.ObserveTimeline(metrics.ResultSuccess, time.Since(start))
	return result, nil
}

// buildEntries converts the grid readings to entries, bridging any gap
// wider than the gap step with interpolated indoor points.
func (s *Service) buildEntries(grid []readings.Reading) []Entry {
	entries := make([]Entry, 0, len(grid))
	for i, reading := range grid {
		if i > 0 {
			prev := grid[i-1]
			if reading.TS.Sub(prev.TS) > s.gapStep {
				temps := timeline.Interpolate(prev.TS, reading.TS, prev.Temperature, reading.Temperature, s.gapStep, s.maxGapPoints)
				hums := timeline.Interpolate(prev.TS, reading.TS, prev.Humidity, reading.Humidity, s.gapStep, s.maxGapPoints)
				for k, p := range temps {
					entry := Entry{
						TS:           p.TS,
						Label:        p.TS.Format(labelLayout),
						IndoorTemp:   p.Value,
						Interpolated: true,
					}
					if k < len(hums) {
						entry.IndoorHumidity = hums[k].Value
					}
					entries = append(entries, entry)
				}
			}
		}
		entries = append(entries, Entry{
			TS:             reading.TS,
			Label:          reading.TS.Format(labelLayout),
			IndoorTemp:     reading.Temperature,
			IndoorHumidity: reading.Humidity,
		})
	}
	return entries
}

// overlayOutdoor aligns the outdoor series onto the entry grid in
// place. Entries keep nil outdoor values when the fetch fails or the
// provider returned nothing.
func (s *Service) overlayOutdoor(ctx context.Context, entries []Entry, from, to time.Time) {
	if s.outdoor == nil || len(entries) == 0 {
		return
	}
	fetchStart := time.Now()
	observations, err := s.outdoor.History(ctx, from, to)
	if err != nil {
		s.logger.Printf("dashboard: outdoor fetch error: %v", err)
		metrics.ObserveWeatherFetch(metrics.ResultError, time.Since(fetchStart))
		return
	}
	metrics.ObserveWeatherFetch(metrics.ResultSuccess, time.Since(fetchStart))

	gridTimes := make([]time.Time, len(entries))
	for i, entry := range entries {
		gridTimes[i] = entry.TS
	}
	secondary := make([]timeline.Point, len(observations))
	for i, obs := range observations {
		secondary[i] = timeline.Point{TS: obs.TS, Value: obs.Temperature}
	}
	aligned := timeline.Align(gridTimes, secondary)
	for i := range entries {
		entries[i].Outdoor = aligned[i]
	}
}
