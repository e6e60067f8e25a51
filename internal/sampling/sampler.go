package sampling

import (
	"context"
	"errors"
	"log"
	"time"
)

// SensorReader reads one raw temperature/humidity pair from hardware.
type SensorReader interface {
	Read(ctx context.Context) (temp, hum float64, err error)
}

// Transmitter delivers a pair of rolling averages to the hub. A failed
// transmit is reported but never retried here.
type Transmitter interface {
	Transmit(ctx context.Context, temp, hum float64) error
}

// Sampler drives the read -> push -> average -> gate -> transmit cycle
// on a fixed tick. Everything runs sequentially on one goroutine; a
// slow transmit simply delays the next sample.
type Sampler struct {
	reader SensorReader
	tx     Transmitter
	gate   *Gate
	cfg    Config
	logger *log.Logger

	tempWindow *Window
	humWindow  *Window
	state      State
}

// NewSampler constructs a sampler from config.
func NewSampler(reader SensorReader, tx Transmitter, cfg Config, logger *log.Logger) (*Sampler, error) {
	if reader == nil {
		return nil, errors.New("sampling: nil sensor reader")
	}
	if tx == nil {
		return nil, errors.New("sampling: nil transmitter")
	}
	if logger == nil {
		logger = log.Default()
	}
	gate, err := NewGate(cfg.TempThreshold, cfg.HumidityThreshold, cfg.ForceInterval())
	if err != nil {
		return nil, err
	}
	tempWindow, err := NewWindow(cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	humWindow, err := NewWindow(cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	return &Sampler{
		reader:     reader,
		tx:         tx,
		gate:       gate,
		cfg:        cfg,
		logger:     logger,
		tempWindow: tempWindow,
		humWindow:  humWindow,
	}, nil
}

// Run ticks until the context is cancelled. No failure is fatal: a bad
// read or a failed transmit is logged and the loop continues.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SampleRate())
	defer ticker.Stop()
	s.logger.Printf("sampler: started device=%s rate=%s window=%d", s.cfg.DeviceID, s.cfg.SampleRate(), s.cfg.WindowSize)
	for {
		select {
		case now := <-ticker.C:
			s.Tick(ctx, now.UTC())
		case <-ctx.Done():
			s.logger.Printf("sampler: stopped device=%s", s.cfg.DeviceID)
			return
		}
	}
}

// Tick executes one sampling cycle at the given instant.
func (s *Sampler) Tick(ctx context.Context, now time.Time) {
	temp, hum, err := s.reader.Read(ctx)
	switch {
	case err != nil:
		s.logger.Printf("sampler: read error: %v", err)
	case !s.cfg.TempRange.Contains(temp) || !s.cfg.HumidityRange.Contains(hum):
		// Sensor fault. Dropped readings do not shift the windows.
		s.logger.Printf("sampler: dropped invalid reading temp=%.1f hum=%.1f", temp, hum)
	default:
		s.tempWindow.Push(temp)
		s.humWindow.Push(hum)
	}

	if !s.tempWindow.HasData() {
		return
	}

	avgTemp := s.tempWindow.Average()
	avgHum := s.humWindow.Average()
	decision := s.gate.Evaluate(avgTemp, avgHum, now, s.state)
	if !decision.Send {
		return
	}

	if err := s.tx.Transmit(ctx, avgTemp, avgHum); err != nil {
		s.logger.Printf("sampler: transmit error: %v", err)
	}
	// Advanced on every attempt, success or not: a failed send still
	// resets the force-interval clock.
	s.state.Advance(avgTemp, avgHum, now)
}

// State returns a copy of the current send state.
func (s *Sampler) State() State {
	return s.state
}
