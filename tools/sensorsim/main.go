// Command sensorsim runs the sensor-side sampling loop against a
// climate-hub instance: it simulates a DHT22-class sensor, feeds the
// rolling windows, and transmits gated averages to the ingest endpoint.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"climate-hub/internal/sampling"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := sampling.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	reader := &simulatedSensor{
		temp:      21.0,
		hum:       50.0,
		faultRate: 0.02,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	tx := &httpTransmitter{
		url:      cfg.IngestURL,
		deviceID: cfg.DeviceID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	sampler, err := sampling.NewSampler(reader, tx, cfg, logger)
	if err != nil {
		logger.Fatalf("sampler error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sampler.Run(ctx)
}

// simulatedSensor produces a slow random walk around room conditions
// with occasional fault readings to exercise the drop path.
type simulatedSensor struct {
	temp      float64
	hum       float64
	faultRate float64
	rng       *rand.Rand
}

func (s *simulatedSensor) Read(_ context.Context) (float64, float64, error) {
	if s.rng.Float64() < s.faultRate {
		return 0, 0, errors.New("sensor checksum mismatch")
	}
	s.temp += (s.rng.Float64() - 0.5) * 0.2
	s.hum += (s.rng.Float64() - 0.5) * 0.6
	if s.hum < 0 {
		s.hum = 0
	}
	if s.hum > 100 {
		s.hum = 100
	}
	return s.temp, s.hum, nil
}

// httpTransmitter posts averaged readings to the hub ingest endpoint.
type httpTransmitter struct {
	url      string
	deviceID string
	client   *http.Client
}

func (t *httpTransmitter) Transmit(ctx context.Context, temp, hum float64) error {
	payload, err := json.Marshal(map[string]any{
		"deviceId":    t.deviceID,
		"source":      "indoor",
		"ts":          time.Now().UTC().Unix(),
		"temperature": temp,
		"humidity":    hum,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ingest returned %d", resp.StatusCode)
	}
	return nil
}
