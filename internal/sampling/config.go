package sampling

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidRange bounds accepted raw sensor values; readings outside the
// range are dropped before they reach the rolling windows.
type ValidRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether value is a finite number within the range.
func (r ValidRange) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Config defines sampler configuration.
type Config struct {
	DeviceID  string `yaml:"device_id"`
	IngestURL string `yaml:"ingest_url"`

	SampleRateSeconds    int `yaml:"sample_rate_seconds"`
	WindowSize           int `yaml:"window_size"`
	ForceIntervalSeconds int `yaml:"force_interval_seconds"`

	TempThreshold     float64 `yaml:"temp_threshold"`
	HumidityThreshold float64 `yaml:"humidity_threshold"`

	TempRange     ValidRange `yaml:"temp_range"`
	HumidityRange ValidRange `yaml:"humidity_range"`
}

// SampleRate returns the delay between sampling ticks.
func (c Config) SampleRate() time.Duration {
	return time.Duration(c.SampleRateSeconds) * time.Second
}

// ForceInterval returns the maximum silence between transmissions.
func (c Config) ForceInterval() time.Duration {
	return time.Duration(c.ForceIntervalSeconds) * time.Second
}

// LoadConfig loads sampler config from yaml or env. Defaults match a
// DHT22-class sensor reporting every few seconds with a fifteen minute
// forced report.
func LoadConfig() (Config, error) {
	cfg := Config{
		DeviceID:             getenvDefault("SENSOR_DEVICE_ID", "sensor-indoor-001"),
		IngestURL:            getenvDefault("SENSOR_INGEST_URL", "http://localhost:8080/api/v1/readings"),
		SampleRateSeconds:    getenvIntDefault("SENSOR_SAMPLE_RATE_SECONDS", 6),
		WindowSize:           getenvIntDefault("SENSOR_WINDOW_SIZE", 10),
		ForceIntervalSeconds: getenvIntDefault("SENSOR_FORCE_INTERVAL_SECONDS", 900),
		TempThreshold:        getenvFloatDefault("SENSOR_TEMP_THRESHOLD", 0.2),
		HumidityThreshold:    getenvFloatDefault("SENSOR_HUMIDITY_THRESHOLD", 0.5),
		TempRange:            ValidRange{Min: -40, Max: 80},
		HumidityRange:        ValidRange{Min: 0, Max: 100},
	}

	if path := os.Getenv("SENSOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DeviceID == "" {
		return errors.New("sampling: device id required")
	}
	if c.IngestURL == "" {
		return errors.New("sampling: ingest url required")
	}
	if c.SampleRateSeconds <= 0 {
		return errors.New("sampling: sample rate must be positive")
	}
	if c.WindowSize <= 0 {
		return errors.New("sampling: window size must be positive")
	}
	if c.TempRange.Min >= c.TempRange.Max || c.HumidityRange.Min >= c.HumidityRange.Max {
		return errors.New("sampling: invalid sensor ranges")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
