package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "climatehub_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	timelineTotal   *prometheus.CounterVec
	timelineLatency *prometheus.HistogramVec

	weatherFetchTotal   *prometheus.CounterVec
	weatherFetchLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total reading ingest requests by result",
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total reading ingest errors by reason",
			},
			[]string{"reason"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Reading ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		timelineTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "timeline_requests_total",
				Help: "Total dashboard timeline builds by result",
			},
			[]string{"result"},
		)
		timelineLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "timeline_latency_seconds",
				Help:    "Dashboard timeline build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		weatherFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "weather_fetch_total",
				Help: "Total outdoor weather fetches by result",
			},
			[]string{"result"},
		)
		weatherFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "weather_fetch_latency_seconds",
				Help:    "Outdoor weather fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total reading export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Reading export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestErrors,
			ingestLatency,
			timelineTotal,
			timelineLatency,
			weatherFetchTotal,
			weatherFetchLatency,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveIngest records ingest request duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncIngestError increments ingest error counter.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// ObserveTimeline records timeline build latency and result.
func ObserveTimeline(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if timelineTotal != nil {
		timelineTotal.WithLabelValues(result).Inc()
	}
	if timelineLatency != nil {
		timelineLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveWeatherFetch records outdoor fetch latency and result.
func ObserveWeatherFetch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if weatherFetchTotal != nil {
		weatherFetchTotal.WithLabelValues(result).Inc()
	}
	if weatherFetchLatency != nil {
		weatherFetchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
