package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "readings_rows",
			Help: "Stored reading rows",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM readings")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "readings_age_seconds",
			Help: "Age of the newest indoor reading in seconds",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COALESCE(EXTRACT(EPOCH FROM NOW() - MAX(ts)), 0) FROM readings WHERE source = 'indoor'")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count float64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return count
}
