package apihttp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"climate-hub/internal/observability/metrics"
	readings "climate-hub/internal/readings/domain"
)

const timeLayout = time.RFC3339

// ExportHandler serves reading exports as CSV, XLSX and a PDF summary
// report for the dashboard's download buttons.
type ExportHandler struct {
	query  readings.Query
	logger *log.Logger
}

// NewExportHandler constructs an export handler.
func NewExportHandler(query readings.Query, logger *log.Logger) (*ExportHandler, error) {
	if query == nil {
		return nil, errors.New("export: nil readings query")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ExportHandler{query: query, logger: logger}, nil
}

// ServeCSV handles GET /api/v1/exports/readings.csv.
func (h *ExportHandler) ServeCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	series, ok := h.querySeries(w, r)
	if !ok {
		metrics.ObserveExport("csv", metrics.ResultError, time.Since(start))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"ts", "device_id", "source", "temperature", "humidity"})
	for _, reading := range series {
		_ = writer.Write([]string{
			reading.TS.Format(timeLayout),
			reading.DeviceID,
			reading.Source,
			strconv.FormatFloat(reading.Temperature, 'f', 1, 64),
			strconv.FormatFloat(reading.Humidity, 'f', 1, 64),
		})
	}
	writer.Flush()
	metrics.ObserveExport("csv", metrics.ResultSuccess, time.Since(start))
}

// ServeXLSX handles GET /api/v1/exports/readings.xlsx.
func (h *ExportHandler) ServeXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	series, ok := h.querySeries(w, r)
	if !ok {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		return
	}

	data, err := BuildReadingsXLSX(series)
	if err != nil {
		h.logger.Printf("export xlsx: %v", err)
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.xlsx"`)
	_, _ = w.Write(data)
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(start))
}

// ServePDF handles GET /api/v1/exports/report.pdf.
func (h *ExportHandler) ServePDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	series, ok := h.querySeries(w, r)
	if !ok {
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		return
	}

	data, err := BuildReadingsPDF(series)
	if err != nil {
		h.logger.Printf("export pdf: %v", err)
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="climate-report.pdf"`)
	_, _ = w.Write(data)
	metrics.ObserveExport("pdf", metrics.ResultSuccess, time.Since(start))
}

// querySeries resolves the common export query parameters and loads the
// series; it writes the HTTP error itself and reports ok=false on any
// failure.
func (h *ExportHandler) querySeries(w http.ResponseWriter, r *http.Request) ([]readings.Reading, bool) {
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return nil, false
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = readings.SourceIndoor
	}

	series, err := h.query.Range(r.Context(), source, from, to)
	if err != nil {
		h.logger.Printf("export query: %v", err)
		http.Error(w, "query error", http.StatusInternalServerError)
		return nil, false
	}

	if raw := r.URL.Query().Get("interval"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			http.Error(w, "invalid interval", http.StatusBadRequest)
			return nil, false
		}
		series, err = readings.Downsample(series, interval)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}
	return series, true
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s", key)
	}
	return parsed.UTC(), nil
}
