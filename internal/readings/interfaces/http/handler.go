package http

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"climate-hub/internal/observability/metrics"
	readings "climate-hub/internal/readings/domain"
)

const timeLayout = time.RFC3339

// Handler serves the readings CRUD API: ingest, current, range and
// delete. It is also the transmit target of the sensor-side sampler.
type Handler struct {
	repo   readings.Repository
	query  readings.Query
	maxAge time.Duration
	now    func() time.Time
	logger *log.Logger
}

// NewHandler constructs a readings handler. maxAge bounds how old the
// latest indoor reading may be before the current view is flagged
// stale.
func NewHandler(repo readings.Repository, query readings.Query, maxAge time.Duration, logger *log.Logger) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("readings http: nil repository")
	}
	if query == nil {
		return nil, errors.New("readings http: nil query")
	}
	if maxAge <= 0 {
		return nil, errors.New("readings http: max age must be positive")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		repo:   repo,
		query:  query,
		maxAge: maxAge,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}, nil
}

// Register attaches the readings routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/readings", h.handleIngest).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/readings", h.handleRange).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/readings/current", h.handleCurrent).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/readings/purge", h.handlePurge).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/readings/{id:[0-9]+}", h.handleDelete).Methods(http.MethodDelete)
}

type ingestRequest struct {
	DeviceID    string   `json:"deviceId"`
	Source      string   `json:"source"`
	TS          int64    `json:"ts"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func (r ingestRequest) toReading(now time.Time) (readings.Reading, error) {
	if r.DeviceID == "" {
		return readings.Reading{}, errors.New("missing deviceId")
	}
	source := r.Source
	if source == "" {
		source = readings.SourceIndoor
	}
	if source != readings.SourceIndoor && source != readings.SourceOutdoor {
		return readings.Reading{}, errors.New("unknown source")
	}
	if r.Temperature == nil || r.Humidity == nil {
		return readings.Reading{}, errors.New("missing temperature/humidity")
	}
	if !isFinite(*r.Temperature) || !isFinite(*r.Humidity) {
		return readings.Reading{}, errors.New("non-finite temperature/humidity")
	}
	ts := now
	if r.TS != 0 {
		parsed, err := parseTimestamp(r.TS)
		if err != nil {
			return readings.Reading{}, err
		}
		ts = parsed
	}
	return readings.Reading{
		DeviceID:    r.DeviceID,
		Source:      source,
		TS:          ts,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
	}, nil
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Printf("readings ingest: decode error: %v", err)
		metrics.IncIngestError("decode")
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reading, err := req.toReading(h.now())
	if err != nil {
		h.logger.Printf("readings ingest: invalid payload: %v", err)
		metrics.IncIngestError("payload")
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.repo.Insert(r.Context(), reading); err != nil {
		h.logger.Printf("readings ingest: insert error: %v", err)
		metrics.IncIngestError("insert")
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		http.Error(w, "insert error", http.StatusInternalServerError)
		return
	}

	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"stored": true, "ts": reading.TS.Format(timeLayout)})
}

type readingResponse struct {
	ID          int64   `json:"id"`
	DeviceID    string  `json:"deviceId"`
	Source      string  `json:"source"`
	TS          string  `json:"ts"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

func toResponse(r readings.Reading) readingResponse {
	return readingResponse{
		ID:          r.ID,
		DeviceID:    r.DeviceID,
		Source:      r.Source,
		TS:          r.TS.Format(timeLayout),
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
	}
}

func (h *Handler) handleRange(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeQuery(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = readings.SourceIndoor
	}

	series, err := h.query.Range(r.Context(), source, from, to)
	if err != nil {
		h.logger.Printf("readings range: query error: %v", err)
		http.Error(w, "query error", http.StatusInternalServerError)
		return
	}

	if raw := r.URL.Query().Get("interval"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			http.Error(w, "invalid interval", http.StatusBadRequest)
			return
		}
		series, err = readings.Downsample(series, interval)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	resp := make([]readingResponse, 0, len(series))
	for _, reading := range series {
		resp = append(resp, toResponse(reading))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type currentResponse struct {
	Reading *readingResponse `json:"reading"`
	Stale   bool             `json:"stale"`
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = readings.SourceIndoor
	}
	latest, err := h.query.Latest(r.Context(), source)
	if err != nil {
		h.logger.Printf("readings current: query error: %v", err)
		http.Error(w, "query error", http.StatusInternalServerError)
		return
	}

	resp := currentResponse{Stale: true}
	if latest != nil {
		converted := toResponse(*latest)
		resp.Reading = &converted
		resp.Stale = h.now().Sub(latest.TS) > h.maxAge
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	ok, err := h.repo.DeleteByID(r.Context(), id)
	if err != nil {
		h.logger.Printf("readings delete: %v", err)
		http.Error(w, "delete error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	before, err := parseTimeQuery(r, "before")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	purged, err := h.repo.PurgeBefore(r.Context(), before)
	if err != nil {
		h.logger.Printf("readings purge: %v", err)
		http.Error(w, "purge error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"purged": purged})
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + key)
	}
	return parsed.UTC(), nil
}

func parseTimestamp(value int64) (time.Time, error) {
	if value <= 0 {
		return time.Time{}, errors.New("invalid ts")
	}
	// Accept milliseconds or seconds.
	if value > 1_000_000_000_000 {
		return time.UnixMilli(value).UTC(), nil
	}
	return time.Unix(value, 0).UTC(), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
