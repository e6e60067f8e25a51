package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"climate-hub/internal/dashboard/application"
)

// Handler serves the dashboard timeline API.
type Handler struct {
	service *application.Service
	logger  *log.Logger
}

// NewHandler constructs a dashboard handler.
func NewHandler(service *application.Service, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("dashboard http: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}, nil
}

// Register attaches the dashboard routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/dashboard/timeline", h.handleTimeline).Methods(http.MethodGet)
}

// handleTimeline serves GET /api/v1/dashboard/timeline?hours=&interval=.
func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 24*31 {
			http.Error(w, "invalid hours", http.StatusBadRequest)
			return
		}
		hours = parsed
	}
	interval := 10 * time.Minute
	if raw := r.URL.Query().Get("interval"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid interval", http.StatusBadRequest)
			return
		}
		interval = parsed
	}

	to := time.Now().UTC()
	from := to.Add(-time.Duration(hours) * time.Hour)
	result, err := h.service.Timeline(r.Context(), from, to, interval)
	if err != nil {
		h.logger.Printf("dashboard timeline: %v", err)
		http.Error(w, "timeline error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
