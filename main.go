package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	apihttp "climate-hub/internal/api/http"
	dashboardapp "climate-hub/internal/dashboard/application"
	dashboardhttp "climate-hub/internal/dashboard/interfaces/http"
	"climate-hub/internal/observability/metrics"
	readingspostgres "climate-hub/internal/readings/infrastructure/postgres"
	readingshttp "climate-hub/internal/readings/interfaces/http"
	"climate-hub/internal/weather"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	readingRepo := readingspostgres.NewReadingRepository(db)
	readingQuery := readingspostgres.NewReadingQuery(db)

	readingsHandler, err := readingshttp.NewHandler(readingRepo, readingQuery, cfg.MaxAge, logger)
	if err != nil {
		logger.Fatalf("readings handler error: %v", err)
	}

	var outdoor dashboardapp.OutdoorSource
	if cfg.WeatherBaseURL != "" && cfg.WeatherAPIKey != "" {
		weatherClient, err := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.WeatherLat, cfg.WeatherLon)
		if err != nil {
			logger.Fatalf("weather client error: %v", err)
		}
		outdoor = weatherClient
	} else {
		logger.Printf("weather provider not configured; dashboard serves indoor data only")
	}

	dashboardService, err := dashboardapp.NewService(readingQuery, outdoor, logger,
		dashboardapp.WithMaxAge(cfg.MaxAge),
		dashboardapp.WithGapFill(cfg.GapStep, cfg.GapMaxPoints),
	)
	if err != nil {
		logger.Fatalf("dashboard service error: %v", err)
	}
	dashboardHandler, err := dashboardhttp.NewHandler(dashboardService, logger)
	if err != nil {
		logger.Fatalf("dashboard handler error: %v", err)
	}

	exportHandler, err := apihttp.NewExportHandler(readingQuery, logger)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}

	router := mux.NewRouter()
	readingsHandler.Register(router)
	dashboardHandler.Register(router)
	router.HandleFunc("/api/v1/exports/readings.csv", exportHandler.ServeCSV).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/exports/readings.xlsx", exportHandler.ServeXLSX).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/exports/report.pdf", exportHandler.ServePDF).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handlers.LoggingHandler(os.Stdout, cors(router)),
	}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL    string
	HTTPAddr       string
	MaxAge         time.Duration
	GapStep        time.Duration
	GapMaxPoints   int
	WeatherBaseURL string
	WeatherAPIKey  string
	WeatherLat     float64
	WeatherLon     float64
	CORSOrigins    []string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		MaxAge:         getenvDuration("READINGS_MAX_AGE", 10*time.Minute),
		GapStep:        getenvDuration("DASHBOARD_GAP_STEP", 15*time.Minute),
		GapMaxPoints:   getenvIntDefault("DASHBOARD_GAP_MAX_POINTS", 3),
		WeatherBaseURL: getenvDefault("WEATHER_BASE_URL", ""),
		WeatherAPIKey:  getenvDefault("WEATHER_API_KEY", ""),
		WeatherLat:     getenvFloatDefault("WEATHER_LAT", 0),
		WeatherLon:     getenvFloatDefault("WEATHER_LON", 0),
		CORSOrigins:    splitCSV(getenvDefault("CORS_ORIGINS", "*")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	return cfg
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

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
