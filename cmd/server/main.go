// Package main provides a unified service that re-analyzes a stored
// search-interest series on a schedule, regenerates report artifacts,
// and pushes run events to WebSocket subscribers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/idhash"
	"search-interest-lab/internal/live"
	"search-interest-lab/internal/observability"
	"search-interest-lab/internal/pipeline"
	"search-interest-lab/internal/reporting"
	"search-interest-lab/internal/storage"
	chstore "search-interest-lab/internal/storage/clickhouse"
	"search-interest-lab/internal/storage/memory"
	"search-interest-lab/internal/storage/migrations"
	pgstore "search-interest-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	term             string
	geo              string
	horizon          int
	outputDir        string
	analysisInterval time.Duration

	// Stores
	stores *allStores

	// Components
	hub    *live.Hub
	logger *log.Logger

	// State
	mu              sync.Mutex
	started         time.Time
	lastAnalysisRun time.Time
	lastRunID       string
	lastRunStatus   string
	analysisRunning bool
	analysisRuns    int
}

// allStores holds all storage implementations.
type allStores struct {
	observationStore storage.ObservationStore
	runStore         storage.RunStore
	modelStore       storage.ModelStore
	componentStore   storage.ComponentStore
	forecastStore    storage.ForecastStore
}

func main() {
	// Load .env file if present
	loadEnvFile()

	term := flag.String("term", "", "Search term of the stored series to track")
	geo := flag.String("geo", "", "Geo restriction of the series")
	horizon := flag.Int("horizon", pipeline.DefaultHorizon, "Forecast horizon in months")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	fixtures := flag.Bool("fixtures", false, "Load and track the built-in demonstration series")
	outputDir := flag.String("output-dir", "output", "Output directory for report artifacts")
	analysisInterval := flag.Duration("analysis-interval", 24*time.Hour, "Analysis run interval")
	addr := flag.String("addr", ":8080", "HTTP listen address for health, metrics, status, and ws")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*fixtures && *term == "" {
		logger.Fatal("--term is required (or use --fixtures)")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	server := &Server{
		term:             *term,
		geo:              *geo,
		horizon:          *horizon,
		outputDir:        *outputDir,
		analysisInterval: *analysisInterval,
		stores:           stores,
		hub:              live.NewHub(nil, logger),
		logger:           logger,
		started:          time.Now(),
	}
	defer server.hub.Close()

	if *fixtures {
		server.term = pipeline.FixtureTerm
		server.geo = pipeline.FixtureGeo
		if _, err := pipeline.LoadFixtures(ctx, stores.observationStore); err != nil {
			logger.Fatalf("Failed to load fixtures: %v", err)
		}
		logger.Printf("Loaded demonstration series %q", server.term)
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	go server.startHTTPServer(*addr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores wires PostgreSQL and ClickHouse stores, running migrations
// on both, or an in-memory set.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			observationStore: memory.NewObservationStore(),
			runStore:         memory.NewRunStore(),
			modelStore:       memory.NewModelStore(),
			componentStore:   memory.NewComponentStore(),
			forecastStore:    memory.NewForecastStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		observationStore: pgstore.NewObservationStore(pool),
		runStore:         pgstore.NewRunStore(pool),
		modelStore:       pgstore.NewModelStore(pool),
		componentStore:   chstore.NewComponentStore(conn),
		forecastStore:    chstore.NewForecastStore(conn),
	}

	cleanup := func() {
		conn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the analysis scheduler and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Printf("Starting analysis scheduler for %q (interval: %v)...", s.term, s.analysisInterval)

	// Run immediately on start
	s.runAnalysis(ctx)

	ticker := time.NewTicker(s.analysisInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runAnalysis(ctx)
		}
	}
}

// runAnalysis runs one analysis over the tracked series, regenerates
// artifacts, and broadcasts the outcome.
func (s *Server) runAnalysis(ctx context.Context) {
	s.mu.Lock()
	if s.analysisRunning {
		s.mu.Unlock()
		s.logger.Println("Analysis already running, skipping...")
		return
	}
	s.analysisRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.analysisRunning = false
		s.lastAnalysisRun = time.Now()
		s.analysisRuns++
		s.mu.Unlock()
	}()

	s.logger.Printf("Running analysis for %q...", s.term)
	start := time.Now()

	seriesID := idhash.ComputeSeriesID(s.term, s.geo)
	stored, err := s.stores.observationStore.GetBySeriesID(ctx, seriesID)
	if err != nil {
		s.logger.Printf("Load observations error: %v", err)
		return
	}
	if len(stored) == 0 {
		s.logger.Printf("No observations stored for %q (series %s)", s.term, seriesID)
		return
	}
	obs := make([]domain.Observation, len(stored))
	for i, o := range stored {
		obs[i] = *o
	}

	analyzer := pipeline.NewAnalyzer(
		s.stores.runStore,
		s.stores.modelStore,
		s.stores.componentStore,
		s.stores.forecastStore,
		s.logger,
	).WithHorizon(s.horizon)

	run, err := analyzer.Run(ctx, s.term, s.geo, obs)
	if err != nil {
		s.logger.Printf("Analysis error: %v", err)
		if run == nil {
			return
		}
	}

	s.mu.Lock()
	s.lastRunID = run.RunID
	s.lastRunStatus = run.Status
	s.mu.Unlock()

	s.hub.Broadcast(live.NewRunEvent(run))
	s.logger.Printf("Analysis completed in %v: run %s status %s", time.Since(start), run.RunID, run.Status)

	if run.Status == domain.RunStatusCompleted {
		if err := s.writeArtifacts(ctx, run.RunID); err != nil {
			s.logger.Printf("Report generation error: %v", err)
		}
	}
}

// writeArtifacts regenerates the report, CSVs, and plots for a run.
func (s *Server) writeArtifacts(ctx context.Context, runID string) error {
	generator := reporting.NewGenerator(
		s.stores.runStore,
		s.stores.modelStore,
		s.stores.componentStore,
		s.stores.forecastStore,
		s.stores.observationStore,
	)

	written, err := generator.WriteArtifacts(ctx, runID, s.outputDir)
	if err != nil {
		return err
	}

	s.logger.Printf("Wrote %d artifacts to %s/", len(written), s.outputDir)
	return nil
}

// startHTTPServer starts the HTTP server for health/metrics/status/ws.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// WebSocket run events
	mux.Handle("/ws", s.hub)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	Term            string    `json:"term"`
	Geo             string    `json:"geo,omitempty"`
	LastAnalysisRun time.Time `json:"last_analysis_run,omitempty"`
	LastRunID       string    `json:"last_run_id,omitempty"`
	LastRunStatus   string    `json:"last_run_status,omitempty"`
	AnalysisRuns    int       `json:"analysis_runs"`
	AnalysisRunning bool      `json:"analysis_running"`
	Subscribers     int       `json:"subscribers"`
}

// loadEnvFile loads environment variables from a .env file if one exists.
// Variables already set in the environment win over file entries.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.started).String(),
		Term:            s.term,
		Geo:             s.geo,
		LastAnalysisRun: s.lastAnalysisRun,
		LastRunID:       s.lastRunID,
		LastRunStatus:   s.lastRunStatus,
		AnalysisRuns:    s.analysisRuns,
		AnalysisRunning: s.analysisRunning,
		Subscribers:     s.hub.ClientCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
