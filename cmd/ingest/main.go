// Package main loads a monthly search-interest CSV export, fills gaps,
// and stores the cleaned observations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/idhash"
	"search-interest-lab/internal/ingestion"
	"search-interest-lab/internal/observability"
	"search-interest-lab/internal/pipeline"
	"search-interest-lab/internal/storage"
	"search-interest-lab/internal/storage/memory"
	"search-interest-lab/internal/storage/migrations"
	pgstore "search-interest-lab/internal/storage/postgres"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the trends CSV export")
	term := flag.String("term", "", "Search term the export was pulled for")
	geo := flag.String("geo", "", "Geo restriction of the export (empty for worldwide)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	fixtures := flag.Bool("fixtures", false, "Ingest the built-in demonstration series instead of a CSV")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr)
	}

	if !*fixtures {
		if *csvPath == "" {
			logger.Fatal("--csv is required (or use --fixtures)")
		}
		if *term == "" {
			logger.Fatal("--term is required (or use --fixtures)")
		}
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx := context.Background()

	obsStore, cleanup, err := createObservationStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	if err := run(ctx, logger, obsStore, *csvPath, *term, *geo, *fixtures); err != nil {
		observability.RecordIngestionError("ingest")
		logger.Fatalf("Error: %v", err)
	}
}

// createObservationStore wires the observation store, running migrations
// when PostgreSQL is used.
func createObservationStore(ctx context.Context, postgresDSN string, useMemory bool) (storage.ObservationStore, func(), error) {
	if useMemory {
		return memory.NewObservationStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	return pgstore.NewObservationStore(pool), pool.Close, nil
}

func run(ctx context.Context, logger *log.Logger, obsStore storage.ObservationStore, csvPath, term, geo string, fixtures bool) error {
	var (
		raw *ingestion.RawSeries
		err error
	)

	if fixtures {
		term = pipeline.FixtureTerm
		geo = pipeline.FixtureGeo
		seriesID := idhash.ComputeSeriesID(term, geo)
		raw, err = ingestion.Parse(strings.NewReader(pipeline.FixtureCSV()), seriesID)
	} else {
		seriesID := idhash.ComputeSeriesID(term, geo)
		raw, err = ingestion.ParseFile(csvPath, seriesID)
	}
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	logger.Printf("Parsed %d months starting %s (%d gaps, %d below-one)",
		len(raw.Values), raw.Start, raw.GapCount(), raw.BelowOneCount())

	obs, err := ingestion.Impute(raw)
	if err != nil {
		return fmt.Errorf("impute series: %w", err)
	}

	obsPtrs := make([]*domain.Observation, len(obs))
	imputed := 0
	belowOne := 0
	for i := range obs {
		obsPtrs[i] = &obs[i]
		if obs[i].Imputed {
			imputed++
		}
		if obs[i].BelowOne {
			belowOne++
		}
	}

	if err := obsStore.InsertBulk(ctx, obsPtrs); err != nil {
		return fmt.Errorf("store observations: %w", err)
	}
	observability.RecordIngestion(len(obs), imputed, belowOne)

	logger.Printf("Stored %d observations for %q (series %s): %d imputed, %d below-one",
		len(obs), term, raw.SeriesID, imputed, belowOne)
	return nil
}

// serveMetrics exposes Prometheus metrics and a health check.
func serveMetrics(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}
