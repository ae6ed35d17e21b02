// Package main renders the artifacts of an analysis run: a markdown
// report, component and forecast CSVs, and PNG plots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"search-interest-lab/internal/idhash"
	"search-interest-lab/internal/reporting"
	"search-interest-lab/internal/storage"
	chstore "search-interest-lab/internal/storage/clickhouse"
	"search-interest-lab/internal/storage/memory"
	"search-interest-lab/internal/storage/migrations"
	pgstore "search-interest-lab/internal/storage/postgres"
)

// reportStores holds the stores the generator reads from.
type reportStores struct {
	observationStore storage.ObservationStore
	runStore         storage.RunStore
	modelStore       storage.ModelStore
	componentStore   storage.ComponentStore
	forecastStore    storage.ForecastStore
}

func main() {
	runID := flag.String("run-id", "", "Run to report on (defaults to the latest run for --term)")
	term := flag.String("term", "", "Search term whose latest run to report on")
	geo := flag.String("geo", "", "Geo restriction of the series")
	outputDir := flag.String("output-dir", "output", "Output directory for report artifacts")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags|log.Lshortfile)

	if *runID == "" && *term == "" {
		logger.Fatal("--run-id or --term is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx := context.Background()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if err := run(ctx, logger, stores, *runID, *term, *geo, *outputDir); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

// createStores wires PostgreSQL and ClickHouse stores, running migrations
// on both, or an in-memory set.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*reportStores, func(), error) {
	if useMemory {
		stores := &reportStores{
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

	stores := &reportStores{
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

func run(ctx context.Context, logger *log.Logger, stores *reportStores, runID, term, geo, outputDir string) error {
	if runID == "" {
		seriesID := idhash.ComputeSeriesID(term, geo)
		latest, err := stores.runStore.GetLatest(ctx, seriesID)
		if err != nil {
			return fmt.Errorf("find latest run for %q: %w", term, err)
		}
		runID = latest.RunID
		logger.Printf("Reporting on latest run %s for %q", runID, term)
	}

	generator := reporting.NewGenerator(
		stores.runStore,
		stores.modelStore,
		stores.componentStore,
		stores.forecastStore,
		stores.observationStore,
	)

	written, err := generator.WriteArtifacts(ctx, runID, outputDir)
	if err != nil {
		return err
	}

	for _, path := range written {
		logger.Printf("Wrote %s", path)
	}
	return nil
}
