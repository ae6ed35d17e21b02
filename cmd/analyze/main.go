// Package main runs one analysis over a search-interest series: log
// transform, decomposition, residual model selection, and forecast. The
// series comes from a CSV export, the observation store, or the built-in
// fixtures; report artifacts are written when --output-dir is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/idhash"
	"search-interest-lab/internal/ingestion"
	"search-interest-lab/internal/pipeline"
	"search-interest-lab/internal/reporting"
	"search-interest-lab/internal/storage"
	chstore "search-interest-lab/internal/storage/clickhouse"
	"search-interest-lab/internal/storage/memory"
	"search-interest-lab/internal/storage/migrations"
	pgstore "search-interest-lab/internal/storage/postgres"
)

// analysisStores holds the stores the pipeline writes to.
type analysisStores struct {
	observationStore storage.ObservationStore
	runStore         storage.RunStore
	modelStore       storage.ModelStore
	componentStore   storage.ComponentStore
	forecastStore    storage.ForecastStore
}

func main() {
	csvPath := flag.String("csv", "", "CSV export to ingest before analyzing (otherwise the stored series is used)")
	term := flag.String("term", "", "Search term of the series")
	geo := flag.String("geo", "", "Geo restriction of the series")
	horizon := flag.Int("horizon", pipeline.DefaultHorizon, "Forecast horizon in months")
	outputDir := flag.String("output-dir", "", "Write report artifacts here after a completed run (empty to skip)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	fixtures := flag.Bool("fixtures", false, "Analyze the built-in demonstration series")

	flag.Parse()

	logger := log.New(os.Stdout, "[analyze] ", log.LstdFlags|log.Lshortfile)

	if !*fixtures && *term == "" {
		logger.Fatal("--term is required (or use --fixtures)")
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

	if err := run(ctx, logger, stores, *csvPath, *term, *geo, *outputDir, *horizon, *fixtures); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

// createStores wires PostgreSQL and ClickHouse stores, running migrations
// on both, or an in-memory set.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*analysisStores, func(), error) {
	if useMemory {
		stores := &analysisStores{
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

	stores := &analysisStores{
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

func run(ctx context.Context, logger *log.Logger, stores *analysisStores, csvPath, term, geo, outputDir string, horizon int, fixtures bool) error {
	var obs []domain.Observation

	switch {
	case fixtures:
		term = pipeline.FixtureTerm
		geo = pipeline.FixtureGeo
		loaded, err := pipeline.LoadFixtures(ctx, stores.observationStore)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		obs = loaded

	case csvPath != "":
		seriesID := idhash.ComputeSeriesID(term, geo)
		raw, err := ingestion.ParseFile(csvPath, seriesID)
		if err != nil {
			return fmt.Errorf("parse csv: %w", err)
		}
		obs, err = ingestion.Impute(raw)
		if err != nil {
			return fmt.Errorf("impute series: %w", err)
		}
		obsPtrs := make([]*domain.Observation, len(obs))
		for i := range obs {
			obsPtrs[i] = &obs[i]
		}
		if err := stores.observationStore.InsertBulk(ctx, obsPtrs); err != nil {
			return fmt.Errorf("store observations: %w", err)
		}
		logger.Printf("Ingested %d observations from %s", len(obs), csvPath)

	default:
		seriesID := idhash.ComputeSeriesID(term, geo)
		stored, err := stores.observationStore.GetBySeriesID(ctx, seriesID)
		if err != nil {
			return fmt.Errorf("load observations for %q: %w", term, err)
		}
		if len(stored) == 0 {
			return fmt.Errorf("no observations stored for %q (series %s); run ingest first", term, seriesID)
		}
		obs = make([]domain.Observation, len(stored))
		for i, o := range stored {
			obs[i] = *o
		}
	}

	analyzer := pipeline.NewAnalyzer(
		stores.runStore,
		stores.modelStore,
		stores.componentStore,
		stores.forecastStore,
		logger,
	).WithHorizon(horizon)

	run, err := analyzer.Run(ctx, term, geo, obs)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	switch run.Status {
	case domain.RunStatusCompleted:
		logger.Printf("Run %s completed: ARMA(%d,%d) aic=%.2f, %d month forecast (%s to %s, %d obs)",
			run.RunID, run.SelectedOrder.P, run.SelectedOrder.Q, run.SelectedAIC,
			run.Horizon, run.StartMonth, run.EndMonth, run.NObs)
	case domain.RunStatusInsufficientData:
		logger.Printf("Run %s stored with status %s: series too short or too degraded to analyze",
			run.RunID, run.Status)
	default:
		logger.Printf("Run %s stored with status %s", run.RunID, run.Status)
	}

	if outputDir != "" {
		generator := reporting.NewGenerator(
			stores.runStore,
			stores.modelStore,
			stores.componentStore,
			stores.forecastStore,
			stores.observationStore,
		)
		written, err := generator.WriteArtifacts(ctx, run.RunID, outputDir)
		if err != nil {
			return fmt.Errorf("write artifacts: %w", err)
		}
		for _, path := range written {
			logger.Printf("Wrote %s", path)
		}
	}

	return nil
}
