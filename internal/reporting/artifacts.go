package reporting

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"search-interest-lab/internal/domain"
	"search-interest-lab/internal/observability"
)

// Artifact file names written by WriteArtifacts.
const (
	ReportFileName        = "REPORT.md"
	ComponentsFileName    = "components.csv"
	ForecastFileName      = "forecast.csv"
	ObservedTrendPlotName = "observed_trend.png"
	DecompositionPlotName = "decomposition.png"
	ResidualACFPlotName   = "residual_acf.png"
	ForecastPlotName      = "forecast.png"
)

// artifactACFMaxLag bounds the residual correlogram plot.
const artifactACFMaxLag = 24

// WriteArtifacts renders every artifact for a run into outputDir: the
// markdown report always, and the CSVs and plots only when the run
// completed. Returns the written file paths.
func (g *Generator) WriteArtifacts(ctx context.Context, runID, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	report, err := g.Generate(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	var written []string
	reportPath := filepath.Join(outputDir, ReportFileName)
	if err := os.WriteFile(reportPath, []byte(RenderMarkdown(report)), 0644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	written = append(written, reportPath)
	observability.DefaultMetrics.ReportsGenerated.Inc()

	if report.Status != domain.RunStatusCompleted {
		return written, nil
	}

	components, err := g.componentStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	forecast, err := g.forecastStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load forecast: %w", err)
	}

	componentsPath := filepath.Join(outputDir, ComponentsFileName)
	if err := os.WriteFile(componentsPath, []byte(RenderComponentsCSV(components)), 0644); err != nil {
		return nil, fmt.Errorf("write components csv: %w", err)
	}
	written = append(written, componentsPath)

	forecastPath := filepath.Join(outputDir, ForecastFileName)
	if err := os.WriteFile(forecastPath, []byte(RenderForecastCSV(forecast)), 0644); err != nil {
		return nil, fmt.Errorf("write forecast csv: %w", err)
	}
	written = append(written, forecastPath)

	title := report.Term
	if report.Geo != "" {
		title = fmt.Sprintf("%s (%s)", report.Term, report.Geo)
	}

	var residuals []float64
	for _, p := range components {
		if !math.IsNaN(p.Residual) {
			residuals = append(residuals, p.Residual)
		}
	}

	plots := []struct {
		name   string
		render func(path string) error
	}{
		{ObservedTrendPlotName, func(path string) error {
			return PlotObservedTrend(title, components, path)
		}},
		{DecompositionPlotName, func(path string) error {
			return PlotDecomposition(title, components, path)
		}},
		{ResidualACFPlotName, func(path string) error {
			return PlotResidualACF(title, residuals, artifactACFMaxLag, path)
		}},
		{ForecastPlotName, func(path string) error {
			return PlotForecast(title, components, forecast, path)
		}},
	}

	for _, p := range plots {
		path := filepath.Join(outputDir, p.name)
		if err := p.render(path); err != nil {
			return nil, fmt.Errorf("render %s: %w", p.name, err)
		}
		written = append(written, path)
		observability.DefaultMetrics.PlotsRendered.Inc()
	}

	return written, nil
}
