// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SeriesIngested  prometheus.Counter
	MonthsIngested  prometheus.Counter
	MonthsImputed   prometheus.Counter
	BelowOneMonths  prometheus.Counter
	IngestionErrors *prometheus.CounterVec

	// Analysis metrics
	AnalysisRunsTotal *prometheus.CounterVec
	AnalysisDuration  *prometheus.HistogramVec
	ModelsFitted      prometheus.Counter
	ModelFitFailures  prometheus.Counter
	SelectedOrderP    prometheus.Gauge
	SelectedOrderQ    prometheus.Gauge

	// Reporting metrics
	ReportsGenerated prometheus.Counter
	PlotsRendered    prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "search_interest_lab"
	}

	return &Metrics{
		SeriesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "series_ingested_total",
			Help:      "Total number of series ingested",
		}),
		MonthsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "months_ingested_total",
			Help:      "Total number of monthly observations ingested",
		}),
		MonthsImputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "months_imputed_total",
			Help:      "Total number of missing months filled by imputation",
		}),
		BelowOneMonths: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "below_one_months_total",
			Help:      "Total number of months carrying a below-one export value",
		}),
		IngestionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by type",
		}, []string{"error_type"}),

		AnalysisRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis phase duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"phase"}),
		ModelsFitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "models_fitted_total",
			Help:      "Total number of candidate residual models fitted",
		}),
		ModelFitFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "model_fit_failures_total",
			Help:      "Total number of candidate model fits that failed",
		}),
		SelectedOrderP: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "selected_order_p",
			Help:      "AR order of the most recently selected residual model",
		}),
		SelectedOrderQ: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "selected_order_q",
			Help:      "MA order of the most recently selected residual model",
		}),

		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		PlotsRendered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "plots_rendered_total",
			Help:      "Total number of plot images rendered",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful analysis run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordIngestion records a completed series ingestion.
func RecordIngestion(months, imputed, belowOne int) {
	DefaultMetrics.SeriesIngested.Inc()
	DefaultMetrics.MonthsIngested.Add(float64(months))
	DefaultMetrics.MonthsImputed.Add(float64(imputed))
	DefaultMetrics.BelowOneMonths.Add(float64(belowOne))
}

// RecordIngestionError records an ingestion error by type.
func RecordIngestionError(errorType string) {
	DefaultMetrics.IngestionErrors.WithLabelValues(errorType).Inc()
}

// RecordAnalysisRun records a finished analysis run.
func RecordAnalysisRun(status string) {
	DefaultMetrics.AnalysisRunsTotal.WithLabelValues(status).Inc()
}

// RecordAnalysisPhase records the duration of one analysis phase.
func RecordAnalysisPhase(phase string, seconds float64) {
	DefaultMetrics.AnalysisDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordModelSearch records the outcome of a grid search.
func RecordModelSearch(fitted, failed, selectedP, selectedQ int) {
	DefaultMetrics.ModelsFitted.Add(float64(fitted))
	DefaultMetrics.ModelFitFailures.Add(float64(failed))
	DefaultMetrics.SelectedOrderP.Set(float64(selectedP))
	DefaultMetrics.SelectedOrderQ.Set(float64(selectedQ))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
