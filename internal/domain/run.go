package domain

import "time"

// Run status values.
const (
	RunStatusCompleted        = "COMPLETED"
	RunStatusInsufficientData = "INSUFFICIENT_DATA"
	RunStatusFailed           = "FAILED"
)

// AnalysisRun records one execution of the analysis pipeline over a series.
type AnalysisRun struct {
	RunID    string
	SeriesID string
	Term     string // search term the series tracks
	Geo      string // geography code, "" for worldwide

	StartMonth Month
	EndMonth   Month
	NObs       int

	ImputedMonths  int
	BelowOneMonths int

	BoxCoxLambda  float64
	SelectedOrder ARMAOrder
	SelectedAIC   float64
	ModelsTried   int
	Horizon       int

	Status    string
	CreatedAt time.Time
}
