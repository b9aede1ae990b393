package costcast

import (
	"io"

	"github.com/cloudspend/costcast/anomaly"
	"github.com/cloudspend/costcast/backtest"
	"github.com/cloudspend/costcast/diagnostics"
	"github.com/cloudspend/costcast/interval"
	"github.com/cloudspend/costcast/models"
	"github.com/cloudspend/costcast/transform"
	"github.com/goccy/go-json"
)

// SelectedModel describes the winning candidate.
type SelectedModel struct {
	ID     models.ID          `json:"id"`
	Label  string             `json:"label"`
	Params map[string]float64 `json:"params"`
	// Forced reports that the caller named this model rather than the
	// backtest picking it.
	Forced bool `json:"forced,omitempty"`
}

// TransformInfo echoes the transform decision.
type TransformInfo struct {
	Setting transform.Method `json:"setting"`
	Method  transform.Method `json:"method"`
}

// BacktestRecord is the holdout evaluation of the winning candidate.
type BacktestRecord struct {
	Window    int              `json:"window"`
	Dates     []string         `json:"dates"`
	Actual    []float64        `json:"actual"`
	Predicted []float64        `json:"predicted"`
	Metrics   backtest.Metrics `json:"metrics"`
	Coverage  float64          `json:"coverage"`
}

// Results is the complete output of one forecasting invocation. It is
// immutable once produced and safe to cache by an input fingerprint.
type Results struct {
	HistoryDates  []string  `json:"historyDates"`
	HistoryValues []float64 `json:"historyValues"`
	MissingDays   int       `json:"missingDays"`

	SelectedModel SelectedModel `json:"selectedModel"`
	ForecastDates []string      `json:"forecastDates"`
	Forecast      []float64     `json:"forecast"`
	CILower       []float64     `json:"ciLower"`
	CIUpper       []float64     `json:"ciUpper"`

	Sigma     float64       `json:"sigma"`
	Interval  interval.Spec `json:"interval"`
	Transform TransformInfo `json:"transform"`

	Backtest  BacktestRecord     `json:"backtest"`
	Anomalies []anomaly.Anomaly  `json:"anomalies"`
	Notes     []string           `json:"notes"`
	Analysis  diagnostics.Bundle `json:"analysis"`

	// ModelLeaderboard lists every candidate sorted ascending by composite
	// score; the selected model is first unless the caller forced one.
	ModelLeaderboard []backtest.Candidate `json:"modelLeaderboard"`
}

// WriteJSON streams the results as JSON.
func (r *Results) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// MarshalBinary implements encoding.BinaryMarshaler via JSON so results
// can be dropped into caches and queues directly.
func (r *Results) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}
