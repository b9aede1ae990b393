// Package models implements the point-forecast strategies competing in a
// forecasting run. The set of strategies is closed: every candidate is one
// of the ID constants below and satisfies the Model interface, so scoring,
// leaderboard assembly and ensemble membership can iterate the set without
// dynamic lookup.
//
// Models operate on the transformed, deseasonalized training series; the
// caller owns mapping predictions back to the original scale.
package models

import "errors"

var (
	ErrNoTrainingData   = errors.New("no training data")
	ErrTooShort         = errors.New("training series too short for this model")
	ErrNotFitted        = errors.New("model has not been fit")
	ErrBadHorizon       = errors.New("horizon must be positive")
	ErrUnstableFit      = errors.New("fit produced unstable coefficients")
	ErrUnknownModel     = errors.New("unknown model id")
	ErrNonFiniteInput   = errors.New("training series contains non-finite values")
	ErrNonFiniteOutput  = errors.New("forecast produced non-finite values")
	ErrInvalidParameter = errors.New("invalid model parameter")
)

// ID identifies one forecast strategy.
type ID string

const (
	IDSeasonalNaive ID = "seasonal_naive"
	IDDrift         ID = "drift"
	IDSES           ID = "ses"
	IDHolt          ID = "holt"
	IDARIMA         ID = "arima"
	IDEnsemble      ID = "ensemble"
)

// IDs lists every fittable strategy in evaluation order. The ensemble is
// excluded since it is combined from fitted candidates rather than fit
// directly.
func IDs() []ID {
	return []ID{IDSeasonalNaive, IDDrift, IDSES, IDHolt, IDARIMA}
}

// Valid reports whether id names a known strategy (including the ensemble).
func (id ID) Valid() bool {
	switch id {
	case IDSeasonalNaive, IDDrift, IDSES, IDHolt, IDARIMA, IDEnsemble:
		return true
	}
	return false
}

// Label returns the human readable name of the strategy.
func (id ID) Label() string {
	switch id {
	case IDSeasonalNaive:
		return "Seasonal naive"
	case IDDrift:
		return "Drift"
	case IDSES:
		return "Simple exponential smoothing"
	case IDHolt:
		return "Holt linear trend"
	case IDARIMA:
		return "ARIMA"
	case IDEnsemble:
		return "Inverse-error ensemble"
	}
	return string(id)
}

// Model is the uniform fit/predict contract shared by all strategies.
type Model interface {
	// ID returns the strategy identifier.
	ID() ID
	// Params returns the fitted or configured parameters for reporting.
	Params() map[string]float64
	// Fit trains the model on a transformed, deseasonalized series.
	Fit(y []float64) error
	// Predict returns horizon point forecasts following the training series.
	Predict(horizon int) ([]float64, error)
}

func validateTraining(y []float64) error {
	if len(y) == 0 {
		return ErrNoTrainingData
	}
	return nil
}
