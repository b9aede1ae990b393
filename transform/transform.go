// Package transform holds the variance-stabilizing transform and the weekly
// additive seasonal profile applied before model fitting and inverted after
// prediction.
package transform

import (
	"math"

	"github.com/cloudspend/costcast/timeseries"
)

// Method identifies a variance-stabilizing transform.
type Method string

const (
	Auto  Method = "auto"
	None  Method = "none"
	Log1p Method = "log1p"
)

// Thresholds used when Auto picks a transform. A strongly right-skewed or
// high-dispersion non-negative series gets log1p.
const (
	AutoSkewThreshold = 1.25
	AutoCVThreshold   = 1.5
)

// Choose resolves an Auto setting against the series summary. Log1p is
// picked when skewness exceeds 1.25 or the coefficient of variation exceeds
// 1.5, and no negative values exist. Explicit settings pass through, except
// that log1p on a series with negatives degrades to none since the inverse
// would not round-trip.
func Choose(setting Method, ss timeseries.SummaryStats) Method {
	switch setting {
	case Log1p:
		if ss.Min < 0 {
			return None
		}
		return Log1p
	case Auto:
		if ss.Min >= 0 && (ss.Skewness > AutoSkewThreshold || ss.CV > AutoCVThreshold) {
			return Log1p
		}
		return None
	default:
		return None
	}
}

// Apply returns a new slice with the transform applied per element.
func Apply(y []float64, m Method) []float64 {
	out := make([]float64, len(y))
	switch m {
	case Log1p:
		for i, v := range y {
			out[i] = math.Log1p(v)
		}
	default:
		copy(out, y)
	}
	return out
}

// Invert returns a new slice with the transform undone per element. The
// log1p inverse is clamped to be non-negative.
func Invert(y []float64, m Method) []float64 {
	out := make([]float64, len(y))
	switch m {
	case Log1p:
		for i, v := range y {
			inv := math.Expm1(v)
			if inv < 0 {
				inv = 0
			}
			out[i] = inv
		}
	default:
		copy(out, y)
	}
	return out
}
