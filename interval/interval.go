// Package interval derives prediction interval bounds from backtest
// residuals of the chosen candidate, either symmetric normal bands or
// empirical quantile offsets when the residual distribution is clearly
// non-normal.
package interval

import (
	"errors"
	"math"

	"github.com/cloudspend/costcast/stats"
)

var (
	ErrNoResiduals   = errors.New("no residuals to derive an interval from")
	ErrBadConfidence = errors.New("confidence must be in (0, 1)")
)

// Method identifies how interval offsets are derived.
type Method string

const (
	Auto      Method = "auto"
	Normal    Method = "normal"
	Empirical Method = "empirical"
)

// Auto-selection thresholds: the empirical method kicks in when the
// Jarque-Bera statistic exceeds the 5% chi-squared critical value or the
// residual shape is clearly asymmetric or heavy-tailed.
const (
	JarqueBeraThreshold = 5.99
	SkewThreshold       = 1.0
	KurtThreshold       = 1.0

	// minEmpiricalResiduals is the smallest residual set from which
	// quantile offsets are trusted.
	minEmpiricalResiduals = 5
)

// Quantiles are the empirical residual offsets around a point forecast;
// both are zero for the normal method.
type Quantiles struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Spec describes the derived interval for one forecasting run.
type Spec struct {
	Method      Method    `json:"method"`
	Sigma       float64   `json:"sigma"`
	RobustSigma float64   `json:"robustSigma"`
	Quantiles   Quantiles `json:"quantiles"`
	Z           float64   `json:"z"`
	// Scale is the spread estimate actually used: max(Sigma, RobustSigma).
	Scale float64 `json:"scale"`
}

// New derives an interval Spec from the chosen candidate's backtest
// residuals (actual minus predicted, original scale). An Auto setting
// prefers the empirical method whenever the residuals look non-normal;
// if too few residuals exist for stable quantiles it falls back to normal.
// The returned note describes an auto decision and is empty otherwise.
func New(residuals []float64, setting Method, confidence float64) (Spec, string, error) {
	if len(residuals) == 0 {
		return Spec{}, "", ErrNoResiduals
	}
	if confidence <= 0 || confidence >= 1 {
		return Spec{}, "", ErrBadConfidence
	}

	spec := Spec{
		Sigma:       stats.StdDev(residuals),
		RobustSigma: stats.RobustScale(residuals),
		Z:           stats.NormalQuantile(0.5 + confidence/2.0),
	}
	spec.Scale = math.Max(spec.Sigma, spec.RobustSigma)

	var note string
	method := setting
	if setting == Auto {
		jb := stats.JarqueBera(residuals)
		skew := stats.Skewness(residuals)
		kurt := stats.ExcessKurtosis(residuals)
		if jb > JarqueBeraThreshold || math.Abs(skew) > SkewThreshold || math.Abs(kurt) > KurtThreshold {
			method = Empirical
			note = "interval: residuals look non-normal, using empirical quantiles"
		} else {
			method = Normal
			note = "interval: residuals look normal, using symmetric z-bands"
		}
	}
	if method == Empirical && len(residuals) < minEmpiricalResiduals {
		method = Normal
		note = "interval: too few residuals for empirical quantiles, using normal"
	}

	spec.Method = method
	if method == Empirical {
		alpha := 1.0 - confidence
		lo, err := stats.Quantile(residuals, alpha/2.0)
		if err != nil {
			return Spec{}, "", err
		}
		hi, err := stats.Quantile(residuals, 1.0-alpha/2.0)
		if err != nil {
			return Spec{}, "", err
		}
		// offsets must straddle zero so the interval always contains the
		// point forecast
		spec.Quantiles.Low = math.Min(lo, 0)
		spec.Quantiles.High = math.Max(hi, 0)
	}
	return spec, note, nil
}

// Offsets returns the lower and upper half-widths applied around a point
// forecast. The lower offset is non-positive, the upper non-negative.
func (s Spec) Offsets() (lower, upper float64) {
	if s.Method == Empirical {
		return s.Quantiles.Low, s.Quantiles.High
	}
	half := s.Z * s.Scale
	return -half, half
}

// Bounds applies the interval offsets to a forecast, clamping the lower
// bound to be non-negative since the domain never goes below zero.
func (s Spec) Bounds(forecast []float64) (lower, upper []float64) {
	lo, hi := s.Offsets()
	lower = make([]float64, len(forecast))
	upper = make([]float64, len(forecast))
	for i, v := range forecast {
		l := v + lo
		if l < 0 {
			l = 0
		}
		lower[i] = l
		upper[i] = v + hi
	}
	return lower, upper
}

// Coverage returns the fraction of backtest points whose actual value falls
// within the interval offsets applied to their own prediction.
func (s Spec) Coverage(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0
	}
	lo, hi := s.Offsets()
	var hit int
	for i := range actual {
		if actual[i] >= predicted[i]+lo && actual[i] <= predicted[i]+hi {
			hit++
		}
	}
	return float64(hit) / float64(len(actual))
}
