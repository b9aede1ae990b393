// Package diagnostics computes the analysis bundle reported alongside a
// forecast: trend, weekly seasonality strength, rolling volatility,
// autocorrelation, change points, and residual tests. Everything here runs
// on the original-scale history and is independent of the chosen forecast
// model.
package diagnostics

import (
	"math"
	"sort"
	"time"

	"github.com/cloudspend/costcast/stats"
	"github.com/cloudspend/costcast/timeseries"
	"github.com/cloudspend/costcast/transform"
)

// Defaults for the change point detector. These are reasonable defaults,
// not tuned constants; both are caller-configurable through Options.
const (
	DefaultChangePointWindow = 7
	DefaultChangePointZ      = 2.5
	MaxChangePoints          = 5
	MaxAutocorrLag           = 14
	RollingWindow            = 7
)

// Options configures the detector constants.
type Options struct {
	ChangePointWindow int     `json:"changePointWindow"`
	ChangePointZ      float64 `json:"changePointZ"`
}

// NewDefaultOptions returns the default detector configuration.
func NewDefaultOptions() Options {
	return Options{
		ChangePointWindow: DefaultChangePointWindow,
		ChangePointZ:      DefaultChangePointZ,
	}
}

// Trend summarizes the linear trend of the history plus the week-over-week
// movement of its tail.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
	TStat     float64 `json:"tStat"`
	Last7Mean float64 `json:"last7Mean"`
	Prev7Mean float64 `json:"prev7Mean"`
	PctChange float64 `json:"pctChange"`
}

// NewTrend fits a least-squares line over the history and compares the
// final week against the one before it.
func NewTrend(y []float64) Trend {
	var tr Trend
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	if fit, err := stats.LinearRegression(x, y); err == nil {
		tr.Slope = fit.Slope
		tr.Intercept = fit.Intercept
		tr.R2 = fit.R2
		tr.TStat = fit.TStat
	}
	if len(y) >= 14 {
		tr.Last7Mean = stats.Mean(y[len(y)-7:])
		tr.Prev7Mean = stats.Mean(y[len(y)-14 : len(y)-7])
		if math.Abs(tr.Prev7Mean) > 1e-12 {
			tr.PctChange = 100.0 * (tr.Last7Mean - tr.Prev7Mean) / math.Abs(tr.Prev7Mean)
		}
	}
	return tr
}

// Seasonality reports how much of the detrended variance the weekly cycle
// explains, along with the weekday effect table of the original series.
type Seasonality struct {
	Strength  float64   `json:"strength"`
	Amplitude float64   `json:"amplitude"`
	Effects   []float64 `json:"effects"`
}

// NewSeasonality computes weekly seasonality strength as
// 1 - var(detrended minus weekly effect)/var(detrended), clamped to be
// non-negative.
func NewSeasonality(t []time.Time, y []float64) Seasonality {
	wp := transform.NewWeeklyProfile(t, y)
	s := Seasonality{
		Amplitude: wp.Amplitude(),
		Effects:   wp.Effects(),
	}

	detrended := detrend(y)
	deseason := transform.NewWeeklyProfile(t, detrended).Deseasonalize(t, detrended)
	varDetrended := stats.Variance(detrended)
	if varDetrended > 1e-12 {
		s.Strength = 1.0 - stats.Variance(deseason)/varDetrended
		if s.Strength < 0 {
			s.Strength = 0
		}
	}
	return s
}

func detrend(y []float64) []float64 {
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	fit, err := stats.LinearRegression(x, y)
	if err != nil {
		out := make([]float64, len(y))
		copy(out, y)
		return out
	}
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - (fit.Intercept + fit.Slope*x[i])
	}
	return out
}

// Volatility reports the 7-day rolling standard deviation of the history.
type Volatility struct {
	Rolling        []float64 `json:"rolling"`
	Mean           float64   `json:"mean"`
	Latest         float64   `json:"latest"`
	RatioToOverall float64   `json:"ratioToOverall"`
}

// NewVolatility computes the rolling 7-day standard deviation series, its
// mean and latest value, and the ratio of the latest window to the overall
// standard deviation.
func NewVolatility(y []float64) Volatility {
	var v Volatility
	if len(y) < RollingWindow {
		return v
	}
	v.Rolling = make([]float64, 0, len(y)-RollingWindow+1)
	for i := 0; i+RollingWindow <= len(y); i++ {
		v.Rolling = append(v.Rolling, stats.StdDev(y[i:i+RollingWindow]))
	}
	v.Mean = stats.Mean(v.Rolling)
	v.Latest = v.Rolling[len(v.Rolling)-1]
	if overall := stats.StdDev(y); overall > 1e-12 {
		v.RatioToOverall = v.Latest / overall
	}
	return v
}

// AutocorrLag is one autocorrelation sample.
type AutocorrLag struct {
	Lag int     `json:"lag"`
	R   float64 `json:"r"`
}

// NewAutocorrelation returns autocorrelations at lags 1 through
// min(14, n-1).
func NewAutocorrelation(y []float64) []AutocorrLag {
	acf := stats.ACF(y, MaxAutocorrLag)
	out := make([]AutocorrLag, len(acf))
	for i, r := range acf {
		out[i] = AutocorrLag{Lag: i + 1, R: r}
	}
	return out
}

// ChangePoint marks a detected mean level shift.
type ChangePoint struct {
	Index  int       `json:"index"`
	Date   time.Time `json:"date"`
	Before float64   `json:"before"`
	After  float64   `json:"after"`
	Shift  float64   `json:"shift"`
	Z      float64   `json:"z"`
}

// DetectChangePoints slides a window over the series and flags indices
// where the mean shift between the preceding and following windows exceeds
// the z threshold in pooled standard deviations. Detections closer than one
// window width to a stronger one are suppressed, at most MaxChangePoints
// survive, and the result is in chronological order.
func DetectChangePoints(t []time.Time, y []float64, opt Options) []ChangePoint {
	w := opt.ChangePointWindow
	if w < 2 {
		w = DefaultChangePointWindow
	}
	z := opt.ChangePointZ
	if z <= 0 {
		z = DefaultChangePointZ
	}
	if len(y) < 2*w {
		return nil
	}

	var found []ChangePoint
	for i := w; i+w <= len(y); i++ {
		before := y[i-w : i]
		after := y[i : i+w]
		mb, sb := stats.Mean(before), stats.StdDev(before)
		ma, sa := stats.Mean(after), stats.StdDev(after)
		pooled := math.Sqrt((sb*sb + sa*sa) / 2.0)
		if pooled < 1e-9 {
			pooled = 1e-9
		}
		score := math.Abs(ma-mb) / pooled
		if score < z {
			continue
		}
		found = append(found, ChangePoint{
			Index:  i,
			Date:   t[i],
			Before: mb,
			After:  ma,
			Shift:  ma - mb,
			Z:      score,
		})
	}

	// keep the strongest shifts, suppressing neighbors within one window
	sort.SliceStable(found, func(i, j int) bool { return found[i].Z > found[j].Z })
	var kept []ChangePoint
	for _, cp := range found {
		tooClose := false
		for _, k := range kept {
			if abs(cp.Index-k.Index) < w {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		kept = append(kept, cp)
		if len(kept) == MaxChangePoints {
			break
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	return kept
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ResidualDiagnostics bundles the significance tests run on the chosen
// candidate's backtest residuals.
type ResidualDiagnostics struct {
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"stdDev"`
	Skewness       float64 `json:"skewness"`
	Kurtosis       float64 `json:"kurtosis"`
	DurbinWatson   float64 `json:"durbinWatson"`
	JarqueBera     float64 `json:"jarqueBera"`
	LjungBox       float64 `json:"ljungBox"`
	LjungBoxPValue float64 `json:"ljungBoxPValue"`
	ACF1           float64 `json:"acf1"`
}

// NewResidualDiagnostics runs the residual test battery.
func NewResidualDiagnostics(resid []float64) ResidualDiagnostics {
	d := ResidualDiagnostics{
		Mean:         stats.Mean(resid),
		StdDev:       stats.StdDev(resid),
		Skewness:     stats.Skewness(resid),
		Kurtosis:     stats.ExcessKurtosis(resid),
		DurbinWatson: stats.DurbinWatson(resid),
		JarqueBera:   stats.JarqueBera(resid),
	}
	lag := len(resid) / 2
	if lag > 10 {
		lag = 10
	}
	if lag >= 1 {
		d.LjungBox, d.LjungBoxPValue = stats.LjungBox(resid, lag)
	} else {
		d.LjungBoxPValue = 1
	}
	if len(resid) > 1 {
		if r, err := stats.Autocorrelation(resid, 1); err == nil {
			d.ACF1 = r
		}
	}
	return d
}

// Bundle is the full analysis block of a forecast result.
type Bundle struct {
	Summary         timeseries.SummaryStats `json:"summary"`
	Trend           Trend                   `json:"trend"`
	Seasonality     Seasonality             `json:"seasonality"`
	Volatility      Volatility              `json:"volatility"`
	Autocorrelation []AutocorrLag           `json:"autocorrelation"`
	ChangePoints    []ChangePoint           `json:"changePoints"`
	Residuals       ResidualDiagnostics     `json:"residualDiagnostics"`
}

// NewBundle computes every history diagnostic over the original series and
// attaches the residual tests for the chosen candidate.
func NewBundle(s *timeseries.Series, resid []float64, opt Options) Bundle {
	return Bundle{
		Summary:         s.Summarize(),
		Trend:           NewTrend(s.Y),
		Seasonality:     NewSeasonality(s.T, s.Y),
		Volatility:      NewVolatility(s.Y),
		Autocorrelation: NewAutocorrelation(s.Y),
		ChangePoints:    DetectChangePoints(s.T, s.Y, opt),
		Residuals:       NewResidualDiagnostics(resid),
	}
}
