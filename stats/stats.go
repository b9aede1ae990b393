// Package stats provides the numeric building blocks shared by the
// forecasting pipeline: moments, quantiles, robust scale, autocorrelation,
// simple linear regression, and the residual significance statistics.
// All functions are pure and treat their inputs as read-only.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrEmptySlice     = errors.New("empty input slice")
	ErrLagOutOfRange  = errors.New("lag must be in [1, len(x)-1]")
	ErrLenMismatch    = errors.New("input slices have different lengths")
	ErrTooFewSamples  = errors.New("too few samples")
	ErrBadProbability = errors.New("probability must be in [0, 1]")
)

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Variance returns the unbiased sample variance of x.
func Variance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil)
}

// StdDev returns the unbiased sample standard deviation of x.
func StdDev(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Min returns the smallest value in x.
func Min(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := x[0]
	for _, v := range x[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value in x.
func Max(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Quantile returns the p-quantile of x using linear interpolation between
// order statistics. The input does not need to be sorted.
func Quantile(x []float64, p float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptySlice
	}
	if p < 0 || p > 1 {
		return 0, ErrBadProbability
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0], nil
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, nil
}

// Median returns the 0.5 quantile of x.
func Median(x []float64) float64 {
	m, err := Quantile(x, 0.5)
	if err != nil {
		return 0
	}
	return m
}

// MAD returns the median absolute deviation around the median of x.
func MAD(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	med := Median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}

// RobustScaleFactor rescales a MAD to be consistent with the standard
// deviation of a normal distribution.
const RobustScaleFactor = 1.4826

// RobustScale returns 1.4826 times the median absolute deviation of x,
// a spread estimate resistant to outliers.
func RobustScale(x []float64) float64 {
	return RobustScaleFactor * MAD(x)
}

// Skewness returns the third standardized moment of x. Near-constant
// input yields 0 rather than NaN.
func Skewness(x []float64) float64 {
	n := float64(len(x))
	if n < 3 {
		return 0
	}
	mean := Mean(x)
	var m2, m3 float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 <= 1e-12 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// ExcessKurtosis returns the fourth standardized moment of x minus 3.
// Near-constant input yields 0 rather than NaN.
func ExcessKurtosis(x []float64) float64 {
	n := float64(len(x))
	if n < 4 {
		return 0
	}
	mean := Mean(x)
	var m2, m4 float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 <= 1e-12 {
		return 0
	}
	return m4/(m2*m2) - 3.0
}

// Autocorrelation returns the lag-k sample autocorrelation of x.
func Autocorrelation(x []float64, lag int) (float64, error) {
	if lag < 1 || lag >= len(x) {
		return 0, ErrLagOutOfRange
	}
	mean := Mean(x)
	var num, den float64
	for i := 0; i < len(x); i++ {
		d := x[i] - mean
		den += d * d
		if i >= lag {
			num += d * (x[i-lag] - mean)
		}
	}
	if den <= 1e-12 {
		return 0, nil
	}
	return num / den, nil
}

// ACF returns the autocorrelations of x at lags 1 through maxLag. The
// requested maximum is truncated to len(x)-1.
func ACF(x []float64, maxLag int) []float64 {
	if maxLag > len(x)-1 {
		maxLag = len(x) - 1
	}
	if maxLag < 1 {
		return nil
	}
	out := make([]float64, maxLag)
	for lag := 1; lag <= maxLag; lag++ {
		r, err := Autocorrelation(x, lag)
		if err != nil {
			break
		}
		out[lag-1] = r
	}
	return out
}

// LinearFit holds the results of an ordinary least squares fit of
// y = Intercept + Slope*x.
type LinearFit struct {
	Slope     float64
	Intercept float64
	R2        float64
	TStat     float64
}

// LinearRegression fits y = a + b*x by ordinary least squares and returns
// the slope, intercept, coefficient of determination, and the t-statistic
// of the slope.
func LinearRegression(x, y []float64) (LinearFit, error) {
	if len(x) != len(y) {
		return LinearFit{}, ErrLenMismatch
	}
	if len(x) < 3 {
		return LinearFit{}, ErrTooFewSamples
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)

	n := float64(len(x))
	xMean := Mean(x)
	var sse, sst, sxx float64
	yMean := Mean(y)
	for i := range x {
		pred := alpha + beta*x[i]
		sse += (y[i] - pred) * (y[i] - pred)
		sst += (y[i] - yMean) * (y[i] - yMean)
		sxx += (x[i] - xMean) * (x[i] - xMean)
	}

	fit := LinearFit{Slope: beta, Intercept: alpha}
	if sst > 1e-12 {
		fit.R2 = 1.0 - sse/sst
	} else {
		fit.R2 = 1.0
	}
	if n > 2 && sxx > 1e-12 {
		se := math.Sqrt(sse/(n-2.0)) / math.Sqrt(sxx)
		if se > 1e-12 {
			fit.TStat = beta / se
		}
	}
	return fit, nil
}

// DurbinWatson returns the Durbin-Watson statistic of the residual series.
// Values near 2 indicate no first order autocorrelation.
func DurbinWatson(resid []float64) float64 {
	if len(resid) < 2 {
		return 2.0
	}
	var num, den float64
	for i, r := range resid {
		den += r * r
		if i > 0 {
			d := r - resid[i-1]
			num += d * d
		}
	}
	if den <= 1e-12 {
		return 2.0
	}
	return num / den
}

// JarqueBera returns the Jarque-Bera normality statistic of x. Under
// normality the statistic is asymptotically chi-squared with 2 degrees of
// freedom; values above 5.99 reject normality at the 5% level.
func JarqueBera(x []float64) float64 {
	n := float64(len(x))
	if n < 4 {
		return 0
	}
	s := Skewness(x)
	k := ExcessKurtosis(x)
	return n / 6.0 * (s*s + k*k/4.0)
}

// LjungBox returns the Ljung-Box statistic over lags 1..maxLag along with
// its chi-squared p-value. Small p-values indicate residual autocorrelation.
func LjungBox(x []float64, maxLag int) (statistic, pValue float64) {
	n := float64(len(x))
	if maxLag > len(x)-1 {
		maxLag = len(x) - 1
	}
	if maxLag < 1 || n < 3 {
		return 0, 1
	}
	var q float64
	for lag := 1; lag <= maxLag; lag++ {
		r, err := Autocorrelation(x, lag)
		if err != nil {
			break
		}
		q += r * r / (n - float64(lag))
	}
	q *= n * (n + 2.0)

	chi2 := distuv.ChiSquared{K: float64(maxLag)}
	return q, 1.0 - chi2.CDF(q)
}

// NormalQuantile returns the standard normal quantile at probability p,
// e.g. approximately 1.96 at p=0.975.
func NormalQuantile(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return distuv.UnitNormal.Quantile(p)
}
