package diagnostics

import (
	"testing"
	"time"

	"github.com/cloudspend/costcast/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(n int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestNewTrend(t *testing.T) {
	y := make([]float64, 28)
	for i := range y {
		y[i] = 5 + 2*float64(i)
	}
	tr := NewTrend(y)
	assert.InDelta(t, 2.0, tr.Slope, 1e-9)
	assert.InDelta(t, 5.0, tr.Intercept, 1e-9)
	assert.InDelta(t, 1.0, tr.R2, 1e-9)
	assert.Greater(t, tr.Last7Mean, tr.Prev7Mean)
	assert.Greater(t, tr.PctChange, 0.0)
}

func TestNewSeasonalityStrongWeekly(t *testing.T) {
	n := 56
	ts := dates(n)
	y := make([]float64, n)
	for i := range y {
		y[i] = 100
		if ts[i].Weekday() == time.Sunday {
			y[i] = 10
		}
	}
	s := NewSeasonality(ts, y)
	assert.Greater(t, s.Strength, 0.9)
	assert.Greater(t, s.Amplitude, 50.0)
	assert.Len(t, s.Effects, 7)
}

func TestNewSeasonalityFlat(t *testing.T) {
	n := 28
	s := NewSeasonality(dates(n), timeseries.GenerateConst(n, 5))
	assert.Equal(t, 0.0, s.Strength)
	assert.Equal(t, 0.0, s.Amplitude)
}

func TestNewVolatility(t *testing.T) {
	y := timeseries.GenerateConst(20, 3)
	v := NewVolatility(y)
	require.Len(t, v.Rolling, 14)
	assert.Equal(t, 0.0, v.Latest)

	short := NewVolatility([]float64{1, 2})
	assert.Nil(t, short.Rolling)
}

func TestNewAutocorrelation(t *testing.T) {
	y := make([]float64, 30)
	for i := range y {
		y[i] = float64(i % 7)
	}
	acf := NewAutocorrelation(y)
	require.Len(t, acf, 14)
	assert.Equal(t, 1, acf[0].Lag)
	// a weekly sawtooth correlates strongly at lag 7
	assert.Greater(t, acf[6].R, 0.5)
}

func TestDetectChangePoints(t *testing.T) {
	n := 40
	ts := dates(n)
	y := make([]float64, n)
	for i := range y {
		if i < 20 {
			y[i] = 10 + 0.1*float64(i%3)
		} else {
			y[i] = 100 + 0.1*float64(i%3)
		}
	}
	cps := DetectChangePoints(ts, y, NewDefaultOptions())
	require.NotEmpty(t, cps)
	assert.LessOrEqual(t, len(cps), MaxChangePoints)

	// the strongest shift lands on the level jump at index 20
	var hit bool
	for _, cp := range cps {
		if cp.Index >= 18 && cp.Index <= 22 {
			hit = true
			assert.Greater(t, cp.Shift, 50.0)
			assert.Greater(t, cp.Z, DefaultChangePointZ)
		}
	}
	assert.True(t, hit)

	// chronological order and spacing of at least one window
	for i := 1; i < len(cps); i++ {
		assert.Greater(t, cps[i].Index, cps[i-1].Index)
		assert.GreaterOrEqual(t, cps[i].Index-cps[i-1].Index, DefaultChangePointWindow)
	}
}

func TestDetectChangePointsFlat(t *testing.T) {
	n := 40
	cps := DetectChangePoints(dates(n), timeseries.GenerateConst(n, 5), NewDefaultOptions())
	assert.Empty(t, cps)
}

func TestNewResidualDiagnostics(t *testing.T) {
	resid := []float64{0.5, -0.5, 0.4, -0.4, 0.3, -0.3, 0.2, -0.2, 0.1, -0.1}
	d := NewResidualDiagnostics(resid)
	assert.InDelta(t, 0.0, d.Mean, 1e-9)
	assert.Greater(t, d.DurbinWatson, 2.0) // alternating sign residuals
	assert.GreaterOrEqual(t, d.LjungBoxPValue, 0.0)
	assert.LessOrEqual(t, d.LjungBoxPValue, 1.0)
}

func TestNewBundle(t *testing.T) {
	s, err := timeseries.NewDailySeries(
		timeseries.GenerateDates(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 30),
		timeseries.GenerateWeekly(30, 100, 1, 10),
	)
	require.Nil(t, err)

	b := NewBundle(s, []float64{1, -1, 2, -2, 0.5, -0.5, 1}, NewDefaultOptions())
	assert.Equal(t, 30, b.Summary.Count)
	assert.NotEmpty(t, b.Autocorrelation)
	assert.NotNil(t, b.Volatility.Rolling)
}
