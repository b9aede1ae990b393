package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		p        float64
		err      error
		expected float64
	}{
		"empty":          {nil, 0.5, ErrEmptySlice, 0},
		"bad prob":       {[]float64{1, 2}, 1.5, ErrBadProbability, 0},
		"single":         {[]float64{3}, 0.9, nil, 3},
		"median of odd":  {[]float64{3, 1, 2}, 0.5, nil, 2},
		"median of even": {[]float64{4, 1, 3, 2}, 0.5, nil, 2.5},
		"lower quartile": {[]float64{1, 2, 3, 4, 5}, 0.25, nil, 2},
		"max":            {[]float64{5, 1, 4}, 1.0, nil, 5},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			q, err := Quantile(td.x, td.p)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, q, 1e-12)
		})
	}
}

func TestRobustScale(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		expected float64
	}{
		"empty":    {nil, 0},
		"constant": {[]float64{5, 5, 5, 5}, 0},
		"simple":   {[]float64{1, 2, 3, 4, 5}, RobustScaleFactor * 1.0},
		"outlier resistant": {
			[]float64{1, 2, 3, 4, 1000},
			RobustScaleFactor * 1.0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, RobustScale(td.x), 1e-9)
		})
	}
}

func TestSkewnessKurtosis(t *testing.T) {
	symmetric := []float64{-2, -1, 0, 1, 2}
	assert.InDelta(t, 0.0, Skewness(symmetric), 1e-9)

	rightSkewed := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 100}
	assert.Greater(t, Skewness(rightSkewed), 1.25)

	constant := []float64{7, 7, 7, 7, 7}
	assert.Equal(t, 0.0, Skewness(constant))
	assert.Equal(t, 0.0, ExcessKurtosis(constant))
}

func TestAutocorrelation(t *testing.T) {
	testData := map[string]struct {
		x   []float64
		lag int
		err error
		r   float64
	}{
		"lag too small": {[]float64{1, 2, 3}, 0, ErrLagOutOfRange, 0},
		"lag too large": {[]float64{1, 2, 3}, 3, ErrLagOutOfRange, 0},
		"constant":      {[]float64{4, 4, 4, 4}, 1, nil, 0},
		"alternating": {
			[]float64{1, -1, 1, -1, 1, -1, 1, -1}, 1, nil, -0.875,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			r, err := Autocorrelation(td.x, td.lag)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.r, r, 1e-9)
		})
	}
}

func TestACFTruncation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	acf := ACF(x, 14)
	assert.Len(t, acf, 4)
}

func TestLinearRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{1, 3, 5, 7, 9, 11}
	fit, err := LinearRegression(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)

	_, err = LinearRegression([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLenMismatch)
}

func TestDurbinWatson(t *testing.T) {
	// strongly positively autocorrelated residuals give a statistic near 0
	trending := []float64{1, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7}
	assert.Less(t, DurbinWatson(trending), 1.0)

	// alternating residuals give a statistic near 4
	alternating := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	assert.Greater(t, DurbinWatson(alternating), 3.0)

	assert.Equal(t, 2.0, DurbinWatson([]float64{0.5}))
}

func TestJarqueBera(t *testing.T) {
	// heavy right tail should push the statistic over the 5% threshold
	skewed := make([]float64, 0, 40)
	for i := 0; i < 36; i++ {
		skewed = append(skewed, 1.0)
	}
	skewed = append(skewed, 50, 60, 70, 80)
	assert.Greater(t, JarqueBera(skewed), 5.99)
}

func TestLjungBox(t *testing.T) {
	// a long alternating series has strong autocorrelation at every lag
	x := make([]float64, 60)
	for i := range x {
		if i%2 == 0 {
			x[i] = 1
		} else {
			x[i] = -1
		}
	}
	q, p := LjungBox(x, 10)
	assert.Greater(t, q, 18.31) // chi-squared 5% critical value at 10 dof
	assert.Less(t, p, 0.05)
}

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, 1.959964, NormalQuantile(0.975), 1e-4)
	assert.InDelta(t, 2.575829, NormalQuantile(0.995), 1e-4)
	assert.True(t, math.Abs(NormalQuantile(0.5)) < 1e-12)
}
