package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormal(t *testing.T) {
	resid := []float64{-1, 1, -1, 1, -1, 1, -1, 1, 0, 0}
	spec, _, err := New(resid, Normal, 0.95)
	require.Nil(t, err)
	assert.Equal(t, Normal, spec.Method)
	assert.InDelta(t, 1.96, spec.Z, 0.01)
	assert.GreaterOrEqual(t, spec.Scale, spec.Sigma)
	assert.GreaterOrEqual(t, spec.Scale, spec.RobustSigma)

	lo, hi := spec.Offsets()
	assert.InDelta(t, -hi, lo, 1e-12)
}

func TestNewAutoPicksEmpiricalForSkewedResiduals(t *testing.T) {
	resid := make([]float64, 0, 40)
	for i := 0; i < 36; i++ {
		resid = append(resid, 0.1)
	}
	resid = append(resid, 30, 40, 50, 60)

	spec, note, err := New(resid, Auto, 0.95)
	require.Nil(t, err)
	assert.Equal(t, Empirical, spec.Method)
	assert.NotEmpty(t, note)
	assert.LessOrEqual(t, spec.Quantiles.Low, 0.0)
	assert.GreaterOrEqual(t, spec.Quantiles.High, 0.0)
}

func TestNewAutoPicksNormalForSymmetricResiduals(t *testing.T) {
	resid := []float64{-2, -1, -1, -0.5, -0.5, 0, 0, 0, 0, 0.5, 0.5, 1, 1, 2}
	spec, _, err := New(resid, Auto, 0.95)
	require.Nil(t, err)
	assert.Equal(t, Normal, spec.Method)
}

func TestNewEmpiricalFallsBackOnTinySample(t *testing.T) {
	spec, note, err := New([]float64{1, -1, 2}, Empirical, 0.95)
	require.Nil(t, err)
	assert.Equal(t, Normal, spec.Method)
	assert.NotEmpty(t, note)
}

func TestNewErrors(t *testing.T) {
	_, _, err := New(nil, Auto, 0.95)
	assert.ErrorIs(t, err, ErrNoResiduals)

	_, _, err = New([]float64{1}, Auto, 1.5)
	assert.ErrorIs(t, err, ErrBadConfidence)
}

func TestBounds(t *testing.T) {
	spec := Spec{Method: Normal, Z: 2, Scale: 3}
	lower, upper := spec.Bounds([]float64{10, 1})
	assert.Equal(t, []float64{4, 0}, lower) // 1-6 clamps to 0
	assert.Equal(t, []float64{16, 7}, upper)

	for i := range lower {
		assert.LessOrEqual(t, lower[i], upper[i])
		assert.GreaterOrEqual(t, lower[i], 0.0)
	}
}

func TestCoverage(t *testing.T) {
	spec := Spec{Method: Normal, Z: 1, Scale: 1}
	actual := []float64{10, 10, 10, 10}
	predicted := []float64{10, 10.5, 12, 9.5}
	// offsets are +/-1: hits at 10, 10.5, 9.5; miss at 12
	assert.InDelta(t, 0.75, spec.Coverage(actual, predicted), 1e-9)
}
