package transform

import (
	"testing"
	"time"

	"github.com/cloudspend/costcast/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoose(t *testing.T) {
	testData := map[string]struct {
		setting  Method
		ss       timeseries.SummaryStats
		expected Method
	}{
		"explicit none": {
			None, timeseries.SummaryStats{Skewness: 5, CV: 5}, None,
		},
		"explicit log1p": {
			Log1p, timeseries.SummaryStats{}, Log1p,
		},
		"explicit log1p with negatives degrades": {
			Log1p, timeseries.SummaryStats{Min: -1}, None,
		},
		"auto low skew low cv": {
			Auto, timeseries.SummaryStats{Skewness: 0.5, CV: 0.5}, None,
		},
		"auto high skew": {
			Auto, timeseries.SummaryStats{Skewness: 1.3, CV: 0.5}, Log1p,
		},
		"auto high cv": {
			Auto, timeseries.SummaryStats{Skewness: 0.5, CV: 1.6}, Log1p,
		},
		"auto high skew but negatives": {
			Auto, timeseries.SummaryStats{Skewness: 2.0, CV: 2.0, Min: -0.1}, None,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Choose(td.setting, td.ss))
		})
	}
}

func TestLog1pRoundTrip(t *testing.T) {
	y := []float64{0, 0.5, 1, 10, 1234.5, 1e6}
	back := Invert(Apply(y, Log1p), Log1p)
	require.Len(t, back, len(y))
	for i := range y {
		assert.InDelta(t, y[i], back[i], 1e-9*(1+y[i]))
	}
}

func TestInvertClampsNegative(t *testing.T) {
	// a large negative transformed value maps below zero and gets clamped
	out := Invert([]float64{-5}, Log1p)
	assert.Equal(t, 0.0, out[0])
}

func TestWeeklyProfileRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 28
	ts := make([]time.Time, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		ts[i] = start.AddDate(0, 0, i)
		y[i] = 100 + 10*float64(i%timeseries.DaysPerWeek)
	}

	wp := NewWeeklyProfile(ts, y)
	des := wp.Deseasonalize(ts, y)
	back := wp.Reseasonalize(ts, des)
	for i := range y {
		assert.InDelta(t, y[i], back[i], 1e-9)
	}

	// a series that is purely weekly becomes flat after deseasonalizing
	for i := 1; i < n; i++ {
		assert.InDelta(t, des[0], des[i], 1e-9)
	}
}

func TestWeeklyProfileFutureWeekday(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // a Monday
	n := 14
	ts := make([]time.Time, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		ts[i] = start.AddDate(0, 0, i)
		y[i] = 50
		if ts[i].Weekday() == time.Saturday {
			y[i] = 120
		}
	}
	wp := NewWeeklyProfile(ts, y)

	// reseasonalizing a flat continuation must boost exactly the Saturdays
	future := make([]time.Time, timeseries.DaysPerWeek)
	flat := make([]float64, timeseries.DaysPerWeek)
	for i := range future {
		future[i] = ts[n-1].AddDate(0, 0, i+1)
		flat[i] = 60
	}
	res := wp.Reseasonalize(future, flat)
	for i, day := range future {
		if day.Weekday() == time.Saturday {
			assert.Greater(t, res[i], 100.0)
		} else {
			assert.Less(t, res[i], 70.0)
		}
	}
}

func TestWeeklyProfileAmplitude(t *testing.T) {
	var wp WeeklyProfile
	wp[0] = -3
	wp[6] = 5
	assert.InDelta(t, 8.0, wp.Amplitude(), 1e-12)
}
