package timeseries

import (
	"math"
	"time"
)

// GenerateDates returns n consecutive "YYYY-MM-DD" strings starting at the
// given day.
func GenerateDates(start time.Time, n int) []string {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, day.AddDate(0, 0, i).Format(time.DateOnly))
	}
	return out
}

// GenerateConst returns n copies of val.
func GenerateConst(n int, val float64) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return y
}

// GenerateWeekly returns a deterministic daily cost-like series with a base
// level, a linear trend, and an additive weekly wave. Useful for tests and
// the example binary; there is no randomness so runs are reproducible.
func GenerateWeekly(n int, base, slope, weeklyAmp float64) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = base + slope*float64(i) + weeklyAmp*math.Sin(2.0*math.Pi*float64(i)/float64(DaysPerWeek))
		if y[i] < 0 {
			y[i] = 0
		}
	}
	return y
}

// WithRipple returns a copy of y with an additive sine wave of the given
// amplitude and period in days. A period not divisible by 7 breaks the exact
// week-over-week repetition of GenerateWeekly, which otherwise makes every
// day equally "expected" to a seasonal baseline.
func WithRipple(y []float64, amp float64, period int) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v + amp*math.Sin(2.0*math.Pi*float64(i)/float64(period))
		if out[i] < 0 {
			out[i] = 0
		}
	}
	return out
}

// WithSpike returns a copy of y with the value at idx replaced by val.
func WithSpike(y []float64, idx int, val float64) []float64 {
	out := make([]float64, len(y))
	copy(out, y)
	if idx >= 0 && idx < len(out) {
		out[idx] = val
	}
	return out
}
