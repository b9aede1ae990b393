package transform

import (
	"time"

	"github.com/cloudspend/costcast/stats"
	"github.com/cloudspend/costcast/timeseries"
)

// WeeklyProfile holds one additive effect per day of week, indexed by
// time.Weekday (Sunday = 0). Each effect is the mean value on that weekday
// minus the overall mean, so the effects are centered around zero for a
// balanced series.
type WeeklyProfile [timeseries.DaysPerWeek]float64

// NewWeeklyProfile computes the weekday effects of a series. Weekdays absent
// from the input keep a zero effect.
func NewWeeklyProfile(t []time.Time, y []float64) WeeklyProfile {
	var wp WeeklyProfile
	if len(t) == 0 || len(t) != len(y) {
		return wp
	}
	overall := stats.Mean(y)

	var sums, counts [timeseries.DaysPerWeek]float64
	for i, day := range t {
		wd := int(day.Weekday())
		sums[wd] += y[i]
		counts[wd]++
	}
	for wd := 0; wd < timeseries.DaysPerWeek; wd++ {
		if counts[wd] > 0 {
			wp[wd] = sums[wd]/counts[wd] - overall
		}
	}
	return wp
}

// Deseasonalize subtracts each observation's weekday effect and returns a
// new slice.
func (wp WeeklyProfile) Deseasonalize(t []time.Time, y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v - wp[int(t[i].Weekday())]
	}
	return out
}

// Reseasonalize adds the weekday effect back, keyed by the weekday of each
// target date. Future dates receive the effect of their own weekday.
func (wp WeeklyProfile) Reseasonalize(t []time.Time, y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v + wp[int(t[i].Weekday())]
	}
	return out
}

// Amplitude returns the spread between the strongest and weakest weekday
// effect.
func (wp WeeklyProfile) Amplitude() float64 {
	min, max := wp[0], wp[0]
	for _, v := range wp[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

// Effects returns the effects as a plain slice ordered Sunday through
// Saturday.
func (wp WeeklyProfile) Effects() []float64 {
	out := make([]float64, timeseries.DaysPerWeek)
	copy(out, wp[:])
	return out
}
