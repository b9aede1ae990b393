// Package timeseries converts raw (date, value) observations into the
// contiguous daily series consumed by the forecasting pipeline. This is the
// single place where malformed input is sanitized: non-finite values are
// coerced to 0 and days absent from the input are filled with 0.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cloudspend/costcast/stats"
)

var (
	ErrInsufficientData = errors.New("insufficient data, need at least 8 paired observations")
	ErrShapeMismatch    = errors.New("dates and values have different lengths")
	ErrBadDate          = errors.New("unparseable date")
)

// MinObservations is the minimum number of paired observations required to
// build a daily series.
const MinObservations = 8

// DaysPerWeek is the length of the weekly seasonal cycle.
const DaysPerWeek = 7

// Series is a contiguous daily time series. T holds one UTC midnight per
// calendar day with no gaps; Y holds the matching values. A Series is never
// mutated after construction.
type Series struct {
	T []time.Time
	Y []float64

	// MissingDays counts input gaps that were filled with 0.
	MissingDays int
}

// NewDailySeries builds a contiguous daily Series spanning the full date
// range of the input. Dates are "YYYY-MM-DD" strings and may arrive unsorted
// or with gaps; missing days are filled with 0 and counted in MissingDays.
// Duplicate dates keep the last value seen. Non-finite values are coerced
// to 0.
func NewDailySeries(dates []string, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("got %d dates and %d values, %w", len(dates), len(values), ErrShapeMismatch)
	}
	if len(dates) < MinObservations {
		return nil, fmt.Errorf("got %d observations, %w", len(dates), ErrInsufficientData)
	}

	byDay := make(map[time.Time]float64, len(dates))
	var first, last time.Time
	for i, ds := range dates {
		day, err := time.ParseInLocation(time.DateOnly, ds, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%q at index %d, %w", ds, i, ErrBadDate)
		}
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		byDay[day] = v
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	n := int(last.Sub(first).Hours()/24) + 1
	s := &Series{
		T: make([]time.Time, 0, n),
		Y: make([]float64, 0, n),
	}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		v, ok := byDay[day]
		if !ok {
			s.MissingDays++
		}
		s.T = append(s.T, day)
		s.Y = append(s.Y, v)
	}
	return s, nil
}

// Len returns the number of days in the series.
func (s *Series) Len() int {
	return len(s.T)
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	t := make([]time.Time, len(s.T))
	y := make([]float64, len(s.Y))
	copy(t, s.T)
	copy(y, s.Y)
	return &Series{T: t, Y: y, MissingDays: s.MissingDays}
}

// DateStrings returns the series dates formatted as "YYYY-MM-DD".
func (s *Series) DateStrings() []string {
	out := make([]string, len(s.T))
	for i, t := range s.T {
		out[i] = t.Format(time.DateOnly)
	}
	return out
}

// FutureDates returns the next horizon calendar days after the series end.
func (s *Series) FutureDates(horizon int) []time.Time {
	if s.Len() == 0 || horizon <= 0 {
		return nil
	}
	last := s.T[s.Len()-1]
	out := make([]time.Time, 0, horizon)
	for i := 1; i <= horizon; i++ {
		out = append(out, last.AddDate(0, 0, i))
	}
	return out
}

// SummaryStats is an immutable snapshot of a series used to pick the
// variance-stabilizing transform and echoed in the analysis bundle.
type SummaryStats struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Variance  float64 `json:"variance"`
	StdDev    float64 `json:"stdDev"`
	CV        float64 `json:"cv"`
	P25       float64 `json:"p25"`
	P75       float64 `json:"p75"`
	P90       float64 `json:"p90"`
	Skewness  float64 `json:"skewness"`
	Kurtosis  float64 `json:"kurtosis"`
	ZeroRatio float64 `json:"zeroRatio"`
}

// Summarize computes SummaryStats over the series values.
func (s *Series) Summarize() SummaryStats {
	y := s.Y
	ss := SummaryStats{
		Count:    len(y),
		Mean:     stats.Mean(y),
		Median:   stats.Median(y),
		Min:      stats.Min(y),
		Max:      stats.Max(y),
		Variance: stats.Variance(y),
		StdDev:   stats.StdDev(y),
		Skewness: stats.Skewness(y),
		Kurtosis: stats.ExcessKurtosis(y),
	}
	ss.P25, _ = stats.Quantile(y, 0.25)
	ss.P75, _ = stats.Quantile(y, 0.75)
	ss.P90, _ = stats.Quantile(y, 0.90)
	if math.Abs(ss.Mean) > 1e-12 {
		ss.CV = ss.StdDev / math.Abs(ss.Mean)
	}
	var zeros int
	for _, v := range y {
		if v == 0 {
			zeros++
		}
	}
	if len(y) > 0 {
		ss.ZeroRatio = float64(zeros) / float64(len(y))
	}
	return ss
}
