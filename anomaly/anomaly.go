// Package anomaly flags days whose value deviates from a simple weekly
// expectation by a robust z-score. Detection is independent of whichever
// forecast model won the run, so anomalies stay stable when the model
// choice flips.
package anomaly

import (
	"math"
	"time"

	"github.com/cloudspend/costcast/stats"
	"github.com/cloudspend/costcast/timeseries"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// DefaultZ is the default robust z-score threshold.
const DefaultZ = 3.0

// Options configures detection.
type Options struct {
	// Z is the robust z-score threshold; values at or above it are flagged.
	Z float64
	// Calendar annotates anomalies with workday/holiday context. A nil
	// Calendar falls back to a US business calendar.
	Calendar *cal.BusinessCalendar
}

// NewDefaultOptions returns the default detector configuration.
func NewDefaultOptions() *Options {
	return &Options{
		Z:        DefaultZ,
		Calendar: defaultCalendar(),
	}
}

func defaultCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// Anomaly is one flagged day.
type Anomaly struct {
	Index    int       `json:"index"`
	Date     time.Time `json:"date"`
	Actual   float64   `json:"actual"`
	Expected float64   `json:"expected"`
	Z        float64   `json:"z"`
	// Workday and Holiday give calendar context for the flagged day; a
	// spike on Black Friday reads differently from one on a plain Tuesday.
	Workday bool   `json:"workday"`
	Holiday string `json:"holiday,omitempty"`
}

// Detect scans a contiguous daily series. The expected value for day i is
// the value exactly one week earlier when available, otherwise the mean of
// the first available week. A day is anomalous when its residual exceeds
// the robust scale of all residuals by the configured factor.
//
// A day whose naive expectation is itself a flagged day is re-judged
// against the most recent unflagged same-weekday value, falling back to
// the first week's median. Without this a single spike would echo as a
// second mirror-image anomaly one week later. The re-judgement only ever
// demotes a day, never promotes one.
func Detect(s *timeseries.Series, opt *Options) []Anomaly {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	z := opt.Z
	if z <= 0 {
		z = DefaultZ
	}
	n := s.Len()
	if n == 0 {
		return nil
	}

	firstWeek := timeseries.DaysPerWeek
	if firstWeek > n {
		firstWeek = n
	}
	baseline := stats.Mean(s.Y[:firstWeek])

	resid := make([]float64, n)
	expected := make([]float64, n)
	for i := 0; i < n; i++ {
		exp := baseline
		if i >= timeseries.DaysPerWeek {
			exp = s.Y[i-timeseries.DaysPerWeek]
		}
		expected[i] = exp
		resid[i] = s.Y[i] - exp
	}

	absResid := make([]float64, n)
	for i, r := range resid {
		absResid[i] = math.Abs(r)
	}
	scale := stats.RobustScaleFactor * stats.MAD(absResid)

	calendar := opt.Calendar
	if calendar == nil {
		calendar = defaultCalendar()
	}

	flagged := make([]bool, n)
	fallback := stats.Median(s.Y[:firstWeek])

	var out []Anomaly
	for i := 0; i < n; i++ {
		exp := expected[i]
		score := robustZ(resid[i], scale)
		if score < z {
			continue
		}
		// the naive expectation may itself be a flagged spike; re-judge
		// against the nearest unflagged same-weekday value before flagging
		if i >= timeseries.DaysPerWeek && flagged[i-timeseries.DaysPerWeek] {
			exp = fallback
			for j := i - 2*timeseries.DaysPerWeek; j >= 0; j -= timeseries.DaysPerWeek {
				if !flagged[j] {
					exp = s.Y[j]
					break
				}
			}
			score = robustZ(s.Y[i]-exp, scale)
			if score < z {
				continue
			}
		}
		flagged[i] = true
		a := Anomaly{
			Index:    i,
			Date:     s.T[i],
			Actual:   s.Y[i],
			Expected: exp,
			Z:        score,
			Workday:  calendar.IsWorkday(s.T[i]),
		}
		if act, obs, h := calendar.IsHoliday(s.T[i]); (act || obs) && h != nil {
			a.Holiday = h.Name
		}
		out = append(out, a)
	}
	return out
}

func robustZ(r, scale float64) float64 {
	switch {
	case scale > 1e-9:
		return math.Abs(r) / scale
	case math.Abs(r) > 1e-9:
		// zero spread with a non-zero residual is an unambiguous spike
		return math.Inf(1)
	}
	return 0
}
