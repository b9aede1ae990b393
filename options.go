package costcast

import (
	"errors"
	"fmt"

	"github.com/cloudspend/costcast/anomaly"
	"github.com/cloudspend/costcast/diagnostics"
	"github.com/cloudspend/costcast/interval"
	"github.com/cloudspend/costcast/models"
	"github.com/cloudspend/costcast/transform"
	"github.com/rickar/cal/v2"
)

var (
	ErrBadHorizon     = errors.New("horizon must be in [1, 365]")
	ErrBadConfidence  = errors.New("confidence must be in (0, 1)")
	ErrBadSeasonality = errors.New("seasonality must be \"weekly\" or \"none\"")
	ErrBadModel       = errors.New("unknown model id")
	ErrBadTransform   = errors.New("transform must be \"auto\", \"none\" or \"log1p\"")
	ErrBadInterval    = errors.New("interval must be \"auto\", \"normal\" or \"empirical\"")
)

// Seasonality selects the seasonal component handling.
type Seasonality string

const (
	SeasonalityWeekly Seasonality = "weekly"
	SeasonalityNone   Seasonality = "none"
)

const (
	DefaultHorizon    = 14
	DefaultConfidence = 0.95
	MaxHorizon        = 365
	// ModelAuto lets the backtest pick the winner.
	ModelAuto models.ID = "auto"
)

// Options configures one forecasting invocation. The zero value is not
// usable; start from NewDefaultOptions.
type Options struct {
	Horizon     int              `json:"horizon"`
	Confidence  float64          `json:"confidence"`
	AnomalyZ    float64          `json:"anomalyZ"`
	Seasonality Seasonality      `json:"seasonality"`
	Model       models.ID        `json:"model"`
	Transform   transform.Method `json:"transform"`
	Interval    interval.Method  `json:"interval"`

	// Diagnostics carries the change point detector constants. These are
	// defaults that work well on daily cost data, not tuned values.
	Diagnostics diagnostics.Options `json:"diagnostics"`

	// Calendar annotates anomalies with workday and holiday context; nil
	// falls back to the US business calendar. Excluded from serialization
	// so it never feeds a request fingerprint; the annotation is context
	// for the reader, not forecast input.
	Calendar *cal.BusinessCalendar `json:"-"`
}

// NewDefaultOptions returns the default invocation configuration: 14-day
// horizon, 95% interval, weekly seasonality, automatic model, transform
// and interval selection.
func NewDefaultOptions() *Options {
	return &Options{
		Horizon:     DefaultHorizon,
		Confidence:  DefaultConfidence,
		AnomalyZ:    anomaly.DefaultZ,
		Seasonality: SeasonalityWeekly,
		Model:       ModelAuto,
		Transform:   transform.Auto,
		Interval:    interval.Auto,
		Diagnostics: diagnostics.NewDefaultOptions(),
	}
}

// Validate normalizes a possibly partial Options, filling unset fields with
// defaults and rejecting out-of-range values. Returns a copy; the receiver
// is not modified.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	out := *o
	if out.Horizon == 0 {
		out.Horizon = DefaultHorizon
	}
	if out.Horizon < 1 || out.Horizon > MaxHorizon {
		return nil, fmt.Errorf("got %d, %w", out.Horizon, ErrBadHorizon)
	}
	if out.Confidence == 0 {
		out.Confidence = DefaultConfidence
	}
	if out.Confidence <= 0 || out.Confidence >= 1 {
		return nil, fmt.Errorf("got %f, %w", out.Confidence, ErrBadConfidence)
	}
	if out.AnomalyZ == 0 {
		out.AnomalyZ = anomaly.DefaultZ
	}
	if out.Seasonality == "" {
		out.Seasonality = SeasonalityWeekly
	}
	if out.Seasonality != SeasonalityWeekly && out.Seasonality != SeasonalityNone {
		return nil, fmt.Errorf("got %q, %w", out.Seasonality, ErrBadSeasonality)
	}
	if out.Model == "" {
		out.Model = ModelAuto
	}
	if out.Model != ModelAuto && !out.Model.Valid() {
		return nil, fmt.Errorf("got %q, %w", out.Model, ErrBadModel)
	}
	switch out.Transform {
	case "":
		out.Transform = transform.Auto
	case transform.Auto, transform.None, transform.Log1p:
	default:
		return nil, fmt.Errorf("got %q, %w", out.Transform, ErrBadTransform)
	}
	switch out.Interval {
	case "":
		out.Interval = interval.Auto
	case interval.Auto, interval.Normal, interval.Empirical:
	default:
		return nil, fmt.Errorf("got %q, %w", out.Interval, ErrBadInterval)
	}
	if out.Diagnostics.ChangePointWindow == 0 && out.Diagnostics.ChangePointZ == 0 {
		out.Diagnostics = diagnostics.NewDefaultOptions()
	}
	return &out, nil
}
