// Package costcast forecasts daily cost or usage series. It fills input
// gaps, stabilizes variance, removes weekly seasonality, backtests a closed
// set of competing models, blends an ensemble, derives prediction intervals
// from holdout residuals, and reports anomalies and history diagnostics.
//
// A Forecaster invocation is pure: identical inputs always produce
// identical results, so callers may cache results by an input fingerprint.
package costcast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cloudspend/costcast/anomaly"
	"github.com/cloudspend/costcast/backtest"
	"github.com/cloudspend/costcast/diagnostics"
	"github.com/cloudspend/costcast/interval"
	"github.com/cloudspend/costcast/models"
	"github.com/cloudspend/costcast/timeseries"
	"github.com/cloudspend/costcast/transform"
)

var ErrNoViableCandidate = errors.New("every candidate model failed to fit")

// Forecaster runs forecasting invocations with a fixed configuration.
type Forecaster struct {
	opt *Options
}

// New creates a Forecaster. A nil opt uses defaults.
func New(opt *Options) (*Forecaster, error) {
	validated, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options, %w", err)
	}
	return &Forecaster{opt: validated}, nil
}

// Forecast is a convenience wrapper running a single invocation.
func Forecast(dates []string, values []float64, opt *Options) (*Results, error) {
	f, err := New(opt)
	if err != nil {
		return nil, err
	}
	return f.Run(dates, values)
}

// Run executes the full pipeline over one input series. It returns either a
// complete Results or an error, never a partial result. The only recovered
// internal failure is ARIMA refusing to fit, which is downgraded to a note.
func (f *Forecaster) Run(dates []string, values []float64) (*Results, error) {
	opt := f.opt

	s, err := timeseries.NewDailySeries(dates, values)
	if err != nil {
		return nil, err
	}
	var notes []string
	if s.MissingDays > 0 {
		notes = append(notes, fmt.Sprintf("preprocessing: filled %d missing days with 0", s.MissingDays))
	}

	summary := s.Summarize()
	method := transform.Choose(opt.Transform, summary)
	if opt.Transform == transform.Auto {
		notes = append(notes, fmt.Sprintf("transform: auto selected %q", method))
	} else if method != opt.Transform {
		notes = append(notes, fmt.Sprintf("transform: %q not applicable, using %q", opt.Transform, method))
	}
	ty := transform.Apply(s.Y, method)

	weekly := opt.Seasonality == SeasonalityWeekly
	period := 1
	var wp transform.WeeklyProfile
	des := ty
	if weekly {
		period = timeseries.DaysPerWeek
		wp = transform.NewWeeklyProfile(s.T, ty)
		des = wp.Deseasonalize(s.T, ty)
	}

	n := s.Len()
	valLen := backtest.Window(n)
	train := des[:n-valLen]
	valDates := s.T[n-valLen:]
	actualVal := s.Y[n-valLen:]
	futureDates := s.FutureDates(opt.Horizon)
	maseScale := backtest.SeasonalNaiveScale(s.Y[:n-valLen], timeseries.DaysPerWeek)

	// toOriginal maps model output back to the original scale: weekly
	// effects keyed by each target date's own weekday, then the inverse
	// transform, then the non-negative domain clamp.
	toOriginal := func(t []time.Time, preds []float64) []float64 {
		if weekly {
			preds = wp.Reseasonalize(t, preds)
		}
		out := transform.Invert(preds, method)
		for i, v := range out {
			if v < 0 || math.IsNaN(v) {
				out[i] = 0
			}
		}
		return out
	}

	run := pipelineRun{
		train:       train,
		full:        des,
		valDates:    valDates,
		futureDates: futureDates,
		actualVal:   actualVal,
		horizon:     opt.Horizon,
		maseScale:   maseScale,
		toOriginal:  toOriginal,
	}

	var candidates []backtest.Candidate
	for _, id := range models.IDs() {
		cand, err := run.evaluateFamily(id, period)
		if err != nil {
			if id == models.IDARIMA {
				notes = append(notes, fmt.Sprintf("arima: dropped, %v", err))
				continue
			}
			return nil, fmt.Errorf("candidate %q failed, %w", id, err)
		}
		candidates = append(candidates, cand)
	}
	if len(candidates) == 0 {
		return nil, ErrNoViableCandidate
	}

	if ens, ok := backtest.BuildEnsemble(candidates, valLen, opt.Horizon, actualVal, maseScale); ok {
		candidates = append(candidates, ens)
		notes = append(notes, fmt.Sprintf("ensemble: blended %d candidates by inverse validation RMSE", int(ens.Params["members"])))
	}

	backtest.Rank(candidates)
	forced := opt.Model
	if forced == ModelAuto {
		forced = ""
	}
	chosenIdx, wasForced, err := backtest.Select(candidates, forced)
	if err != nil {
		return nil, err
	}
	if forced != "" && !wasForced {
		notes = append(notes, fmt.Sprintf("model: requested %q unavailable, fell back to automatic selection", forced))
	}
	chosen := candidates[chosenIdx]

	residuals := make([]float64, valLen)
	for i := range residuals {
		residuals[i] = actualVal[i] - chosen.Validation[i]
	}

	ivSpec, ivNote, err := interval.New(residuals, opt.Interval, opt.Confidence)
	if err != nil {
		return nil, fmt.Errorf("unable to derive interval, %w", err)
	}
	if ivNote != "" {
		notes = append(notes, ivNote)
	}
	lower, upper := ivSpec.Bounds(chosen.Forecast)

	anomalies := anomaly.Detect(s, &anomaly.Options{
		Z:        opt.AnomalyZ,
		Calendar: opt.Calendar,
	})

	forecastDates := make([]string, len(futureDates))
	for i, d := range futureDates {
		forecastDates[i] = d.Format(time.DateOnly)
	}
	valDateStrings := make([]string, len(valDates))
	for i, d := range valDates {
		valDateStrings[i] = d.Format(time.DateOnly)
	}

	return &Results{
		HistoryDates:  s.DateStrings(),
		HistoryValues: s.Y,
		MissingDays:   s.MissingDays,
		SelectedModel: SelectedModel{
			ID:     chosen.ID,
			Label:  chosen.Label,
			Params: chosen.Params,
			Forced: wasForced,
		},
		ForecastDates: forecastDates,
		Forecast:      chosen.Forecast,
		CILower:       lower,
		CIUpper:       upper,
		Sigma:         ivSpec.Scale,
		Interval:      ivSpec,
		Transform: TransformInfo{
			Setting: opt.Transform,
			Method:  method,
		},
		Backtest: BacktestRecord{
			Window:    valLen,
			Dates:     valDateStrings,
			Actual:    actualVal,
			Predicted: chosen.Validation,
			Metrics:   chosen.Metrics,
			Coverage:  ivSpec.Coverage(actualVal, chosen.Validation),
		},
		Anomalies:        anomalies,
		Notes:            notes,
		Analysis:         diagnostics.NewBundle(s, residuals, opt.Diagnostics),
		ModelLeaderboard: candidates,
	}, nil
}

// pipelineRun carries the per-invocation slices shared by every candidate
// evaluation. Nothing here is shared across invocations.
type pipelineRun struct {
	train       []float64
	full        []float64
	valDates    []time.Time
	futureDates []time.Time
	actualVal   []float64
	horizon     int
	maseScale   float64
	toOriginal  func([]time.Time, []float64) []float64
}

// evaluateFamily fits every grid variant of one strategy on the training
// prefix, scores each against the held-out actuals on the original scale,
// keeps the best variant, and refits it on the full series to produce the
// future forecast.
func (r *pipelineRun) evaluateFamily(id models.ID, period int) (backtest.Candidate, error) {
	variants := familyVariants(id, period)

	best := -1
	var bestVal []float64
	var bestMetrics backtest.Metrics
	var lastErr error
	for i, m := range variants {
		if err := m.Fit(r.train); err != nil {
			lastErr = err
			continue
		}
		pred, err := m.Predict(len(r.actualVal))
		if err != nil {
			lastErr = err
			continue
		}
		val := r.toOriginal(r.valDates, pred)
		metrics, err := backtest.NewMetrics(val, r.actualVal, r.maseScale)
		if err != nil {
			lastErr = err
			continue
		}
		if best < 0 || betterVariant(id, metrics, bestMetrics) {
			best = i
			bestVal = val
			bestMetrics = metrics
		}
	}
	if best < 0 {
		if lastErr == nil {
			lastErr = models.ErrUnstableFit
		}
		return backtest.Candidate{}, lastErr
	}

	winner := variants[best]
	if err := winner.Fit(r.full); err != nil {
		return backtest.Candidate{}, fmt.Errorf("refit on full series failed, %w", err)
	}
	fc, err := winner.Predict(r.horizon)
	if err != nil {
		return backtest.Candidate{}, fmt.Errorf("forecast failed, %w", err)
	}

	return backtest.Candidate{
		ID:         id,
		Label:      id.Label(),
		Params:     winner.Params(),
		Validation: bestVal,
		Forecast:   r.toOriginal(r.futureDates, fc),
		Metrics:    bestMetrics,
		Score:      backtest.Score(bestMetrics),
	}, nil
}

// familyVariants returns the grid of models evaluated for one strategy id.
func familyVariants(id models.ID, period int) []models.Model {
	switch id {
	case models.IDSeasonalNaive:
		return []models.Model{models.NewSeasonalNaive(period)}
	case models.IDDrift:
		return []models.Model{models.NewDrift()}
	case models.IDSES:
		grid := models.SESGrid()
		out := make([]models.Model, len(grid))
		for i, m := range grid {
			out[i] = m
		}
		return out
	case models.IDHolt:
		grid := models.HoltGrid()
		out := make([]models.Model, len(grid))
		for i, m := range grid {
			out[i] = m
		}
		return out
	case models.IDARIMA:
		grid := models.ARIMAGrid()
		out := make([]models.Model, len(grid))
		for i, m := range grid {
			out[i] = m
		}
		return out
	}
	return nil
}

// betterVariant orders grid variants within one family. ARIMA picks by
// validation RMSE with MAE breaking ties; the smoothing grids use the same
// composite score as the leaderboard.
func betterVariant(id models.ID, m, best backtest.Metrics) bool {
	if id == models.IDARIMA {
		if m.RMSE != best.RMSE {
			return m.RMSE < best.RMSE
		}
		return m.MAE < best.MAE
	}
	return backtest.Score(m) < backtest.Score(best)
}
