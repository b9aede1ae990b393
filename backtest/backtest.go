// Package backtest scores forecast candidates against a held-out trailing
// window and selects the winner. All comparisons happen on the original
// scale of the series; the pipeline inverts transforms before handing
// predictions here.
package backtest

import (
	"errors"
	"math"
	"sort"

	"github.com/cloudspend/costcast/models"
)

var (
	ErrLenMismatch  = errors.New("predicted and actual have different lengths")
	ErrEmptyWindow  = errors.New("empty validation window")
	ErrNoCandidates = errors.New("no candidates to rank")
)

const (
	// MinWindow and MaxWindow bound the holdout length.
	MinWindow = 7
	MaxWindow = 28
	// WindowFraction of the series is held out before clamping.
	WindowFraction = 0.2
	// MinTrain is the smallest training prefix that must remain.
	MinTrain = 2
)

// Window returns the backtest holdout length for a series of n points:
// 20% of the series clamped to [7, 28], further capped so at least two
// training points remain.
func Window(n int) int {
	w := int(math.Floor(WindowFraction * float64(n)))
	if w < MinWindow {
		w = MinWindow
	}
	if w > MaxWindow {
		w = MaxWindow
	}
	if n-w < MinTrain {
		w = n - MinTrain
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Metrics holds the error measures of one candidate against the held-out
// actuals. MASE is nil when no non-zero naive baseline scale exists.
type Metrics struct {
	MAE   float64  `json:"mae"`
	RMSE  float64  `json:"rmse"`
	SMAPE float64  `json:"smape"`
	Bias  float64  `json:"bias"`
	MASE  *float64 `json:"mase"`
}

// NewMetrics compares predictions against actuals. naiveScale is the MASE
// denominator from SeasonalNaiveScale; pass NaN or 0 to omit MASE.
func NewMetrics(predicted, actual []float64, naiveScale float64) (Metrics, error) {
	if len(predicted) != len(actual) {
		return Metrics{}, ErrLenMismatch
	}
	if len(actual) == 0 {
		return Metrics{}, ErrEmptyWindow
	}

	var sumAbs, sumSq, sumBias, sumSMAPE float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		sumBias += predicted[i] - actual[i]
		denom := math.Abs(actual[i]) + math.Abs(predicted[i])
		if denom > 1e-12 {
			sumSMAPE += 2.0 * math.Abs(diff) / denom
		}
	}
	n := float64(len(actual))
	m := Metrics{
		MAE:   sumAbs / n,
		RMSE:  math.Sqrt(sumSq / n),
		SMAPE: 100.0 * sumSMAPE / n,
		Bias:  sumBias / n,
	}
	if !math.IsNaN(naiveScale) && naiveScale > 1e-12 {
		mase := m.MAE / naiveScale
		m.MASE = &mase
	}
	return m, nil
}

// SeasonalNaiveScale returns the mean absolute first difference of y at the
// seasonal lag, the MASE denominator. Returns NaN when the series is
// shorter than one seasonal period.
func SeasonalNaiveScale(y []float64, period int) float64 {
	if period < 1 || len(y) <= period {
		return math.NaN()
	}
	var sum float64
	for i := period; i < len(y); i++ {
		sum += math.Abs(y[i] - y[i-period])
	}
	return sum / float64(len(y)-period)
}

// Score collapses metrics into the composite ranking score. RMSE dominates;
// MAE and sMAPE only break near-ties.
func Score(m Metrics) float64 {
	return m.RMSE*1e6 + m.MAE + m.SMAPE
}

// Candidate is one model's output bundle for the leaderboard.
type Candidate struct {
	ID         models.ID          `json:"id"`
	Label      string             `json:"label"`
	Params     map[string]float64 `json:"params"`
	Validation []float64          `json:"validation"`
	Forecast   []float64          `json:"forecast"`
	Metrics    Metrics            `json:"metrics"`
	Score      float64            `json:"score"`
	// Weight is the inverse-RMSE ensemble weight, set only on ensemble
	// members.
	Weight float64 `json:"weight,omitempty"`
}

// Rank sorts candidates ascending by composite score, breaking exact ties
// by id for determinism.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score < cands[j].Score
		}
		return cands[i].ID < cands[j].ID
	})
}

// Select returns the winning candidate index from a ranked leaderboard.
// A forced id wins when present; otherwise the lowest score does. The
// second return reports whether the forced id was honored.
func Select(ranked []Candidate, forced models.ID) (int, bool, error) {
	if len(ranked) == 0 {
		return 0, false, ErrNoCandidates
	}
	if forced != "" && forced != "auto" {
		for i, c := range ranked {
			if c.ID == forced {
				return i, true, nil
			}
		}
	}
	return 0, false, nil
}
