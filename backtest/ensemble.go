package backtest

import (
	"math"

	"github.com/cloudspend/costcast/models"
)

// minEnsembleMembers is the smallest candidate set worth blending.
const minEnsembleMembers = 2

// BuildEnsemble blends the given candidates into an inverse-RMSE weighted
// ensemble candidate. Members must all carry validation arrays of length
// valLen and forecast arrays of length horizon; candidates that do not are
// excluded from membership. Returns false when fewer than two eligible
// members remain.
//
// Weights are proportional to 1/RMSE and renormalized to sum to 1 across
// the member set. A member with zero RMSE would dominate any blend, so the
// inverse is capped through a small epsilon.
func BuildEnsemble(cands []Candidate, valLen, horizon int, actual []float64, naiveScale float64) (Candidate, bool) {
	var members []*Candidate
	for i := range cands {
		c := &cands[i]
		if c.ID == models.IDEnsemble {
			continue
		}
		if len(c.Validation) != valLen || len(c.Forecast) != horizon {
			continue
		}
		if math.IsNaN(c.Metrics.RMSE) || math.IsInf(c.Metrics.RMSE, 0) {
			continue
		}
		members = append(members, c)
	}
	if len(members) < minEnsembleMembers {
		return Candidate{}, false
	}

	weights := make([]float64, len(members))
	var total float64
	for i, c := range members {
		weights[i] = 1.0 / (c.Metrics.RMSE + 1e-9)
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
		members[i].Weight = weights[i]
	}

	validation := make([]float64, valLen)
	forecast := make([]float64, horizon)
	for i, c := range members {
		for j := range validation {
			validation[j] += weights[i] * c.Validation[j]
		}
		for j := range forecast {
			forecast[j] += weights[i] * c.Forecast[j]
		}
	}

	metrics, err := NewMetrics(validation, actual, naiveScale)
	if err != nil {
		return Candidate{}, false
	}
	return Candidate{
		ID:         models.IDEnsemble,
		Label:      models.IDEnsemble.Label(),
		Params:     map[string]float64{"members": float64(len(members))},
		Validation: validation,
		Forecast:   forecast,
		Metrics:    metrics,
		Score:      Score(metrics),
	}, true
}
