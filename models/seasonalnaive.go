package models

// SeasonalNaive repeats the final seasonal cycle of the training series.
// With period 1 it degenerates to repeating the last observed value.
type SeasonalNaive struct {
	period int
	cycle  []float64
}

// NewSeasonalNaive creates a seasonal naive model with the given cycle
// length. Weekly data uses period 7; period 1 repeats the last value.
func NewSeasonalNaive(period int) *SeasonalNaive {
	if period < 1 {
		period = 1
	}
	return &SeasonalNaive{period: period}
}

func (m *SeasonalNaive) ID() ID { return IDSeasonalNaive }

func (m *SeasonalNaive) Params() map[string]float64 {
	return map[string]float64{"period": float64(m.period)}
}

func (m *SeasonalNaive) Fit(y []float64) error {
	if err := validateTraining(y); err != nil {
		return err
	}
	p := m.period
	if p > len(y) {
		p = len(y)
	}
	m.cycle = make([]float64, p)
	copy(m.cycle, y[len(y)-p:])
	return nil
}

func (m *SeasonalNaive) Predict(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if len(m.cycle) == 0 {
		return nil, ErrNotFitted
	}
	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = m.cycle[k%len(m.cycle)]
	}
	return out, nil
}
