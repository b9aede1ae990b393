package models

// Drift extrapolates the straight line through the first and last training
// points.
type Drift struct {
	last   float64
	slope  float64
	fitted bool
}

func NewDrift() *Drift { return &Drift{} }

func (m *Drift) ID() ID { return IDDrift }

func (m *Drift) Params() map[string]float64 {
	return map[string]float64{"slope": m.slope}
}

func (m *Drift) Fit(y []float64) error {
	if err := validateTraining(y); err != nil {
		return err
	}
	m.last = y[len(y)-1]
	if len(y) > 1 {
		m.slope = (y[len(y)-1] - y[0]) / float64(len(y)-1)
	} else {
		m.slope = 0
	}
	m.fitted = true
	return nil
}

func (m *Drift) Predict(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = m.last + m.slope*float64(k+1)
	}
	return out, nil
}
