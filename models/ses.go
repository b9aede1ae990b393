package models

// SES is simple exponential smoothing with a single smoothing parameter.
// Its forecast is a flat line at the final smoothed level.
type SES struct {
	alpha  float64
	level  float64
	fitted bool
}

// NewSES creates a simple exponential smoothing model. Alpha must be in
// (0, 1).
func NewSES(alpha float64) *SES {
	return &SES{alpha: alpha}
}

// SESGrid returns the candidate alpha sweep 0.1 through 0.9 in steps of
// 0.1, evaluated against the backtest window by the caller.
func SESGrid() []*SES {
	out := make([]*SES, 0, 9)
	for i := 1; i <= 9; i++ {
		out = append(out, NewSES(float64(i)/10.0))
	}
	return out
}

func (m *SES) ID() ID { return IDSES }

func (m *SES) Params() map[string]float64 {
	return map[string]float64{"alpha": m.alpha}
}

func (m *SES) Fit(y []float64) error {
	if err := validateTraining(y); err != nil {
		return err
	}
	if m.alpha <= 0 || m.alpha >= 1 {
		return ErrInvalidParameter
	}
	level := y[0]
	for _, v := range y[1:] {
		level = m.alpha*v + (1-m.alpha)*level
	}
	m.level = level
	m.fitted = true
	return nil
}

func (m *SES) Predict(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, horizon)
	for k := range out {
		out[k] = m.level
	}
	return out, nil
}
