package models

// Holt is double exponential smoothing with separate level and trend
// smoothing parameters.
type Holt struct {
	alpha  float64
	beta   float64
	level  float64
	trend  float64
	fitted bool
}

// NewHolt creates a Holt linear trend model. Alpha and beta must be in
// (0, 1).
func NewHolt(alpha, beta float64) *Holt {
	return &Holt{alpha: alpha, beta: beta}
}

// HoltGrid returns the 16 (alpha, beta) combinations evaluated against the
// backtest window.
func HoltGrid() []*Holt {
	alphas := []float64{0.2, 0.4, 0.6, 0.8}
	betas := []float64{0.1, 0.2, 0.4, 0.6}
	out := make([]*Holt, 0, len(alphas)*len(betas))
	for _, a := range alphas {
		for _, b := range betas {
			out = append(out, NewHolt(a, b))
		}
	}
	return out
}

func (m *Holt) ID() ID { return IDHolt }

func (m *Holt) Params() map[string]float64 {
	return map[string]float64{"alpha": m.alpha, "beta": m.beta}
}

func (m *Holt) Fit(y []float64) error {
	if err := validateTraining(y); err != nil {
		return err
	}
	if len(y) < 2 {
		return ErrTooShort
	}
	if m.alpha <= 0 || m.alpha >= 1 || m.beta <= 0 || m.beta >= 1 {
		return ErrInvalidParameter
	}
	level := y[0]
	trend := y[1] - y[0]
	for _, v := range y[1:] {
		prevLevel := level
		level = m.alpha*v + (1-m.alpha)*(level+trend)
		trend = m.beta*(level-prevLevel) + (1-m.beta)*trend
	}
	m.level = level
	m.trend = trend
	m.fitted = true
	return nil
}

func (m *Holt) Predict(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, horizon)
	for k := range out {
		out[k] = m.level + float64(k+1)*m.trend
	}
	return out, nil
}
