package models

import (
	"fmt"
	"math"

	"github.com/cloudspend/costcast/stats"
)

const (
	arimaMaxIter      = 200
	arimaTolerance    = 1e-8
	arimaLearningRate = 0.01
	arimaMomentum     = 0.9
	arimaDecay        = 0.99
	arimaCoefBound    = 0.99
	arimaMinTail      = 5
)

// ARIMA fits an autoregressive integrated moving average model of fixed
// order (p, d, q) by conditional sum of squares. Any order can fail to fit
// on a given series; the caller drops failing orders rather than aborting
// the run.
type ARIMA struct {
	p, d, q int

	intercept float64
	arCoef    []float64
	maCoef    []float64

	diffed    []float64 // d-times differenced training series
	residuals []float64
	tails     [][]float64 // last value of each differencing level, for integration
	fitted    bool
}

// NewARIMA creates an ARIMA model with the given order.
func NewARIMA(p, d, q int) *ARIMA {
	return &ARIMA{p: p, d: d, q: q}
}

// ARIMAGrid returns every order with p in [0,3], d in [0,2], q in [0,3]
// except the pure white-noise orders p=q=0, 36 combinations in total.
func ARIMAGrid() []*ARIMA {
	out := make([]*ARIMA, 0, 36)
	for p := 0; p <= 3; p++ {
		for d := 0; d <= 2; d++ {
			for q := 0; q <= 3; q++ {
				if p == 0 && q == 0 {
					continue
				}
				out = append(out, NewARIMA(p, d, q))
			}
		}
	}
	return out
}

func (m *ARIMA) ID() ID { return IDARIMA }

func (m *ARIMA) Params() map[string]float64 {
	return map[string]float64{
		"p": float64(m.p),
		"d": float64(m.d),
		"q": float64(m.q),
	}
}

// Order returns the model order as a "p,d,q" string for notes and labels.
func (m *ARIMA) Order() string {
	return fmt.Sprintf("(%d,%d,%d)", m.p, m.d, m.q)
}

func (m *ARIMA) Fit(y []float64) error {
	if err := validateTraining(y); err != nil {
		return err
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteInput
		}
	}
	minLen := m.p + m.d + m.q + arimaMinTail
	if len(y) < minLen {
		return fmt.Errorf("order %s needs %d points, got %d, %w", m.Order(), minLen, len(y), ErrTooShort)
	}

	// difference d times, remembering the tail of each level for later
	// integration of forecasts
	w := make([]float64, len(y))
	copy(w, y)
	m.tails = make([][]float64, 0, m.d)
	for i := 0; i < m.d; i++ {
		m.tails = append(m.tails, []float64{w[len(w)-1]})
		next := make([]float64, len(w)-1)
		for j := 1; j < len(w); j++ {
			next[j-1] = w[j] - w[j-1]
		}
		w = next
		if len(w) < m.p+m.q+2 {
			return fmt.Errorf("order %s, %w", m.Order(), ErrTooShort)
		}
	}
	m.diffed = w

	if err := m.fitCSS(w); err != nil {
		return err
	}

	for _, c := range append(append([]float64{m.intercept}, m.arCoef...), m.maCoef...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return ErrUnstableFit
		}
	}
	m.fitted = true
	return nil
}

// fitCSS estimates coefficients by conditional sum of squares using
// gradient descent with momentum. AR terms start from Yule-Walker
// estimates, MA terms from small constants.
func (m *ARIMA) fitCSS(w []float64) error {
	n := len(w)
	m.intercept = stats.Mean(w)
	m.arCoef = make([]float64, m.p)
	m.maCoef = make([]float64, m.q)

	if m.p > 0 {
		acf := stats.ACF(w, m.p)
		if ar := yuleWalker(acf, m.p); ar != nil {
			copy(m.arCoef, ar)
			clampCoefs(m.arCoef)
		}
	}
	for i := range m.maCoef {
		m.maCoef[i] = 0.1
	}

	start := m.p
	if m.q > start {
		start = m.q
	}

	lr := arimaLearningRate
	arMom := make([]float64, m.p)
	maMom := make([]float64, m.q)
	bestSSE := math.Inf(1)
	bestAR := make([]float64, m.p)
	bestMA := make([]float64, m.q)
	copy(bestAR, m.arCoef)
	copy(bestMA, m.maCoef)
	var noImprove int

	for iter := 0; iter < arimaMaxIter; iter++ {
		resid := make([]float64, n)
		var sse float64
		for t := start; t < n; t++ {
			pred := m.predictOne(w, resid, t)
			resid[t] = w[t] - pred
			sse += resid[t] * resid[t]
		}
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			return ErrUnstableFit
		}

		if sse < bestSSE-arimaTolerance {
			bestSSE = sse
			copy(bestAR, m.arCoef)
			copy(bestMA, m.maCoef)
			noImprove = 0
		} else {
			noImprove++
			if noImprove > 20 {
				break
			}
		}

		arGrad := make([]float64, m.p)
		maGrad := make([]float64, m.q)
		for t := start; t < n; t++ {
			for i := 0; i < m.p; i++ {
				arGrad[i] -= 2 * resid[t] * (w[t-i-1] - m.intercept)
			}
			for i := 0; i < m.q; i++ {
				maGrad[i] -= 2 * resid[t] * resid[t-i-1]
			}
		}
		for i := 0; i < m.p; i++ {
			arMom[i] = arimaMomentum*arMom[i] + lr*arGrad[i]/float64(n)
			m.arCoef[i] -= arMom[i]
		}
		for i := 0; i < m.q; i++ {
			maMom[i] = arimaMomentum*maMom[i] + lr*maGrad[i]/float64(n)
			m.maCoef[i] -= maMom[i]
		}
		clampCoefs(m.arCoef)
		clampCoefs(m.maCoef)
		lr *= arimaDecay
	}

	copy(m.arCoef, bestAR)
	copy(m.maCoef, bestMA)

	// final residual pass with the restored coefficients
	m.residuals = make([]float64, n)
	for t := start; t < n; t++ {
		pred := m.predictOne(w, m.residuals, t)
		m.residuals[t] = w[t] - pred
	}
	return nil
}

// predictOne computes the one-step CSS prediction at index t of the
// differenced series given residuals so far.
func (m *ARIMA) predictOne(w, resid []float64, t int) float64 {
	pred := m.intercept
	for i := 0; i < m.p && t-i-1 >= 0; i++ {
		pred += m.arCoef[i] * (w[t-i-1] - m.intercept)
	}
	for i := 0; i < m.q && t-i-1 >= 0; i++ {
		pred += m.maCoef[i] * resid[t-i-1]
	}
	return pred
}

func (m *ARIMA) Predict(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrBadHorizon
	}
	if !m.fitted {
		return nil, ErrNotFitted
	}

	// forecast the differenced series with future shocks set to zero
	n := len(m.diffed)
	w := make([]float64, n, n+horizon)
	copy(w, m.diffed)
	resid := make([]float64, n, n+horizon)
	copy(resid, m.residuals)

	for k := 0; k < horizon; k++ {
		t := len(w)
		w = append(w, 0)
		resid = append(resid, 0)
		w[t] = m.predictOne(w, resid, t)
	}
	fc := make([]float64, horizon)
	copy(fc, w[n:])

	// integrate back through each differencing level
	for level := m.d - 1; level >= 0; level-- {
		prev := m.tails[level][0]
		for k := 0; k < horizon; k++ {
			fc[k] += prev
			prev = fc[k]
		}
	}

	for _, v := range fc {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFiniteOutput
		}
	}
	return fc, nil
}

func clampCoefs(c []float64) {
	for i, v := range c {
		if v > arimaCoefBound {
			c[i] = arimaCoefBound
		} else if v < -arimaCoefBound {
			c[i] = -arimaCoefBound
		}
	}
}

// yuleWalker solves the Yule-Walker equations for initial AR coefficients
// using the Levinson-Durbin recursion. Returns nil when the recursion is
// degenerate.
func yuleWalker(acf []float64, p int) []float64 {
	if len(acf) < p || p == 0 {
		return nil
	}
	// r[0]=1 by definition, r[1..p] from the sample ACF
	r := make([]float64, p+1)
	r[0] = 1
	copy(r[1:], acf[:p])

	phi := make([]float64, p)
	prev := make([]float64, p)
	e := r[0]
	for k := 1; k <= p; k++ {
		acc := r[k]
		for j := 1; j < k; j++ {
			acc -= prev[j-1] * r[k-j]
		}
		if math.Abs(e) < 1e-12 {
			return nil
		}
		lambda := acc / e
		for j := 1; j < k; j++ {
			phi[j-1] = prev[j-1] - lambda*prev[k-j-1]
		}
		phi[k-1] = lambda
		e *= 1 - lambda*lambda
		copy(prev, phi)
	}
	for _, v := range phi {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	return phi
}
