package models

import (
	"fmt"
	"math"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// ElasticNet is a logistic classifier with a mixed L1/L2 penalty, fit by
// proximal gradient descent on standardized features. Alpha=0 gives pure
// ridge shrinkage, Alpha=1 pure lasso selection.
type ElasticNet struct {
	Alpha  float64 // L1/L2 mixing in [0,1]
	Lambda float64 // penalty strength > 0

	Weights   []float64 // on standardized scale
	Intercept float64
	MaxIter   int
	Tol       float64

	FeatureMean []float64
	FeatureStd  []float64
}

// NewElasticNet returns an elastic-net logistic model for one grid point.
func NewElasticNet(alpha, lambda float64) *ElasticNet {
	return &ElasticNet{Alpha: alpha, Lambda: lambda, MaxIter: 2000, Tol: 1e-5}
}

func (m *ElasticNet) Name() string { return "elastic_net" }

// Fit minimizes the penalized logistic loss. Reports ErrConvergence when the
// iterate has not stabilized within MaxIter steps or the loss degenerates.
func (m *ElasticNet) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return data.ErrInsufficientData
	}
	d := len(X[0])
	m.FeatureMean, m.FeatureStd = columnStats(X)

	// Standardize once; the penalty is scale-sensitive.
	Z := make([][]float64, n)
	for i, row := range X {
		z := make([]float64, d)
		for j, v := range row {
			z[j] = (v - m.FeatureMean[j]) / m.FeatureStd[j]
		}
		Z[i] = z
	}

	// Lipschitz bound for the logistic gradient: ||Z||_F^2 / (4n).
	var frob float64
	for _, row := range Z {
		for _, v := range row {
			frob += v * v
		}
	}
	lip := frob/(4*float64(n)) + m.Lambda*(1-m.Alpha)
	if lip <= 0 {
		lip = 1
	}
	step := 1.0 / lip

	w := make([]float64, d)
	b := 0.0
	gw := make([]float64, d)
	for iter := 0; iter < m.MaxIter; iter++ {
		for j := range gw {
			gw[j] = 0
		}
		gb := 0.0
		for i, row := range Z {
			z := b
			for j, v := range row {
				z += w[j] * v
			}
			r := sigmoid(z) - float64(y[i])
			for j, v := range row {
				gw[j] += r * v
			}
			gb += r
		}
		inv := 1.0 / float64(n)

		maxDelta := 0.0
		for j := range w {
			v := w[j] - step*gw[j]*inv
			// Proximal step: soft-threshold for the L1 part, shrink for L2.
			thr := step * m.Lambda * m.Alpha
			switch {
			case v > thr:
				v -= thr
			case v < -thr:
				v += thr
			default:
				v = 0
			}
			v /= 1 + step*m.Lambda*(1-m.Alpha)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: elastic net diverged at iteration %d", data.ErrConvergence, iter)
			}
			if delta := math.Abs(v - w[j]); delta > maxDelta {
				maxDelta = delta
			}
			w[j] = v
		}
		nb := b - step*gb*inv
		if delta := math.Abs(nb - b); delta > maxDelta {
			maxDelta = delta
		}
		b = nb

		if maxDelta < m.Tol {
			m.Weights = w
			m.Intercept = b
			return nil
		}
	}
	return fmt.Errorf("%w: elastic net (alpha=%.2f lambda=%.4f) not stable after %d iterations",
		data.ErrConvergence, m.Alpha, m.Lambda, m.MaxIter)
}

func (m *ElasticNet) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		z := m.Intercept
		for j, v := range row {
			z += m.Weights[j] * (v - m.FeatureMean[j]) / m.FeatureStd[j]
		}
		out[i] = sigmoid(z)
	}
	return out
}

func (m *ElasticNet) Predict(X [][]float64) []int {
	return thresholdProbs(m.PredictProba(X))
}

// Importances are coefficient magnitudes on the standardized scale; features
// zeroed out by the L1 part score exactly zero.
func (m *ElasticNet) Importances() []float64 {
	out := make([]float64, len(m.Weights))
	for j, w := range m.Weights {
		out[j] = math.Abs(w)
	}
	return out
}
