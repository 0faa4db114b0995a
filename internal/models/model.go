// Package models holds the classifier families trained by the harness. Every
// family implements Model over a dense feature matrix with 0/1 labels; fits
// are deterministic given the model's Seed.
package models

import "math"

// Model is the capability shared by all algorithm families.
type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	// Importances returns one non-negative score per feature column of the
	// training matrix; higher means more influential. Only valid after Fit.
	Importances() []float64
	Name() string
}

// DefaultThreshold is the decision threshold applied to P(Yes).
const DefaultThreshold = 0.5

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func thresholdProbs(ps []float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= DefaultThreshold {
			out[i] = 1
		}
	}
	return out
}

// columnStats returns per-column mean and standard deviation of X.
func columnStats(X [][]float64) (mean, std []float64) {
	if len(X) == 0 {
		return nil, nil
	}
	d := len(X[0])
	n := float64(len(X))
	mean = make([]float64, d)
	std = make([]float64, d)
	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			dv := v - mean[j]
			std[j] += dv * dv
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	return mean, std
}
