package impute

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// olsFit solves the ridge-stabilized normal equations for a linear model with
// intercept and returns the coefficient vector (intercept last).
func olsFit(X [][]float64, y []float64) ([]float64, error) {
	n := len(X)
	if n == 0 {
		return nil, data.ErrInsufficientData
	}
	d := len(X[0])
	a := mat.NewDense(d+1, d+1, nil)
	b := mat.NewVecDense(d+1, nil)
	for i, row := range X {
		for j := 0; j <= d; j++ {
			xij := 1.0
			if j < d {
				xij = row[j]
			}
			b.SetVec(j, b.AtVec(j)+xij*y[i])
			for k := j; k <= d; k++ {
				xik := 1.0
				if k < d {
					xik = row[k]
				}
				a.Set(j, k, a.At(j, k)+xij*xik)
			}
		}
	}
	for j := 0; j <= d; j++ {
		for k := 0; k < j; k++ {
			a.Set(j, k, a.At(k, j))
		}
		a.Set(j, j, a.At(j, j)+1e-8)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: linear imputation system singular", data.ErrNonConvergence)
	}
	beta := make([]float64, d+1)
	for j := 0; j <= d; j++ {
		beta[j] = sol.AtVec(j)
	}
	return beta, nil
}

func linearPredict(beta []float64, x []float64) float64 {
	z := beta[len(beta)-1]
	for j, v := range x {
		z += beta[j] * v
	}
	return z
}

// softmaxModel is a multinomial logistic model over k classes, fit by plain
// gradient descent. Used only for imputation draws, so a bounded iteration
// budget is enough; the chained-equations loop owns the stability check.
type softmaxModel struct {
	k int
	w [][]float64 // k rows of d+1 coefficients, intercept last
}

func softmaxFit(X [][]float64, y []int, k int) (*softmaxModel, error) {
	n := len(X)
	if n == 0 {
		return nil, data.ErrInsufficientData
	}
	d := len(X[0])
	m := &softmaxModel{k: k, w: make([][]float64, k)}
	for c := range m.w {
		m.w[c] = make([]float64, d+1)
	}
	grad := make([][]float64, k)
	for c := range grad {
		grad[c] = make([]float64, d+1)
	}
	lr := 0.5
	for iter := 0; iter < 300; iter++ {
		for c := range grad {
			for j := range grad[c] {
				grad[c][j] = 0
			}
		}
		for i, row := range X {
			p := m.probs(row)
			for c := 0; c < k; c++ {
				r := p[c]
				if y[i] == c {
					r -= 1
				}
				for j, v := range row {
					grad[c][j] += r * v
				}
				grad[c][d] += r
			}
		}
		maxDelta := 0.0
		for c := 0; c < k; c++ {
			for j := 0; j <= d; j++ {
				delta := lr * grad[c][j] / float64(n)
				if math.IsNaN(delta) || math.IsInf(delta, 0) {
					return nil, fmt.Errorf("%w: multinomial imputation diverged", data.ErrNonConvergence)
				}
				m.w[c][j] -= delta
				if a := math.Abs(delta); a > maxDelta {
					maxDelta = a
				}
			}
		}
		if maxDelta < 1e-6 {
			break
		}
	}
	return m, nil
}

func (m *softmaxModel) probs(x []float64) []float64 {
	zs := make([]float64, m.k)
	maxZ := math.Inf(-1)
	for c := 0; c < m.k; c++ {
		zs[c] = linearPredict(m.w[c], x)
		if zs[c] > maxZ {
			maxZ = zs[c]
		}
	}
	sum := 0.0
	for c := range zs {
		zs[c] = math.Exp(zs[c] - maxZ)
		sum += zs[c]
	}
	for c := range zs {
		zs[c] /= sum
	}
	return zs
}

// ordinalModel is a proportional-odds cumulative-logit model: one weight
// vector shared across levels plus k-1 increasing cut points.
type ordinalModel struct {
	k    int
	w    []float64 // d coefficients
	cuts []float64 // k-1 thresholds, kept sorted
}

func ordinalFit(X [][]float64, y []int, k int) (*ordinalModel, error) {
	n := len(X)
	if n == 0 {
		return nil, data.ErrInsufficientData
	}
	d := len(X[0])
	m := &ordinalModel{k: k, w: make([]float64, d), cuts: make([]float64, k-1)}
	for j := range m.cuts {
		m.cuts[j] = float64(j) - float64(k-2)/2.0
	}
	gw := make([]float64, d)
	gc := make([]float64, k-1)
	lr := 0.2
	for iter := 0; iter < 300; iter++ {
		for j := range gw {
			gw[j] = 0
		}
		for j := range gc {
			gc[j] = 0
		}
		for i, row := range X {
			eta := 0.0
			for j, v := range row {
				eta += m.w[j] * v
			}
			// Gradient of the cumulative likelihood: each cut point j sees
			// the indicator y<=j against sigma(cut_j - eta).
			for j := 0; j < k-1; j++ {
				pj := sigmoid(m.cuts[j] - eta)
				target := 0.0
				if y[i] <= j {
					target = 1
				}
				r := pj - target
				gc[j] += r
				for jj, v := range row {
					gw[jj] -= r * v
				}
			}
		}
		maxDelta := 0.0
		for j := range m.w {
			delta := lr * gw[j] / float64(n)
			if math.IsNaN(delta) || math.IsInf(delta, 0) {
				return nil, fmt.Errorf("%w: ordinal imputation diverged", data.ErrNonConvergence)
			}
			m.w[j] -= delta
			if a := math.Abs(delta); a > maxDelta {
				maxDelta = a
			}
		}
		for j := range m.cuts {
			delta := lr * gc[j] / float64(n)
			m.cuts[j] -= delta
			if a := math.Abs(delta); a > maxDelta {
				maxDelta = a
			}
		}
		// Keep the cut points ordered; crossings stall the likelihood.
		for j := 1; j < len(m.cuts); j++ {
			if m.cuts[j] < m.cuts[j-1] {
				m.cuts[j], m.cuts[j-1] = m.cuts[j-1], m.cuts[j]
			}
		}
		if maxDelta < 1e-6 {
			break
		}
	}
	return m, nil
}

func (m *ordinalModel) probs(x []float64) []float64 {
	eta := 0.0
	for j, v := range x {
		eta += m.w[j] * v
	}
	out := make([]float64, m.k)
	prev := 0.0
	for j := 0; j < m.k-1; j++ {
		c := sigmoid(m.cuts[j] - eta)
		out[j] = c - prev
		if out[j] < 0 {
			out[j] = 0
		}
		prev = c
	}
	out[m.k-1] = 1 - prev
	if out[m.k-1] < 0 {
		out[m.k-1] = 0
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
