// Package eval scores fitted predictors on held-out data. Validation rows are
// never imputed: rows with a missing value in the scored column set are
// dropped, so the metrics reflect real-world applicability without leaking a
// fitted imputation model across the partition boundary.
package eval

import (
	"math"
	"sort"
)

// MetricBundle is the fixed metric set reported for every predictor, plus the
// number of validation rows actually scored.
type MetricBundle struct {
	Sensitivity float64
	Specificity float64
	F1          float64
	AUC         float64
	N           int
}

// Confusion holds binary confusion counts at a fixed threshold.
type Confusion struct {
	TP, FP, TN, FN int
}

// NewConfusion counts outcomes of thresholding ps at thr against y.
func NewConfusion(y []int, ps []float64, thr float64) Confusion {
	var c Confusion
	for i := range y {
		pred := 0
		if ps[i] >= thr {
			pred = 1
		}
		switch {
		case pred == 1 && y[i] == 1:
			c.TP++
		case pred == 1 && y[i] == 0:
			c.FP++
		case pred == 0 && y[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

// Sensitivity is TP/(TP+FN).
func (c Confusion) Sensitivity() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// Specificity is TN/(TN+FP).
func (c Confusion) Specificity() float64 {
	if c.TN+c.FP == 0 {
		return 0
	}
	return float64(c.TN) / float64(c.TN+c.FP)
}

// Precision is TP/(TP+FP).
func (c Confusion) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

// F1 is the harmonic mean of precision and sensitivity.
func (c Confusion) F1() float64 {
	p := c.Precision()
	r := c.Sensitivity()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// ROCAUC computes the area under the ROC curve by trapezoidal sweep over the
// score-sorted rows. Tied scores advance the curve together. Returns 0.5 when
// only one class is present.
func ROCAUC(y []int, ps []float64) float64 {
	type pair struct {
		s float64
		y int
	}
	n := len(y)
	pairs := make([]pair, n)
	var pos, neg int
	for i := 0; i < n; i++ {
		pairs[i] = pair{ps[i], y[i]}
		if y[i] == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })

	tp, fp := 0, 0
	prevScore := math.Inf(1)
	prevTPR, prevFPR := 0.0, 0.0
	auc := 0.0
	for i := 0; i < n; i++ {
		if pairs[i].s != prevScore {
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
			prevTPR, prevFPR = tpr, fpr
			prevScore = pairs[i].s
		}
		if pairs[i].y == 1 {
			tp++
		} else {
			fp++
		}
	}
	tpr := float64(tp) / float64(pos)
	fpr := float64(fp) / float64(neg)
	auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
	return auc
}

// Score computes the named target metric from labels and probabilities at the
// default threshold. Recognized metrics: "auc", "f1", "sensitivity",
// "specificity".
func Score(metric string, y []int, ps []float64) float64 {
	switch metric {
	case "f1":
		return NewConfusion(y, ps, 0.5).F1()
	case "sensitivity":
		return NewConfusion(y, ps, 0.5).Sensitivity()
	case "specificity":
		return NewConfusion(y, ps, 0.5).Specificity()
	default:
		return ROCAUC(y, ps)
	}
}
