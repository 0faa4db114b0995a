package models

import (
	"math"
	"math/rand"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// TreeNode is one node of a fitted decision tree. Leaves carry the positive
// class fraction of their training rows.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	IsLeaf    bool
	Proba     float64
}

// DecisionTree is a binary CART-style classifier splitting on Gini impurity.
// Candidate thresholds are subsampled per feature with the tree's seeded
// generator, so a fit is deterministic given Seed.
type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxThresholds   int
	MaxFeatures     int // 0 means all features
	Seed            int64

	Root       *TreeNode
	Importance []float64 // impurity decrease per feature, normalized

	rng *rand.Rand
}

// NewDecisionTree returns a tree with the harness defaults.
func NewDecisionTree(seed int64) *DecisionTree {
	return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 10, MinSamplesLeaf: 2, MaxThresholds: 64, Seed: seed}
}

func (dt *DecisionTree) Name() string { return "decision_tree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return data.ErrInsufficientData
	}
	dt.rng = rand.New(rand.NewSource(dt.Seed))
	dt.Importance = make([]float64, len(X[0]))
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.build(X, y, idx, 0)
	total := 0.0
	for _, v := range dt.Importance {
		total += v
	}
	if total > 0 {
		for j := range dt.Importance {
			dt.Importance[j] /= total
		}
	}
	return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	return thresholdProbs(dt.PredictProba(X))
}

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = dt.predictOne(X[i])
	}
	return out
}

func (dt *DecisionTree) Importances() []float64 { return dt.Importance }

func (dt *DecisionTree) predictOne(x []float64) float64 {
	n := dt.Root
	if n == nil {
		return 0.5
	}
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return 0.5
		}
	}
	return n.Proba
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *TreeNode {
	p := positiveFraction(y, idx)
	if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || p == 0 || p == 1 {
		return &TreeNode{IsLeaf: true, Proba: p}
	}

	parentImp := p * (1 - p)
	bestFeature := -1
	bestThr := 0.0
	bestImp := math.MaxFloat64
	var bestLeft, bestRight []int

	for _, f := range dt.pickFeatures(len(X[0])) {
		for _, thr := range dt.candidateThresholds(X, idx, f) {
			left, right := splitIndices(X, idx, f, thr)
			if len(left) < dt.MinSamplesLeaf || len(right) < dt.MinSamplesLeaf {
				continue
			}
			imp := weightedGini(y, left, right)
			if imp < bestImp {
				bestImp = imp
				bestFeature = f
				bestThr = thr
				bestLeft = left
				bestRight = right
			}
		}
	}
	if bestFeature == -1 {
		return &TreeNode{IsLeaf: true, Proba: p}
	}

	dt.Importance[bestFeature] += float64(len(idx)) * (parentImp - bestImp)

	return &TreeNode{
		Feature:   bestFeature,
		Threshold: bestThr,
		Left:      dt.build(X, y, bestLeft, depth+1),
		Right:     dt.build(X, y, bestRight, depth+1),
	}
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
	all := make([]int, nFeats)
	for i := range all {
		all[i] = i
	}
	if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
		return all
	}
	dt.rng.Shuffle(nFeats, func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:dt.MaxFeatures]
}

func (dt *DecisionTree) candidateThresholds(X [][]float64, idx []int, f int) []float64 {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = X[i][f]
	}
	dt.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	m := dt.MaxThresholds
	if m <= 0 || m > len(values) {
		m = len(values)
	}
	return values[:m]
}

func positiveFraction(y []int, idx []int) float64 {
	sum := 0
	for _, i := range idx {
		sum += y[i]
	}
	return float64(sum) / float64(len(idx))
}

func splitIndices(X [][]float64, idx []int, f int, thr float64) (left, right []int) {
	left = make([]int, 0, len(idx))
	right = make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func weightedGini(y []int, left, right []int) float64 {
	gini := func(ids []int) float64 {
		if len(ids) == 0 {
			return 0
		}
		p := positiveFraction(y, ids)
		return p * (1 - p)
	}
	nl := float64(len(left))
	nr := float64(len(right))
	n := nl + nr
	return (nl/n)*gini(left) + (nr/n)*gini(right)
}
