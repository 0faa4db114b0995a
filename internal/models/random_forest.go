package models

import (
	"math"
	"math/rand"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// DefaultForestSize is the fixed, non-tuned tree count. Chosen once by the
// cost/benefit probe in the train package: doubling past this size moves the
// target metric by less than the accepted margin.
const DefaultForestSize = 300

// RandomForest bags seeded decision trees over bootstrap resamples with
// per-split feature subsampling. The tunable axes are MaxFeatures (candidate
// features per split) and the split/leaf size parameters; the forest size is
// fixed.
type RandomForest struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxThresholds   int
	MaxFeatures     int // 0 means sqrt(n_features)
	Seed            int64

	Trees []*DecisionTree
}

// NewRandomForest returns a forest with the harness defaults.
func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{
		NTrees:          DefaultForestSize,
		MaxDepth:        8,
		MinSamplesSplit: 10,
		MinSamplesLeaf:  2,
		MaxThresholds:   32,
		Seed:            seed,
	}
}

func (rf *RandomForest) Name() string { return "random_forest" }

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return data.ErrInsufficientData
	}
	if rf.NTrees <= 0 {
		rf.NTrees = DefaultForestSize
	}
	nFeats := len(X[0])
	maxFeats := rf.MaxFeatures
	if maxFeats <= 0 {
		maxFeats = int(math.Max(1, math.Sqrt(float64(nFeats))))
	}

	rng := rand.New(rand.NewSource(rf.Seed))
	rf.Trees = make([]*DecisionTree, 0, rf.NTrees)
	Xb := make([][]float64, n)
	yb := make([]int, n)
	for k := 0; k < rf.NTrees; k++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			Xb[i] = X[j]
			yb[i] = y[j]
		}
		dt := NewDecisionTree(rng.Int63())
		dt.MaxDepth = rf.MaxDepth
		dt.MinSamplesSplit = rf.MinSamplesSplit
		dt.MinSamplesLeaf = rf.MinSamplesLeaf
		dt.MaxThresholds = rf.MaxThresholds
		dt.MaxFeatures = maxFeats
		if err := dt.Fit(Xb, yb); err != nil {
			return err
		}
		rf.Trees = append(rf.Trees, dt)
	}
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	return thresholdProbs(rf.PredictProba(X))
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	n := len(X)
	out := make([]float64, n)
	if len(rf.Trees) == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for _, dt := range rf.Trees {
		p := dt.PredictProba(X)
		for i := 0; i < n; i++ {
			out[i] += p[i]
		}
	}
	m := float64(len(rf.Trees))
	for i := 0; i < n; i++ {
		out[i] /= m
	}
	return out
}

// Importances averages the per-tree impurity-decrease scores.
func (rf *RandomForest) Importances() []float64 {
	if len(rf.Trees) == 0 {
		return nil
	}
	out := make([]float64, len(rf.Trees[0].Importance))
	for _, dt := range rf.Trees {
		for j, v := range dt.Importance {
			out[j] += v
		}
	}
	m := float64(len(rf.Trees))
	for j := range out {
		out[j] /= m
	}
	return out
}
