package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns two well-separated gaussian clusters: class 1 sits at +2 on
// the first feature, class 0 at -2; the second feature is noise.
func blobs(n int, seed int64) (X [][]float64, y []int) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		label := i % 2
		center := -2.0
		if label == 1 {
			center = 2.0
		}
		X = append(X, []float64{center + rng.NormFloat64()*0.5, rng.NormFloat64()})
		y = append(y, label)
	}
	return X, y
}

func accuracy(y, pred []int) float64 {
	hit := 0
	for i := range y {
		if y[i] == pred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(y))
}

func assertProbas(t *testing.T, ps []float64) {
	t.Helper()
	for _, p := range ps {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestLogisticSeparable(t *testing.T) {
	X, y := blobs(200, 1)
	m := NewLogisticRegression()
	require.NoError(t, m.Fit(X, y))

	assert.GreaterOrEqual(t, accuracy(y, m.Predict(X)), 0.95)
	assertProbas(t, m.PredictProba(X))

	imp := m.Importances()
	require.Len(t, imp, 2)
	assert.Greater(t, imp[0], imp[1], "informative feature should dominate")
}

func TestLogisticDeterministic(t *testing.T) {
	X, y := blobs(150, 2)
	m1 := NewLogisticRegression()
	m2 := NewLogisticRegression()
	require.NoError(t, m1.Fit(X, y))
	require.NoError(t, m2.Fit(X, y))
	assert.Equal(t, m1.Weights, m2.Weights)
	assert.Equal(t, m1.Intercept, m2.Intercept)
}

func TestElasticNetShrinksWithPenalty(t *testing.T) {
	X, y := blobs(200, 3)

	weak := NewElasticNet(1, 0.01)
	require.NoError(t, weak.Fit(X, y))
	strong := NewElasticNet(1, 1)
	require.NoError(t, strong.Fit(X, y))

	zeros := func(m *ElasticNet) int {
		n := 0
		for _, w := range m.Weights {
			if w == 0 {
				n++
			}
		}
		return n
	}
	// Pure lasso with a heavy penalty zeroes at least the noise feature.
	assert.GreaterOrEqual(t, zeros(strong), zeros(weak))
	assert.GreaterOrEqual(t, zeros(strong), 1)
	assertProbas(t, strong.PredictProba(X))
}

func TestElasticNetLassoImportancesZero(t *testing.T) {
	X, y := blobs(200, 4)
	m := NewElasticNet(1, 0.1)
	require.NoError(t, m.Fit(X, y))

	imp := m.Importances()
	require.Len(t, imp, 2)
	for j, w := range m.Weights {
		if w == 0 {
			assert.Zero(t, imp[j])
		}
	}
}

func TestDecisionTreeSeparable(t *testing.T) {
	X, y := blobs(200, 5)
	dt := NewDecisionTree(7)
	require.NoError(t, dt.Fit(X, y))

	assert.GreaterOrEqual(t, accuracy(y, dt.Predict(X)), 0.95)
	assertProbas(t, dt.PredictProba(X))

	imp := dt.Importances()
	require.Len(t, imp, 2)
	assert.Greater(t, imp[0], imp[1])
}

func TestDecisionTreeDeterministicPerSeed(t *testing.T) {
	X, y := blobs(200, 6)
	dt1 := NewDecisionTree(11)
	dt2 := NewDecisionTree(11)
	require.NoError(t, dt1.Fit(X, y))
	require.NoError(t, dt2.Fit(X, y))
	assert.Equal(t, dt1.PredictProba(X), dt2.PredictProba(X))
	assert.Equal(t, dt1.Importance, dt2.Importance)
}

func TestRandomForestSeparable(t *testing.T) {
	X, y := blobs(200, 8)
	rf := NewRandomForest(13)
	rf.NTrees = 25 // enough for a stable vote
	require.NoError(t, rf.Fit(X, y))

	assert.GreaterOrEqual(t, accuracy(y, rf.Predict(X)), 0.95)
	assertProbas(t, rf.PredictProba(X))
	require.Len(t, rf.Trees, 25)
}

func TestRandomForestDeterministicPerSeed(t *testing.T) {
	X, y := blobs(150, 9)
	fit := func(seed int64) []float64 {
		rf := NewRandomForest(seed)
		rf.NTrees = 15
		require.NoError(t, rf.Fit(X, y))
		return rf.PredictProba(X)
	}
	assert.Equal(t, fit(21), fit(21))
}

func TestRandomForestImportancesNormalized(t *testing.T) {
	X, y := blobs(150, 10)
	rf := NewRandomForest(3)
	rf.NTrees = 10
	require.NoError(t, rf.Fit(X, y))

	imp := rf.Importances()
	require.Len(t, imp, 2)
	sum := imp[0] + imp[1]
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, imp[0], imp[1])
}
