package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// scoreByX scores each row by its first encoded feature, squashed into (0,1).
type scoreByX struct{}

func (scoreByX) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = 1 / (1 + math.Exp(-row[0]))
	}
	return out
}

func validationSet() *data.Dataset {
	schema := &data.Schema{
		Label: "outcome",
		Columns: []data.Column{
			{Name: "x", Type: data.Continuous},
			{Name: "z", Type: data.Continuous},
			{Name: "outcome", Type: data.Binary, Levels: data.LabelLevels},
		},
	}
	ds := &data.Dataset{Schema: schema, Origin: data.OriginValidation}
	ds.Rows = [][]float64{
		{2.0, 0, 1},
		{1.5, 0, 1},
		{-1.8, 0, 0},
		{-2.2, 0, 0},
		{math.NaN(), 0, 1}, // dropped from scoring
	}
	ds.IDs = []string{"a", "b", "c", "d", "e"}
	return ds
}

func TestEvaluateCompleteCaseScoring(t *testing.T) {
	valid := validationSet()

	bundle, err := Evaluate(scoreByX{}, valid, []string{"x"})
	require.NoError(t, err)

	assert.Equal(t, 4, bundle.N)
	assert.Equal(t, 1.0, bundle.Sensitivity)
	assert.Equal(t, 1.0, bundle.Specificity)
	assert.Equal(t, 1.0, bundle.F1)
	assert.Equal(t, 1.0, bundle.AUC)
}

func TestEvaluateRejectsNonValidation(t *testing.T) {
	valid := validationSet()
	valid.Origin = data.OriginTrain

	_, err := Evaluate(scoreByX{}, valid, []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, data.ErrLeakage)
}

func TestEvaluateNoCompleteRows(t *testing.T) {
	valid := validationSet()
	for i := range valid.Rows {
		valid.Rows[i][0] = math.NaN()
	}

	_, err := Evaluate(scoreByX{}, valid, []string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, data.ErrInsufficientData)
}

func TestEvaluateUnknownColumn(t *testing.T) {
	_, err := Evaluate(scoreByX{}, validationSet(), []string{"missing_col"})
	require.Error(t, err)
	assert.ErrorIs(t, err, data.ErrSchemaMismatch)
}
