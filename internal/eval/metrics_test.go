package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfusionCounts(t *testing.T) {
	y := []int{1, 1, 0, 0, 1, 0}
	ps := []float64{0.9, 0.4, 0.2, 0.6, 0.5, 0.1}

	c := NewConfusion(y, ps, 0.5)
	assert.Equal(t, Confusion{TP: 2, FP: 1, TN: 2, FN: 1}, c)

	assert.InDelta(t, 2.0/3.0, c.Sensitivity(), 1e-12)
	assert.InDelta(t, 2.0/3.0, c.Specificity(), 1e-12)
	assert.InDelta(t, 2.0/3.0, c.Precision(), 1e-12)
	assert.InDelta(t, 2.0/3.0, c.F1(), 1e-12)
}

func TestConfusionEmptyDenominators(t *testing.T) {
	c := NewConfusion([]int{0, 0}, []float64{0.1, 0.2}, 0.5)
	assert.Zero(t, c.Sensitivity())
	assert.Zero(t, c.Precision())
	assert.Zero(t, c.F1())
	assert.Equal(t, 1.0, c.Specificity())
}

func TestROCAUCPerfect(t *testing.T) {
	y := []int{0, 0, 1, 1}
	assert.InDelta(t, 1.0, ROCAUC(y, []float64{0.1, 0.2, 0.8, 0.9}), 1e-12)
	assert.InDelta(t, 0.0, ROCAUC(y, []float64{0.9, 0.8, 0.2, 0.1}), 1e-12)
}

func TestROCAUCSingleClass(t *testing.T) {
	assert.Equal(t, 0.5, ROCAUC([]int{1, 1}, []float64{0.2, 0.9}))
	assert.Equal(t, 0.5, ROCAUC([]int{0, 0}, []float64{0.2, 0.9}))
}

func TestROCAUCTiedScores(t *testing.T) {
	// A constant score carries no ranking information.
	y := []int{0, 1, 0, 1}
	assert.InDelta(t, 0.5, ROCAUC(y, []float64{0.5, 0.5, 0.5, 0.5}), 1e-12)
}

func TestScoreDispatch(t *testing.T) {
	y := []int{1, 1, 0, 0}
	ps := []float64{0.9, 0.4, 0.2, 0.6}

	c := NewConfusion(y, ps, 0.5)
	assert.Equal(t, c.F1(), Score("f1", y, ps))
	assert.Equal(t, c.Sensitivity(), Score("sensitivity", y, ps))
	assert.Equal(t, c.Specificity(), Score("specificity", y, ps))
	assert.Equal(t, ROCAUC(y, ps), Score("auc", y, ps))
	assert.Equal(t, ROCAUC(y, ps), Score("", y, ps))
}
