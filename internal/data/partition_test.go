package data

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoClassDataset(t *testing.T, neg, pos int) *Dataset {
	t.Helper()
	schema := &Schema{
		Label: "outcome",
		Columns: []Column{
			{Name: "x", Type: Continuous},
			{Name: "outcome", Type: Binary, Levels: LabelLevels},
		},
	}
	ds := &Dataset{Schema: schema, Origin: OriginSource}
	for i := 0; i < neg+pos; i++ {
		label := 0.0
		if i >= neg {
			label = 1
		}
		ds.Rows = append(ds.Rows, []float64{float64(i), label})
		ds.IDs = append(ds.IDs, fmt.Sprintf("R%03d", i))
	}
	require.NoError(t, ds.Validate())
	return ds
}

func classCounts(ds *Dataset) (neg, pos int) {
	for _, v := range ds.Labels() {
		if v == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

func TestSplitStratifiedCounts(t *testing.T) {
	ds := twoClassDataset(t, 50, 50)

	train, valid, err := Split(ds, 0.7, 504)
	require.NoError(t, err)

	trNeg, trPos := classCounts(train)
	vaNeg, vaPos := classCounts(valid)
	assert.Equal(t, 35, trNeg)
	assert.Equal(t, 35, trPos)
	assert.Equal(t, 15, vaNeg)
	assert.Equal(t, 15, vaPos)

	assert.Equal(t, OriginTrain, train.Origin)
	assert.Equal(t, OriginValidation, valid.Origin)

	// No record on both sides.
	seen := map[string]bool{}
	for _, id := range train.IDs {
		seen[id] = true
	}
	for _, id := range valid.IDs {
		assert.False(t, seen[id], "record %s leaked to both sides", id)
	}
}

func TestSplitRoundsPerClass(t *testing.T) {
	ds := twoClassDataset(t, 30, 9)

	train, valid, err := Split(ds, 0.7, 1)
	require.NoError(t, err)

	trNeg, trPos := classCounts(train)
	assert.Equal(t, 21, trNeg)
	assert.Equal(t, 6, trPos) // round(0.7*9)
	assert.Equal(t, ds.Len(), train.Len()+valid.Len())
}

func TestSplitDeterministic(t *testing.T) {
	ds := twoClassDataset(t, 40, 20)

	tr1, va1, err := Split(ds, 0.7, 11)
	require.NoError(t, err)
	tr2, va2, err := Split(ds, 0.7, 11)
	require.NoError(t, err)
	assert.Equal(t, tr1.IDs, tr2.IDs)
	assert.Equal(t, va1.IDs, va2.IDs)

	tr3, _, err := Split(ds, 0.7, 12)
	require.NoError(t, err)
	assert.NotEqual(t, tr1.IDs, tr3.IDs)
}

func TestSplitSmallClassKeepsBothSides(t *testing.T) {
	ds := twoClassDataset(t, 50, 2)

	train, valid, err := Split(ds, 0.9, 3)
	require.NoError(t, err)
	_, trPos := classCounts(train)
	_, vaPos := classCounts(valid)
	assert.Equal(t, 1, trPos)
	assert.Equal(t, 1, vaPos)
}

func TestSplitInsufficientClass(t *testing.T) {
	ds := twoClassDataset(t, 50, 1)

	_, _, err := Split(ds, 0.7, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestSplitFractionBounds(t *testing.T) {
	ds := twoClassDataset(t, 10, 10)
	for _, frac := range []float64{0, 1, -0.2, 1.5} {
		_, _, err := Split(ds, frac, 1)
		assert.Error(t, err, "fraction %v", frac)
	}
}

func TestDownsampleMajority(t *testing.T) {
	ds := twoClassDataset(t, 30, 10)

	balanced := DownsampleMajority(ds, 7)
	neg, pos := classCounts(balanced)
	assert.Equal(t, 10, neg)
	assert.Equal(t, 10, pos)

	// Original record order is preserved.
	for i := 1; i < len(balanced.IDs); i++ {
		assert.Less(t, balanced.IDs[i-1], balanced.IDs[i])
	}

	same := DownsampleMajority(balanced, 7)
	assert.Equal(t, balanced.Len(), same.Len())
}

func TestDownsampleDeterministic(t *testing.T) {
	ds := twoClassDataset(t, 40, 15)
	b1 := DownsampleMajority(ds, 21)
	b2 := DownsampleMajority(ds, 21)
	assert.Equal(t, b1.IDs, b2.IDs)
}
