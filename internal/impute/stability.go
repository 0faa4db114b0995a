package impute

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// CellSpread is the across-draw distribution of one imputed cell.
type CellSpread struct {
	Row    int
	Column string
	Values []float64 // one per draw
	Mean   float64
	StdDev float64
}

// Stability summarizes how much the multiple-imputation draws disagree, for
// inspection before committing to the primary analysis table.
type Stability struct {
	Cells     []CellSpread
	Draws     int
	MeanSD    float64 // average per-cell standard deviation
	MaxSD     float64
	CellCount int
}

// NewStability compares the draws against the original (incomplete) training
// table and collects the spread of every originally-missing cell.
func NewStability(original *data.Dataset, draws []*data.Dataset) *Stability {
	st := &Stability{Draws: len(draws)}
	if len(draws) == 0 {
		return st
	}
	schema := original.Schema
	for ci, col := range schema.Columns {
		if col.Name == schema.Label || col.Name == schema.ID {
			continue
		}
		for r, row := range original.Rows {
			if !math.IsNaN(row[ci]) {
				continue
			}
			values := make([]float64, len(draws))
			for k, d := range draws {
				values[k] = d.Rows[r][ci]
			}
			mean, _ := stats.Mean(values)
			sd, _ := stats.StandardDeviation(values)
			st.Cells = append(st.Cells, CellSpread{
				Row:    r,
				Column: col.Name,
				Values: values,
				Mean:   mean,
				StdDev: sd,
			})
		}
	}
	st.CellCount = len(st.Cells)
	if st.CellCount > 0 {
		sds := make([]float64, st.CellCount)
		for i, c := range st.Cells {
			sds[i] = c.StdDev
		}
		st.MeanSD, _ = stats.Mean(sds)
		st.MaxSD, _ = stats.Max(sds)
	}
	return st
}
