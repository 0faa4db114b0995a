package data

import (
	"fmt"
	"math"
)

// Encoding is the mapping from a set of schema columns to dense model-matrix
// columns. Nominal columns expand into one indicator per level; every other
// type passes through as a single column. Both linear and tree families
// consume the same encoding so their metrics stay comparable.
type Encoding struct {
	Source   []string // schema column names, in request order
	Features []string // encoded feature names, e.g. "blood_group=O+"
	schema   *Schema
	plan     []encodedColumn
}

type encodedColumn struct {
	schemaIdx int
	oneHot    bool
	levels    int
}

// NewEncoding builds the encoding for the named columns. Columns must exist
// in the schema and must not include the label or identifier.
func NewEncoding(schema *Schema, columns []string) (*Encoding, error) {
	enc := &Encoding{Source: columns, schema: schema}
	for _, name := range columns {
		if name == schema.Label || name == schema.ID {
			return nil, NewSchemaError(name, "cannot be used as a feature")
		}
		ci := schema.ColumnIndex(name)
		if ci < 0 {
			return nil, NewSchemaError(name, "not in dataset schema")
		}
		col := schema.Columns[ci]
		if col.Type == Nominal {
			enc.plan = append(enc.plan, encodedColumn{schemaIdx: ci, oneHot: true, levels: len(col.Levels)})
			for _, lv := range col.Levels {
				enc.Features = append(enc.Features, fmt.Sprintf("%s=%s", name, lv))
			}
			continue
		}
		enc.plan = append(enc.plan, encodedColumn{schemaIdx: ci})
		enc.Features = append(enc.Features, name)
	}
	return enc, nil
}

// Width returns the number of encoded feature columns.
func (e *Encoding) Width() int { return len(e.Features) }

// Row encodes a single record. A missing source cell propagates NaN into
// every derived column so complete-case filters see it.
func (e *Encoding) Row(row []float64) []float64 {
	out := make([]float64, 0, e.Width())
	for _, pc := range e.plan {
		v := row[pc.schemaIdx]
		if !pc.oneHot {
			out = append(out, v)
			continue
		}
		for l := 0; l < pc.levels; l++ {
			switch {
			case math.IsNaN(v):
				out = append(out, math.NaN())
			case int(v) == l:
				out = append(out, 1)
			default:
				out = append(out, 0)
			}
		}
	}
	return out
}

// Matrix encodes every record of ds along with its label. Rows with missing
// cells are kept; callers decide whether to filter.
func (e *Encoding) Matrix(ds *Dataset) (X [][]float64, y []int) {
	X = make([][]float64, ds.Len())
	for i, row := range ds.Rows {
		X[i] = e.Row(row)
	}
	return X, ds.Labels()
}

// CompleteMatrix encodes ds and drops every row with a missing encoded cell,
// returning the surviving count alongside the matrix.
func (e *Encoding) CompleteMatrix(ds *Dataset) (X [][]float64, y []int) {
	labels := ds.Labels()
	for i, row := range ds.Rows {
		enc := e.Row(row)
		ok := true
		for _, v := range enc {
			if math.IsNaN(v) {
				ok = false
				break
			}
		}
		if ok {
			X = append(X, enc)
			y = append(y, labels[i])
		}
	}
	return X, y
}
