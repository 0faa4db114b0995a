package data

import (
	"fmt"
	"math"
)

// ColumnType is the semantic type of a column. Imputation strategy and matrix
// encoding are resolved from it once, at schema-validation time.
type ColumnType int

const (
	// Continuous is an unbounded numeric measurement.
	Continuous ColumnType = iota
	// Ordinal is a numeric column on a small ordered scale (counts, scores).
	Ordinal
	// Binary is a two-level categorical column.
	Binary
	// Nominal is an unordered categorical column with more than two levels.
	Nominal
	// OrderedFactor is an ordered categorical column with more than two levels.
	OrderedFactor
)

func (t ColumnType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Ordinal:
		return "ordinal"
	case Binary:
		return "binary"
	case Nominal:
		return "nominal"
	case OrderedFactor:
		return "ordered_factor"
	}
	return "unknown"
}

// ParseColumnType maps a config string to a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "continuous":
		return Continuous, nil
	case "ordinal":
		return Ordinal, nil
	case "binary":
		return Binary, nil
	case "nominal":
		return Nominal, nil
	case "ordered_factor":
		return OrderedFactor, nil
	}
	return 0, fmt.Errorf("%w: unknown column type %q", ErrSchemaMismatch, s)
}

// Categorical reports whether values of this type are level codes.
func (t ColumnType) Categorical() bool {
	return t == Binary || t == Nominal || t == OrderedFactor
}

// Column describes one column of the shared schema.
type Column struct {
	Name string
	Type ColumnType
	// Levels holds the category names for categorical columns; the stored
	// value of a cell is the index into this slice.
	Levels []string
}

// Schema is the fixed column layout shared by every record of a Dataset.
// Exactly one column is the label (binary, levels {No, Yes}) and one column
// is the identifier, which is never used as a feature.
type Schema struct {
	Columns []Column
	Label   string
	ID      string
}

// Provenance tags which side of the partition a dataset came from, so fitting
// stages can reject validation rows defensively.
type Provenance int

const (
	OriginSource Provenance = iota
	OriginTrain
	OriginValidation
)

// Dataset is an ordered sequence of records over a fixed schema. Missing
// values are stored as NaN; categorical cells hold level indices.
type Dataset struct {
	Schema *Schema
	IDs    []string
	Rows   [][]float64
	Origin Provenance
}

// LabelLevels are the only admissible label categories.
var LabelLevels = []string{"No", "Yes"}

// ColumnIndex returns the position of name in the schema, or -1.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FeatureNames lists every column that is neither the label nor the identifier.
func (s *Schema) FeatureNames() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == s.Label || c.Name == s.ID {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}

// Validate checks the structural invariants of the schema: label present and
// binary, identifier present when declared, no duplicate column names,
// categorical columns carrying level tables.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if seen[c.Name] {
			return NewSchemaError(c.Name, "declared twice")
		}
		seen[c.Name] = true
		if c.Type == Binary && len(c.Levels) != 2 {
			return NewSchemaError(c.Name, "binary column must have exactly 2 levels")
		}
		if (c.Type == Nominal || c.Type == OrderedFactor) && len(c.Levels) < 3 {
			return NewSchemaError(c.Name, "multi-level column must have more than 2 levels")
		}
	}
	li := s.ColumnIndex(s.Label)
	if li < 0 {
		return NewSchemaError(s.Label, "label column absent")
	}
	if s.Columns[li].Type != Binary {
		return NewSchemaError(s.Label, "label column must be binary")
	}
	if s.ID != "" && s.ColumnIndex(s.ID) < 0 {
		return NewSchemaError(s.ID, "identifier column absent")
	}
	return nil
}

// LabelIndex returns the label column position.
func (ds *Dataset) LabelIndex() int {
	return ds.Schema.ColumnIndex(ds.Schema.Label)
}

// Labels extracts the label of every record as 0/1.
func (ds *Dataset) Labels() []int {
	li := ds.LabelIndex()
	out := make([]int, len(ds.Rows))
	for i, row := range ds.Rows {
		out[i] = int(row[li])
	}
	return out
}

// Len returns the record count.
func (ds *Dataset) Len() int { return len(ds.Rows) }

// Validate checks the dataset invariants: uniform row width and a non-missing
// binary label on every record.
func (ds *Dataset) Validate() error {
	if err := ds.Schema.Validate(); err != nil {
		return err
	}
	width := len(ds.Schema.Columns)
	li := ds.LabelIndex()
	for i, row := range ds.Rows {
		if len(row) != width {
			return NewSchemaError(ds.Schema.Label, fmt.Sprintf("row %d has %d cells, schema has %d", i, len(row), width))
		}
		v := row[li]
		if math.IsNaN(v) || (v != 0 && v != 1) {
			return NewSchemaError(ds.Schema.Label, fmt.Sprintf("row %d label is %v", i, v))
		}
	}
	return nil
}

// Subset returns a new dataset holding copies of the rows at idx, tagged with
// the given provenance.
func (ds *Dataset) Subset(idx []int, origin Provenance) *Dataset {
	out := &Dataset{Schema: ds.Schema, Origin: origin}
	out.Rows = make([][]float64, len(idx))
	out.IDs = make([]string, len(idx))
	for i, j := range idx {
		row := make([]float64, len(ds.Rows[j]))
		copy(row, ds.Rows[j])
		out.Rows[i] = row
		if len(ds.IDs) > j {
			out.IDs[i] = ds.IDs[j]
		}
	}
	return out
}

// Clone deep-copies the dataset, preserving provenance.
func (ds *Dataset) Clone() *Dataset {
	idx := make([]int, len(ds.Rows))
	for i := range idx {
		idx[i] = i
	}
	return ds.Subset(idx, ds.Origin)
}

// HasMissing reports whether any cell of the named columns is NaN.
func (ds *Dataset) HasMissing(columns []string) bool {
	for _, name := range columns {
		ci := ds.Schema.ColumnIndex(name)
		if ci < 0 {
			continue
		}
		for _, row := range ds.Rows {
			if math.IsNaN(row[ci]) {
				return true
			}
		}
	}
	return false
}

// DropIncomplete returns the complete-case subset of ds over the given
// columns: every row with a NaN in any of them is discarded.
func (ds *Dataset) DropIncomplete(columns []string) *Dataset {
	cols := make([]int, 0, len(columns))
	for _, name := range columns {
		if ci := ds.Schema.ColumnIndex(name); ci >= 0 {
			cols = append(cols, ci)
		}
	}
	keep := make([]int, 0, len(ds.Rows))
	for i, row := range ds.Rows {
		ok := true
		for _, ci := range cols {
			if math.IsNaN(row[ci]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return ds.Subset(keep, ds.Origin)
}
