package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// missing CSV cell markers, matching what the upstream cleaning step emits.
func isMissingCell(s string) bool {
	return s == "" || s == "NA" || s == "NaN" || s == "null"
}

// LoadCSV reads a cleaned tabular dataset from path against a declared schema.
// The header row must contain every schema column; extra CSV columns are
// ignored. Categorical cells are matched against the column's level table and
// an unknown level is a schema mismatch. The label must be present and
// non-missing on every row.
func LoadCSV(path string, schema *Schema) (*Dataset, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrInsufficientData, path)
	}

	header := records[0]
	csvIdx := make([]int, len(schema.Columns))
	for i, col := range schema.Columns {
		csvIdx[i] = -1
		for j, h := range header {
			if h == col.Name {
				csvIdx[i] = j
				break
			}
		}
		if csvIdx[i] < 0 {
			return nil, NewSchemaError(col.Name, "not found in CSV header")
		}
	}

	ds := &Dataset{Schema: schema, Origin: OriginSource}
	idIdx := schema.ColumnIndex(schema.ID)
	for rowNum, rec := range records[1:] {
		row := make([]float64, len(schema.Columns))
		for i, col := range schema.Columns {
			cell := rec[csvIdx[i]]
			if col.Name == schema.ID {
				// Identifier stays a string; the cell slot holds the row
				// ordinal and is never used as a feature.
				row[i] = float64(rowNum)
				continue
			}
			if isMissingCell(cell) {
				if col.Name == schema.Label {
					return nil, NewSchemaError(col.Name, fmt.Sprintf("missing label on row %d", rowNum+1))
				}
				row[i] = math.NaN()
				continue
			}
			if col.Type.Categorical() {
				code := -1
				for l, lv := range col.Levels {
					if lv == cell {
						code = l
						break
					}
				}
				if code < 0 {
					return nil, NewSchemaError(col.Name, fmt.Sprintf("unknown level %q on row %d", cell, rowNum+1))
				}
				row[i] = float64(code)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, NewSchemaError(col.Name, fmt.Sprintf("non-numeric value %q on row %d", cell, rowNum+1))
			}
			row[i] = v
		}
		if idIdx >= 0 {
			ds.IDs = append(ds.IDs, rec[csvIdx[idIdx]])
		} else {
			ds.IDs = append(ds.IDs, strconv.Itoa(rowNum+1))
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteCSV writes ds back out in the same shape LoadCSV reads, with level
// names for categorical cells and empty cells for missing values.
func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, len(ds.Schema.Columns))
	for i, col := range ds.Schema.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for ri, row := range ds.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			col := ds.Schema.Columns[i]
			switch {
			case col.Name == ds.Schema.ID && len(ds.IDs) > ri:
				rec[i] = ds.IDs[ri]
			case math.IsNaN(v):
				rec[i] = ""
			case col.Type.Categorical():
				rec[i] = col.Levels[int(v)]
			default:
				rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
