package data

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRoundTrip(t *testing.T) {
	ds := GenerateClinical(40, 0.4, 0.15, 7)
	path := filepath.Join(t.TempDir(), "screening.csv")
	require.NoError(t, WriteCSV(path, ds))

	got, err := LoadCSV(path, ds.Schema)
	require.NoError(t, err)
	require.Equal(t, ds.Len(), got.Len())
	assert.Equal(t, ds.IDs, got.IDs)

	idIdx := ds.Schema.ColumnIndex(ds.Schema.ID)
	for i, row := range ds.Rows {
		for j, v := range row {
			if j == idIdx {
				continue
			}
			if math.IsNaN(v) {
				assert.True(t, math.IsNaN(got.Rows[i][j]), "row %d col %d", i, j)
				continue
			}
			assert.Equal(t, v, got.Rows[i][j], "row %d col %d", i, j)
		}
	}
}

func TestLoadCSVUnknownLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	raw := "id,grade,outcome\np1,ultra,Yes\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	schema := &Schema{
		Label: "outcome",
		ID:    "id",
		Columns: []Column{
			{Name: "id", Type: Continuous},
			{Name: "grade", Type: OrderedFactor, Levels: []string{"low", "mid", "high"}},
			{Name: "outcome", Type: Binary, Levels: LabelLevels},
		},
	}
	_, err := LoadCSV(path, schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadCSVMissingLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	raw := "id,x,outcome\np1,1.5,\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	schema := &Schema{
		Label: "outcome",
		ID:    "id",
		Columns: []Column{
			{Name: "id", Type: Continuous},
			{Name: "x", Type: Continuous},
			{Name: "outcome", Type: Binary, Levels: LabelLevels},
		},
	}
	_, err := LoadCSV(path, schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	raw := "id,outcome\np1,No\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	schema := &Schema{
		Label: "outcome",
		ID:    "id",
		Columns: []Column{
			{Name: "id", Type: Continuous},
			{Name: "x", Type: Continuous},
			{Name: "outcome", Type: Binary, Levels: LabelLevels},
		},
	}
	_, err := LoadCSV(path, schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
