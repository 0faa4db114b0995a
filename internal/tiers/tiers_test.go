package tiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

const sampleConfig = `
label: outcome
id: patient_id
columns:
  - name: patient_id
    type: continuous
  - name: age
    type: continuous
  - name: grade
    type: ordered_factor
    levels: [low, mid, high]
  - name: amh
    type: continuous
  - name: outcome
    type: binary
    levels: ["No", "Yes"]
tiers:
  - name: clinical
    columns: [age, grade]
  - name: biochemical
    columns: [age, grade, amh]
`

func TestParseConfig(t *testing.T) {
	schema, reg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "outcome", schema.Label)
	assert.Equal(t, "patient_id", schema.ID)
	require.Len(t, schema.Columns, 5)
	assert.Equal(t, data.OrderedFactor, schema.Columns[2].Type)

	require.Len(t, reg.Tiers, 2)
	tier, ok := reg.Get("biochemical")
	require.True(t, ok)
	assert.Equal(t, []string{"age", "grade", "amh"}, tier.Columns)

	_, ok = reg.Get("imaging")
	assert.False(t, ok)
}

func TestDumpRoundTrip(t *testing.T) {
	schema, reg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	raw, err := Dump(schema, reg)
	require.NoError(t, err)

	schema2, reg2, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, schema, schema2)
	assert.Equal(t, reg.Tiers, reg2.Tiers)
}

func TestValidateRejectsBrokenNesting(t *testing.T) {
	schema, _, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	_, err = New(schema, []Tier{
		{Name: "clinical", Columns: []string{"age", "grade"}},
		{Name: "biochemical", Columns: []string{"age", "amh"}}, // drops grade
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, data.ErrSchemaMismatch)
}

func TestValidateRejectsNonFeatureColumns(t *testing.T) {
	schema, _, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	for _, bad := range []string{"outcome", "patient_id", "unknown"} {
		_, err := New(schema, []Tier{{Name: "t", Columns: []string{bad}}})
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, data.ErrSchemaMismatch)
	}
}

func TestValidateRejectsEmptyRegistry(t *testing.T) {
	schema, _, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	_, err = New(schema, nil)
	assert.ErrorIs(t, err, data.ErrSchemaMismatch)

	_, err = New(schema, []Tier{{Name: "", Columns: []string{"age"}}})
	assert.ErrorIs(t, err, data.ErrSchemaMismatch)

	_, err = New(schema, []Tier{{Name: "t", Columns: nil}})
	assert.ErrorIs(t, err, data.ErrSchemaMismatch)
}
