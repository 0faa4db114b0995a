package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/compare"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/eval"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/harness"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/impute"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/models"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/train"
)

func sampleResult(t *testing.T) *harness.Result {
	t.Helper()
	X := [][]float64{{-2, 0}, {-1.5, 1}, {1.5, 0}, {2, 1}, {-1.8, 0.5}, {1.8, -0.5}}
	y := []int{0, 0, 1, 1, 0, 1}
	m := models.NewLogisticRegression()
	require.NoError(t, m.Fit(X, y))

	key := compare.Key{Algorithm: "logistic", Tier: "wide"}
	fitted := &train.Fitted{
		Algorithm: "logistic",
		Tier:      "wide",
		Columns:   []string{"x1", "x2"},
		Features:  []string{"x1", "x2"},
		Model:     m,
		Params:    train.Params{},
		CVScore:   0.93,
		Ranked: []train.Importance{
			{Feature: "x1", Score: 0.9},
			{Feature: "x2", Score: 0.1},
		},
	}
	table, err := compare.Aggregate([]compare.Row{
		{
			Key:     key,
			Metrics: eval.MetricBundle{Sensitivity: 1, Specificity: 1, F1: 1, AUC: 1, N: 6},
			Params:  fitted.Params,
			CVScore: fitted.CVScore,
		},
		{
			Key:        compare.Key{Algorithm: "logistic", Tier: "narrow"},
			SkipReason: "insufficient data",
		},
	})
	require.NoError(t, err)

	ds := data.GenerateClinical(20, 0.4, 0, 1)
	return &harness.Result{
		Manifest: harness.Manifest{
			RunID:       "test-run",
			Seed:        4,
			Variant:     "primary",
			Fingerprint: "abc",
		},
		Table:      table,
		Predictors: map[compare.Key]*train.Fitted{key: fitted},
		Completed:  ds,
	}
}

func TestBundleRoundTrip(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "models.gob")

	b := NewBundle(res)
	require.NoError(t, SaveBundle(path, b))

	got, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, b.Manifest.Fingerprint, got.Manifest.Fingerprint)
	assert.Equal(t, b.Manifest.Seed, got.Manifest.Seed)

	fitted, ok := got.Predictors["logistic/wide"]
	require.True(t, ok)
	assert.Equal(t, "wide", fitted.Tier)
	assert.Equal(t, []string{"x1", "x2"}, fitted.Columns)

	probe := [][]float64{{-2, 0}, {2, 0}}
	want := res.Predictors[compare.Key{Algorithm: "logistic", Tier: "wide"}].PredictProba(probe)
	assert.Equal(t, want, fitted.PredictProba(probe))
}

func TestWriteComparisonCSV(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "comparison.csv")
	require.NoError(t, WriteComparisonCSV(path, res.Table))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, "algorithm", records[0][0])
	assert.Equal(t, "logistic", records[1][0])
	assert.Equal(t, "wide", records[1][1])
	assert.Empty(t, records[1][9])
	assert.Equal(t, "insufficient data", records[2][9])
	assert.Empty(t, records[2][2]) // skipped cells carry no metrics
}

func TestWriteDeltasCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deltas.csv")
	deltas := []compare.Delta{{
		Key:         compare.Key{Algorithm: "logistic", Tier: "wide"},
		Sensitivity: 0.05, Specificity: -0.02, F1: 0.01, AUC: 0.0,
		PrimaryN: 40, VariantN: 32,
	}}
	require.NoError(t, WriteDeltasCSV(path, deltas))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0.050000", records[1][2])
	assert.Equal(t, "32", records[1][7])
}

func TestWriteWorkbook(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "comparison.xlsx")
	require.NoError(t, WriteWorkbook(path, res))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Contains(t, wb.GetSheetList(), "comparison")
	assert.Contains(t, wb.GetSheetList(), "models")

	cell, err := wb.GetCellValue("comparison", "A2")
	require.NoError(t, err)
	assert.Equal(t, "logistic", cell)

	feature, err := wb.GetCellValue("models", "F2")
	require.NoError(t, err)
	assert.Equal(t, "x1", feature)
}

func TestWriteManifest(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, res.Manifest))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got harness.Manifest
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, res.Manifest.RunID, got.RunID)
	assert.Equal(t, res.Manifest.Fingerprint, got.Fingerprint)
}

func TestPlots(t *testing.T) {
	res := sampleResult(t)
	dir := t.TempDir()

	curve := filepath.Join(dir, "tier_auc.png")
	require.NoError(t, PlotTierCurve(curve, res))
	info, err := os.Stat(curve)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	st := &impute.Stability{
		Cells: []impute.CellSpread{
			{Row: 0, Column: "amh", Values: []float64{1, 2}, Mean: 1.5, StdDev: 0.5},
			{Row: 3, Column: "bmi", Values: []float64{20, 22}, Mean: 21, StdDev: 1},
		},
		Draws:     2,
		CellCount: 2,
	}
	spread := filepath.Join(dir, "spread.png")
	require.NoError(t, PlotImputationSpread(spread, st))
	info, err = os.Stat(spread)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
