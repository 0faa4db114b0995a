package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/compare"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/harness"
)

// WriteComparisonCSV writes the comparison table in its aggregation order.
// Skipped cells keep their row, with the skip reason in the last column.
func WriteComparisonCSV(path string, t *compare.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"algorithm", "tier", "sensitivity", "specificity", "f1", "auc", "n", "cv_score", "params", "skip_reason"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{r.Key.Algorithm, r.Key.Tier}
		if r.Skipped() {
			rec = append(rec, "", "", "", "", "", "", "", r.SkipReason)
		} else {
			rec = append(rec,
				fmt.Sprintf("%.6f", r.Metrics.Sensitivity),
				fmt.Sprintf("%.6f", r.Metrics.Specificity),
				fmt.Sprintf("%.6f", r.Metrics.F1),
				fmt.Sprintf("%.6f", r.Metrics.AUC),
				fmt.Sprintf("%d", r.Metrics.N),
				fmt.Sprintf("%.6f", r.CVScore),
				r.Params.String(),
				"",
			)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteWorkbook writes a two-sheet xlsx: the comparison table plus a models
// sheet with the winning configuration and top feature importances per cell.
func WriteWorkbook(path string, res *harness.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	wb := excelize.NewFile()
	defer wb.Close()

	const cmpSheet = "comparison"
	wb.SetSheetName(wb.GetSheetName(0), cmpSheet)
	header := []interface{}{"algorithm", "tier", "sensitivity", "specificity", "f1", "auc", "n", "cv_score", "params", "skip_reason"}
	if err := wb.SetSheetRow(cmpSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range res.Table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{r.Key.Algorithm, r.Key.Tier}
		if r.Skipped() {
			row = append(row, nil, nil, nil, nil, nil, nil, nil, r.SkipReason)
		} else {
			row = append(row, r.Metrics.Sensitivity, r.Metrics.Specificity, r.Metrics.F1,
				r.Metrics.AUC, r.Metrics.N, r.CVScore, r.Params.String(), nil)
		}
		if err := wb.SetSheetRow(cmpSheet, cell, &row); err != nil {
			return err
		}
	}

	const mdlSheet = "models"
	if _, err := wb.NewSheet(mdlSheet); err != nil {
		return err
	}
	mh := []interface{}{"algorithm", "tier", "params", "cv_score", "rank", "feature", "importance"}
	if err := wb.SetSheetRow(mdlSheet, "A1", &mh); err != nil {
		return err
	}
	line := 2
	for _, r := range res.Table.Rows {
		fitted, ok := res.Predictors[r.Key]
		if !ok {
			continue
		}
		for rank, imp := range fitted.Ranked {
			cell, _ := excelize.CoordinatesToCellName(1, line)
			row := []interface{}{r.Key.Algorithm, r.Key.Tier, fitted.Params.String(),
				fitted.CVScore, rank + 1, imp.Feature, imp.Score}
			if err := wb.SetSheetRow(mdlSheet, cell, &row); err != nil {
				return err
			}
			line++
		}
	}
	return wb.SaveAs(path)
}

// WriteDeltasCSV writes variant-minus-primary metric deltas.
func WriteDeltasCSV(path string, deltas []compare.Delta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"algorithm", "tier", "d_sensitivity", "d_specificity", "d_f1", "d_auc", "primary_n", "variant_n"}); err != nil {
		return err
	}
	for _, d := range deltas {
		rec := []string{
			d.Key.Algorithm, d.Key.Tier,
			fmt.Sprintf("%.6f", d.Sensitivity),
			fmt.Sprintf("%.6f", d.Specificity),
			fmt.Sprintf("%.6f", d.F1),
			fmt.Sprintf("%.6f", d.AUC),
			fmt.Sprintf("%d", d.PrimaryN),
			fmt.Sprintf("%d", d.VariantN),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteManifest writes the run manifest as indented JSON.
func WriteManifest(path string, m harness.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
