package export

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/harness"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/impute"
)

// PlotTierCurve draws one metric line per algorithm across the tier sequence,
// so the incremental value of each collection level is visible at a glance.
func PlotTierCurve(path string, res *harness.Result) error {
	p := plot.New()
	p.Title.Text = "Validation AUC by feature tier"
	p.X.Label.Text = "Tier"
	p.Y.Label.Text = "AUC"
	p.Y.Min = 0
	p.Y.Max = 1

	tierIdx := map[string]int{}
	var tierNames []string
	var algos []string
	seen := map[string]bool{}
	for _, r := range res.Table.Rows {
		if _, ok := tierIdx[r.Key.Tier]; !ok {
			tierIdx[r.Key.Tier] = len(tierNames)
			tierNames = append(tierNames, r.Key.Tier)
		}
		if !seen[r.Key.Algorithm] {
			seen[r.Key.Algorithm] = true
			algos = append(algos, r.Key.Algorithm)
		}
	}
	p.NominalX(tierNames...)

	var args []interface{}
	for _, algo := range algos {
		var pts plotter.XYs
		for _, r := range res.Table.Rows {
			if r.Key.Algorithm != algo || r.Skipped() {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(tierIdx[r.Key.Tier]), Y: r.Metrics.AUC})
		}
		if len(pts) == 0 {
			continue
		}
		args = append(args, algo, pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// PlotImputationSpread draws the per-cell standard deviation across the
// multiple-imputation draws, ordered by cell, as a stability diagnostic.
func PlotImputationSpread(path string, st *impute.Stability) error {
	p := plot.New()
	p.Title.Text = "Imputation spread across draws"
	p.X.Label.Text = "Imputed cell"
	p.Y.Label.Text = "Std dev"

	pts := make(plotter.XYs, len(st.Cells))
	for i, c := range st.Cells {
		pts[i] = plotter.XY{X: float64(i), Y: c.StdDev}
	}
	if err := plotutil.AddScatters(p, "cells", pts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
