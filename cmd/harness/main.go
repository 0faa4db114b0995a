package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/compare"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/export"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/harness"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/impute"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/tiers"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/train"
	"github.com/ErickNavarroD/MachineLearningPCOS/pkg/utils"
)

func main() {
	defer utils.Sync()
	root := &cobra.Command{
		Use:           "harness",
		Short:         "Tiered screening-classifier experiment harness",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), demoCmd(), forestSizeCmd())
	if err := root.Execute(); err != nil {
		utils.Logger().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		dataPath      string
		configPath    string
		outDir        string
		seed          int64
		trainFraction float64
		folds         int
		metric        string
		imputations   int
		variantName   string
		withVariants  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write all artifacts",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := utils.Named("harness")
			schema, reg, err := tiers.Load(configPath)
			if err != nil {
				return err
			}
			ds, err := data.LoadCSV(dataPath, schema)
			if err != nil {
				return err
			}
			variant, err := harness.ParseVariant(variantName)
			if err != nil {
				return err
			}
			opts := harness.Options{
				TrainFraction: trainFraction,
				Seed:          seed,
				Folds:         folds,
				TargetMetric:  metric,
				Imputations:   imputations,
				Variant:       variant,
			}
			res, err := harness.Run(ds, reg, opts, logger)
			if err != nil {
				return err
			}
			if err := writeArtifacts(outDir, res); err != nil {
				return err
			}
			if withVariants && variant == harness.VariantPrimary {
				if err := runVariants(ds, reg, opts, res, outDir, logger); err != nil {
					return err
				}
			}
			logger.Info("artifacts written", zap.String("dir", outDir))
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "data/screening.csv", "input CSV")
	cmd.Flags().StringVar(&configPath, "config", "config/harness.yaml", "schema and tier config YAML")
	cmd.Flags().StringVar(&outDir, "out", "out", "artifact directory")
	cmd.Flags().Int64Var(&seed, "seed", 1, "base random seed")
	cmd.Flags().Float64Var(&trainFraction, "train-fraction", 0.7, "training split fraction")
	cmd.Flags().IntVar(&folds, "folds", 5, "cross-validation folds")
	cmd.Flags().StringVar(&metric, "metric", "auc", "model-selection metric: auc|f1|sensitivity|specificity")
	cmd.Flags().IntVar(&imputations, "imputations", 5, "multiple-imputation draws")
	cmd.Flags().StringVar(&variantName, "variant", "primary", "pipeline variant: primary|complete_case|class_balanced")
	cmd.Flags().BoolVar(&withVariants, "variants", false, "also run complete-case and class-balanced variants and write deltas")
	return cmd
}

func writeArtifacts(outDir string, res *harness.Result) error {
	prefix := res.Manifest.Variant
	if err := export.WriteManifest(filepath.Join(outDir, prefix+"_manifest.json"), res.Manifest); err != nil {
		return err
	}
	if err := export.WriteComparisonCSV(filepath.Join(outDir, prefix+"_comparison.csv"), res.Table); err != nil {
		return err
	}
	if err := export.WriteWorkbook(filepath.Join(outDir, prefix+"_comparison.xlsx"), res); err != nil {
		return err
	}
	if err := export.SaveBundle(filepath.Join(outDir, prefix+"_models.gob"), export.NewBundle(res)); err != nil {
		return err
	}
	if err := export.PlotTierCurve(filepath.Join(outDir, prefix+"_tier_auc.png"), res); err != nil {
		return err
	}
	if res.Stability != nil && res.Stability.CellCount > 0 {
		if err := export.PlotImputationSpread(filepath.Join(outDir, prefix+"_imputation_spread.png"), res.Stability); err != nil {
			return err
		}
	}
	return nil
}

// runVariants reruns the pipeline under the two sensitivity variants with the
// same seed and writes their tables plus metric deltas against the primary run.
func runVariants(ds *data.Dataset, reg *tiers.Registry, opts harness.Options, primary *harness.Result, outDir string, logger *zap.Logger) error {
	for _, v := range []harness.Variant{harness.VariantCompleteCase, harness.VariantBalanced} {
		vopts := opts
		vopts.Variant = v
		res, err := harness.Run(ds, reg, vopts, logger)
		if err != nil {
			return fmt.Errorf("%s variant: %w", v, err)
		}
		if err := writeArtifacts(outDir, res); err != nil {
			return err
		}
		deltas := compare.CompareTables(primary.Table, res.Table)
		if err := export.WriteDeltasCSV(filepath.Join(outDir, v.String()+"_deltas.csv"), deltas); err != nil {
			return err
		}
	}
	return nil
}

func demoCmd() *cobra.Command {
	var (
		outDir   string
		records  int
		posRate  float64
		missRate float64
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic screening dataset and matching config",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			schema := data.ClinicalSchema()
			cols := data.ClinicalTierColumns()
			reg, err := tiers.New(schema, []tiers.Tier{
				{Name: "clinical", Columns: cols["clinical"]},
				{Name: "biochemical", Columns: cols["biochemical"]},
				{Name: "ultrasound", Columns: cols["ultrasound"]},
			})
			if err != nil {
				return err
			}
			ds := data.GenerateClinical(records, posRate, missRate, seed)
			if err := data.WriteCSV(filepath.Join(outDir, "screening.csv"), ds); err != nil {
				return err
			}
			raw, err := tiers.Dump(schema, reg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, "harness.yaml"), raw, 0o644); err != nil {
				return err
			}
			utils.Logger().Info("demo inputs written",
				zap.String("dir", outDir),
				zap.Int("records", records),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "data", "output directory")
	cmd.Flags().IntVar(&records, "records", 536, "record count")
	cmd.Flags().Float64Var(&posRate, "pos-rate", 0.32, "positive label rate")
	cmd.Flags().Float64Var(&missRate, "miss-rate", 0.05, "missing-cell rate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "generator seed")
	return cmd
}

func forestSizeCmd() *cobra.Command {
	var (
		dataPath   string
		configPath string
		tierName   string
		sizes      []int
		margin     float64
		folds      int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "forest-size",
		Short: "Probe cross-validated AUC against candidate forest sizes",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger := utils.Named("forest-size")
			schema, reg, err := tiers.Load(configPath)
			if err != nil {
				return err
			}
			ds, err := data.LoadCSV(dataPath, schema)
			if err != nil {
				return err
			}
			tier, ok := reg.Get(tierName)
			if !ok {
				tier = reg.Tiers[len(reg.Tiers)-1]
			}
			trainSet, _, err := data.Split(ds, 0.7, seed)
			if err != nil {
				return err
			}
			model, err := impute.Fit(trainSet, impute.Options{Seed: seed + 1})
			if err != nil {
				return err
			}
			completed, err := model.Complete(trainSet)
			if err != nil {
				return err
			}
			enc, err := data.NewEncoding(completed.Schema, tier.Columns)
			if err != nil {
				return err
			}
			X, y := enc.Matrix(completed)
			chosen, scores, err := train.ForestSizeCheck(X, y, sizes, margin, train.Config{Folds: folds, Seed: seed})
			if err != nil {
				return err
			}
			for i, s := range sizes {
				logger.Info("candidate scored", zap.Int("trees", s), zap.Float64("cv_auc", scores[i]))
			}
			logger.Info("size chosen", zap.Int("trees", chosen), zap.Float64("margin", margin))
			fmt.Println(chosen)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "data/screening.csv", "input CSV")
	cmd.Flags().StringVar(&configPath, "config", "config/harness.yaml", "schema and tier config YAML")
	cmd.Flags().StringVar(&tierName, "tier", "", "tier to probe (default: widest)")
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{100, 300, 600}, "candidate forest sizes, ascending")
	cmd.Flags().Float64Var(&margin, "margin", 0.002, "improvement below which the smaller size wins")
	cmd.Flags().IntVar(&folds, "folds", 5, "cross-validation folds")
	cmd.Flags().Int64Var(&seed, "seed", 1, "base random seed")
	return cmd
}
