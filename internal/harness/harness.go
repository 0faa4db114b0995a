// Package harness wires the pipeline end to end: partition, impute, train
// over the tiers × algorithms cross product, evaluate, and aggregate. Each
// stage is sequential; parallelism lives inside the trainer's grid search.
package harness

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/compare"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/eval"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/impute"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/tiers"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/train"
)

// Variant selects which sensitivity pipeline to run.
type Variant int

const (
	// VariantPrimary is the main pipeline: impute, then train on the
	// designated completed table.
	VariantPrimary Variant = iota
	// VariantCompleteCase skips imputation and trains only on rows with no
	// missing value in any tier column.
	VariantCompleteCase
	// VariantBalanced imputes, then down-samples the majority label class
	// before cross-validation.
	VariantBalanced
)

func (v Variant) String() string {
	switch v {
	case VariantCompleteCase:
		return "complete_case"
	case VariantBalanced:
		return "class_balanced"
	}
	return "primary"
}

// ParseVariant maps a flag string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "primary":
		return VariantPrimary, nil
	case "complete_case":
		return VariantCompleteCase, nil
	case "class_balanced":
		return VariantBalanced, nil
	}
	return VariantPrimary, fmt.Errorf("unknown variant %q", s)
}

// Options is the immutable run configuration.
type Options struct {
	TrainFraction float64
	Seed          int64
	Folds         int
	TargetMetric  string
	Imputations   int // multiple-imputation draws; draw 0 is the analysis table
	Variant       Variant
	Algorithms    []train.AlgorithmSpec
	ImputeRounds  int
}

func (o Options) withDefaults() Options {
	if o.TrainFraction == 0 {
		o.TrainFraction = 0.7
	}
	if o.Folds == 0 {
		o.Folds = 5
	}
	if o.TargetMetric == "" {
		o.TargetMetric = "auc"
	}
	if o.Imputations <= 0 {
		o.Imputations = 5
	}
	if len(o.Algorithms) == 0 {
		o.Algorithms = train.DefaultAlgorithms()
	}
	return o
}

// Result is everything a run produces.
type Result struct {
	Manifest   Manifest
	Table      *compare.Table
	Predictors map[compare.Key]*train.Fitted
	Completed  *data.Dataset   // training table the predictors were fit on
	Draws      []*data.Dataset // all multiple-imputation draws (primary/balanced only)
	Stability  *impute.Stability
	Train      *data.Dataset
	Validation *data.Dataset
}

// Run executes the full pipeline. Structural failures (schema, insufficient
// data, leakage) abort; per-cell training or evaluation failures become
// skipped comparison rows with an explicit reason.
func Run(ds *data.Dataset, reg *tiers.Registry, opts Options, logger *zap.Logger) (*Result, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if err := reg.Validate(ds.Schema); err != nil {
		return nil, err
	}

	res := &Result{
		Manifest:   NewManifest(ds, reg, opts),
		Predictors: map[compare.Key]*train.Fitted{},
	}
	logger.Info("run started",
		zap.String("run_id", res.Manifest.RunID),
		zap.String("variant", opts.Variant.String()),
		zap.Int64("seed", opts.Seed),
		zap.Int("records", ds.Len()),
	)

	trainSet, validSet, err := data.Split(ds, opts.TrainFraction, opts.Seed)
	if err != nil {
		return nil, err
	}
	res.Train, res.Validation = trainSet, validSet
	logger.Info("partitioned",
		zap.Int("train", trainSet.Len()),
		zap.Int("validation", validSet.Len()),
	)

	widest := reg.Tiers[len(reg.Tiers)-1]
	completed, err := res.prepareTraining(trainSet, widest.Columns, opts, logger)
	if err != nil {
		return nil, err
	}
	res.Completed = completed

	cfg := train.Config{Folds: opts.Folds, TargetMetric: opts.TargetMetric}
	var rows []compare.Row
	cell := int64(0)
	for _, spec := range opts.Algorithms {
		for _, tier := range reg.Tiers {
			cell++
			key := compare.Key{Algorithm: spec.Name, Tier: tier.Name}
			cellCfg := cfg
			cellCfg.Seed = opts.Seed + 10007*cell

			fitted, err := train.Run(completed, tier.Name, tier.Columns, spec, cellCfg)
			if err != nil {
				if data.IsFatal(err) {
					return nil, err
				}
				logger.Warn("cell skipped at training",
					zap.String("algorithm", spec.Name),
					zap.String("tier", tier.Name),
					zap.Int64("seed", cellCfg.Seed),
					zap.Error(err),
				)
				rows = append(rows, compare.Row{Key: key, SkipReason: err.Error()})
				continue
			}
			for _, ex := range fitted.Excluded {
				logger.Warn("configuration excluded",
					zap.String("algorithm", spec.Name),
					zap.String("tier", tier.Name),
					zap.String("params", ex.Params.String()),
					zap.Int64("seed", cellCfg.Seed),
					zap.String("reason", ex.Reason),
				)
			}

			bundle, err := eval.Evaluate(fitted, validSet, tier.Columns)
			if err != nil {
				logger.Warn("cell skipped at evaluation",
					zap.String("algorithm", spec.Name),
					zap.String("tier", tier.Name),
					zap.Error(err),
				)
				rows = append(rows, compare.Row{Key: key, SkipReason: err.Error()})
				continue
			}
			res.Predictors[key] = fitted
			rows = append(rows, compare.Row{
				Key:     key,
				Metrics: bundle,
				Params:  fitted.Params,
				CVScore: fitted.CVScore,
			})
			logger.Info("cell trained",
				zap.String("algorithm", spec.Name),
				zap.String("tier", tier.Name),
				zap.String("params", fitted.Params.String()),
				zap.Float64("cv_score", fitted.CVScore),
				zap.Float64("auc", bundle.AUC),
				zap.Float64("sensitivity", bundle.Sensitivity),
				zap.Float64("specificity", bundle.Specificity),
				zap.Float64("f1", bundle.F1),
				zap.Int("n", bundle.N),
			)
		}
	}

	table, err := compare.Aggregate(rows)
	if err != nil {
		return nil, err
	}
	res.Table = table
	logger.Info("run finished", zap.String("run_id", res.Manifest.RunID), zap.Int("cells", len(rows)))
	return res, nil
}

// prepareTraining produces the table the trainer consumes, per variant.
func (res *Result) prepareTraining(trainSet *data.Dataset, widestColumns []string, opts Options, logger *zap.Logger) (*data.Dataset, error) {
	if opts.Variant == VariantCompleteCase {
		cc := trainSet.DropIncomplete(widestColumns)
		logger.Info("complete-case training table",
			zap.Int("kept", cc.Len()),
			zap.Int("dropped", trainSet.Len()-cc.Len()),
		)
		if cc.Len() == 0 {
			return nil, fmt.Errorf("%w: no complete training rows", data.ErrInsufficientData)
		}
		return cc, nil
	}

	iopts := impute.Options{Seed: opts.Seed + 1, MaxRounds: opts.ImputeRounds}
	draws, failures, err := impute.MultipleComplete(trainSet, iopts, opts.Imputations)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		logger.Warn("imputation draw failed", zap.Int64("seed", iopts.Seed), zap.Error(f))
	}
	res.Draws = draws
	res.Stability = impute.NewStability(trainSet, draws)
	logger.Info("imputation finished",
		zap.Int("draws", len(draws)),
		zap.Int("imputed_cells", res.Stability.CellCount),
		zap.Float64("mean_sd", res.Stability.MeanSD),
	)

	completed := draws[0]
	if opts.Variant == VariantBalanced {
		balanced := data.DownsampleMajority(completed, opts.Seed+2)
		logger.Info("class-balanced training table",
			zap.Int("before", completed.Len()),
			zap.Int("after", balanced.Len()),
		)
		return balanced, nil
	}
	return completed, nil
}
