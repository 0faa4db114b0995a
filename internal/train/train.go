// Package train runs the cross-validated hyperparameter search for one
// (algorithm family, feature tier) pair. Folds are stratified on the label
// and fixed before the search; configurations are scored independently (and
// in parallel) into an index-addressed slice, so parallel execution cannot
// change which configuration is selected.
package train

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/eval"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/models"
)

// Config is the shared, immutable training configuration passed explicitly
// into every trainer invocation.
type Config struct {
	Folds        int
	TargetMetric string // "auc" (default), "f1", "sensitivity", "specificity"
	Seed         int64
}

func (c Config) withDefaults() Config {
	if c.Folds < 2 {
		c.Folds = 5
	}
	if c.TargetMetric == "" {
		c.TargetMetric = "auc"
	}
	return c
}

// Importance is one (feature, score) pair of the ranked importance list.
type Importance struct {
	Feature string
	Score   float64
}

// ConfigFailure records a tuning configuration excluded from the search
// because its optimizer did not converge.
type ConfigFailure struct {
	Params Params
	Reason string
}

// Fitted is a trained predictor bound to one (algorithm, tier,
// configuration). It owns the learned parameters and the tier's column set;
// it holds no reference to the training data.
type Fitted struct {
	Algorithm string
	Tier      string
	Columns   []string // tier source columns
	Features  []string // encoded feature names, aligned with importances
	Model     models.Model
	Params    Params
	CVScore   float64
	Excluded  []ConfigFailure
	Ranked    []Importance // importance ranking, descending
}

// PredictProba returns P(Yes) for encoded feature rows.
func (f *Fitted) PredictProba(X [][]float64) []float64 {
	return f.Model.PredictProba(X)
}

// PredictLabel maps one encoded row to the label level name.
func (f *Fitted) PredictLabel(x []float64) string {
	p := f.Model.PredictProba([][]float64{x})[0]
	if p >= models.DefaultThreshold {
		return data.LabelLevels[1]
	}
	return data.LabelLevels[0]
}

// Run searches spec's grid with stratified cross-validation on the completed
// training table restricted to the tier's columns, refits the winning
// configuration on the full table, and returns the fitted predictor.
func Run(completed *data.Dataset, tierName string, columns []string, spec AlgorithmSpec, cfg Config) (*Fitted, error) {
	cfg = cfg.withDefaults()
	if completed.Origin == data.OriginValidation {
		return nil, fmt.Errorf("%w: trainer fed validation rows", data.ErrLeakage)
	}
	enc, err := data.NewEncoding(completed.Schema, columns)
	if err != nil {
		return nil, err
	}
	X, y := enc.Matrix(completed)
	if len(X) < 2*cfg.Folds {
		return nil, fmt.Errorf("%w: %d rows for %d folds", data.ErrInsufficientData, len(X), cfg.Folds)
	}

	folds := stratifiedFolds(y, cfg.Folds, cfg.Seed)
	grid := spec.Grid
	if len(grid) == 0 {
		grid = []Params{{}}
	}

	type outcome struct {
		score float64
		err   error
	}
	results := make([]outcome, len(grid))
	var g errgroup.Group
	for i := range grid {
		i := i
		g.Go(func() error {
			score, err := crossValidate(X, y, folds, spec, grid[i], cfg, int64(i))
			results[i] = outcome{score: score, err: err}
			if err != nil && !errors.Is(err, data.ErrConvergence) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fitted := &Fitted{
		Algorithm: spec.Name,
		Tier:      tierName,
		Columns:   append([]string{}, columns...),
		Features:  append([]string{}, enc.Features...),
	}
	best := -1
	for i, r := range results {
		if r.err != nil {
			fitted.Excluded = append(fitted.Excluded, ConfigFailure{Params: grid[i], Reason: r.err.Error()})
			continue
		}
		if best < 0 || r.score > results[best].score {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: all %d configurations for %s/%s failed",
			data.ErrConvergence, len(grid), spec.Name, tierName)
	}

	model := spec.New(grid[best], cfg.Seed)
	if err := model.Fit(X, y); err != nil {
		return nil, fmt.Errorf("final fit %s/%s: %w", spec.Name, tierName, err)
	}
	fitted.Model = model
	fitted.Params = grid[best]
	fitted.CVScore = results[best].score
	fitted.Ranked = rankImportances(enc.Features, model.Importances())
	return fitted, nil
}

// crossValidate scores one configuration: fit on each fold complement, score
// the held-out fold with the target metric, return the mean.
func crossValidate(X [][]float64, y []int, folds []int, spec AlgorithmSpec, p Params, cfg Config, configIdx int64) (float64, error) {
	k := cfg.Folds
	total := 0.0
	for f := 0; f < k; f++ {
		var trX, teX [][]float64
		var trY, teY []int
		for i := range X {
			if folds[i] == f {
				teX = append(teX, X[i])
				teY = append(teY, y[i])
			} else {
				trX = append(trX, X[i])
				trY = append(trY, y[i])
			}
		}
		// Seed derived from (base, configuration, fold) so parallel search
		// cannot perturb any configuration's random stream.
		model := spec.New(p, cfg.Seed+1000*configIdx+int64(f))
		if err := model.Fit(trX, trY); err != nil {
			return 0, err
		}
		total += eval.Score(cfg.TargetMetric, teY, model.PredictProba(teX))
	}
	return total / float64(k), nil
}

// stratifiedFolds deals each class's shuffled rows round-robin over k folds,
// returning the fold index per row.
func stratifiedFolds(y []int, k int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	folds := make([]int, len(y))
	for _, class := range []int{0, 1} {
		var idx []int
		for i, v := range y {
			if v == class {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for j, i := range idx {
			folds[i] = j % k
		}
	}
	return folds
}

func rankImportances(features []string, scores []float64) []Importance {
	ranked := make([]Importance, 0, len(features))
	for j, name := range features {
		s := 0.0
		if j < len(scores) {
			s = scores[j]
		}
		ranked = append(ranked, Importance{Feature: name, Score: s})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	return ranked
}

// ForestSizeCheck is the cost/benefit probe behind the fixed forest size:
// it cross-validates candidate sizes in ascending order and returns the
// smallest size whose successor improves the target metric by no more than
// margin. Scores for every candidate are returned for inspection.
func ForestSizeCheck(X [][]float64, y []int, sizes []int, margin float64, cfg Config) (int, []float64, error) {
	cfg = cfg.withDefaults()
	if len(sizes) == 0 {
		sizes = []int{100, models.DefaultForestSize, 2 * models.DefaultForestSize}
	}
	folds := stratifiedFolds(y, cfg.Folds, cfg.Seed)
	scores := make([]float64, len(sizes))
	for si, size := range sizes {
		spec := AlgorithmSpec{
			Name: "random_forest",
			New: func(_ Params, seed int64) models.Model {
				rf := models.NewRandomForest(seed)
				rf.NTrees = size
				return rf
			},
		}
		score, err := crossValidate(X, y, folds, spec, Params{}, cfg, int64(si))
		if err != nil {
			return 0, nil, err
		}
		scores[si] = score
	}
	for si := 0; si < len(sizes)-1; si++ {
		if scores[si+1]-scores[si] <= margin {
			return sizes[si], scores, nil
		}
	}
	return sizes[len(sizes)-1], scores, nil
}
