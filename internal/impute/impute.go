// Package impute fills missing training values with distribution-aware,
// per-column strategies: predictive mean matching for numeric columns and
// regression-based draws for categorical ones, iterated as chained equations
// until the column models stabilize. The imputation model is fit on the
// training subset only and is never applied to validation rows.
package impute

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// Options controls one imputation draw.
type Options struct {
	Seed      int64
	MaxRounds int     // chained-equations round budget
	Donors    int     // PMM donor pool size
	Tol       float64 // stability tolerance on per-round prediction change
}

func (o Options) withDefaults() Options {
	if o.MaxRounds <= 0 {
		o.MaxRounds = 10
	}
	if o.Donors <= 0 {
		o.Donors = 5
	}
	if o.Tol <= 0 {
		o.Tol = 0.05
	}
	return o
}

// CellFill is one imputed cell.
type CellFill struct {
	Row   int
	Col   int // schema column index
	Value float64
}

// Model is the fit artifact of one imputation draw, bound to exactly one
// training dataset. It is consumed by Complete and discarded afterwards.
type Model struct {
	Fills  []CellFill
	Rounds int

	bound *data.Dataset
}

type task struct {
	col      int
	typ      data.ColumnType
	levels   int
	missing  []int
	observed []int
	enc      *data.Encoding
	prev     []float64 // previous round's prediction summary, per missing row (flattened probs for categorical)
}

// Fit runs chained equations on train and returns the fitted model. Fails
// with ErrLeakage when handed validation rows and with ErrNonConvergence when
// the column models have not stabilized within the round budget.
func Fit(train *data.Dataset, opts Options) (*Model, error) {
	if train.Origin == data.OriginValidation {
		return nil, fmt.Errorf("%w: imputation model fit on validation rows", data.ErrLeakage)
	}
	opts = opts.withDefaults()
	schema := train.Schema

	tasks, err := buildTasks(train)
	if err != nil {
		return nil, err
	}
	m := &Model{bound: train}
	if len(tasks) == 0 {
		return m, nil
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	working := make([][]float64, len(train.Rows))
	for i, row := range train.Rows {
		w := make([]float64, len(row))
		copy(w, row)
		working[i] = w
	}

	// Initialize missing cells with random observed donors from the same
	// column, so the first round's predictors are complete.
	for _, t := range tasks {
		for _, r := range t.missing {
			donor := t.observed[rng.Intn(len(t.observed))]
			working[r][t.col] = working[donor][t.col]
		}
	}

	converged := false
	lastChange := math.Inf(1)
	for round := 1; round <= opts.MaxRounds; round++ {
		maxChange := 0.0
		for _, t := range tasks {
			change, err := imputeColumn(t, working, opts, rng)
			if err != nil {
				return nil, fmt.Errorf("column %q round %d: %w", schema.Columns[t.col].Name, round, err)
			}
			if change > maxChange {
				maxChange = change
			}
		}
		m.Rounds = round
		lastChange = maxChange
		// The first round is measured against the random initialization, so
		// stability is only meaningful from the second round on.
		if round >= 2 && maxChange < opts.Tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("%w: change %.4f above tolerance %.4f after %d rounds",
			data.ErrNonConvergence, lastChange, opts.Tol, opts.MaxRounds)
	}

	for _, t := range tasks {
		for _, r := range t.missing {
			m.Fills = append(m.Fills, CellFill{Row: r, Col: t.col, Value: working[r][t.col]})
		}
	}
	return m, nil
}

// Complete applies the fitted fills to the training dataset the model is
// bound to, producing a table with no missing feature values.
func (m *Model) Complete(train *data.Dataset) (*data.Dataset, error) {
	if train != m.bound {
		return nil, fmt.Errorf("%w: imputation model applied to a dataset it was not fit on", data.ErrLeakage)
	}
	out := train.Clone()
	for _, f := range m.Fills {
		out.Rows[f.Row][f.Col] = f.Value
	}
	return out, nil
}

// MultipleComplete runs m independent fit/complete cycles with seeds
// opts.Seed..opts.Seed+m-1. Draws that fail to converge are reported in
// failures and skipped; if every draw fails the whole stage fails. The first
// returned table is the designated primary analysis table.
func MultipleComplete(train *data.Dataset, opts Options, m int) (draws []*data.Dataset, failures []error, err error) {
	if m <= 0 {
		m = 1
	}
	for k := 0; k < m; k++ {
		o := opts
		o.Seed = opts.Seed + int64(k)
		model, ferr := Fit(train, o)
		if ferr != nil {
			if data.IsFatal(ferr) {
				return nil, nil, ferr
			}
			failures = append(failures, fmt.Errorf("draw %d: %w", k, ferr))
			continue
		}
		completed, cerr := model.Complete(train)
		if cerr != nil {
			return nil, nil, cerr
		}
		draws = append(draws, completed)
	}
	if len(draws) == 0 {
		return nil, failures, fmt.Errorf("%w: all %d imputation draws failed", data.ErrNonConvergence, m)
	}
	return draws, failures, nil
}

func buildTasks(train *data.Dataset) ([]*task, error) {
	schema := train.Schema
	var tasks []*task
	for ci, col := range schema.Columns {
		if col.Name == schema.Label || col.Name == schema.ID {
			continue
		}
		var missing, observed []int
		for r, row := range train.Rows {
			if math.IsNaN(row[ci]) {
				missing = append(missing, r)
			} else {
				observed = append(observed, r)
			}
		}
		if len(missing) == 0 {
			continue
		}
		if len(observed) < 2 {
			return nil, NewColumnError(col.Name, len(observed))
		}
		predictors := make([]string, 0, len(schema.Columns))
		for _, other := range schema.Columns {
			if other.Name == col.Name || other.Name == schema.Label || other.Name == schema.ID {
				continue
			}
			predictors = append(predictors, other.Name)
		}
		enc, err := data.NewEncoding(schema, predictors)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &task{
			col:      ci,
			typ:      col.Type,
			levels:   len(col.Levels),
			missing:  missing,
			observed: observed,
			enc:      enc,
		})
	}
	return tasks, nil
}

// NewColumnError wraps ErrInsufficientData for a column with too few observed
// values to fit any imputation model.
func NewColumnError(column string, observed int) error {
	return fmt.Errorf("%w: column %q has only %d observed values", data.ErrInsufficientData, column, observed)
}

// imputeColumn refits the column's strategy on the current working table,
// redraws the missing cells, and returns the prediction change since the
// previous round.
func imputeColumn(t *task, working [][]float64, opts Options, rng *rand.Rand) (float64, error) {
	Xobs := make([][]float64, len(t.observed))
	for i, r := range t.observed {
		Xobs[i] = t.enc.Row(working[r])
	}
	Xmis := make([][]float64, len(t.missing))
	for i, r := range t.missing {
		Xmis[i] = t.enc.Row(working[r])
	}

	switch t.typ {
	case data.Continuous, data.Ordinal:
		return t.pmm(Xobs, Xmis, working, opts, rng)
	default:
		return t.categorical(Xobs, Xmis, working, rng)
	}
}

// pmm performs predictive mean matching: a linear model scores observed and
// missing rows, and each missing cell receives the observed value of a donor
// drawn from the closest-scored pool. Imputed values are always values that
// actually occur, which preserves the empirical distribution.
func (t *task) pmm(Xobs, Xmis [][]float64, working [][]float64, opts Options, rng *rand.Rand) (float64, error) {
	yobs := make([]float64, len(t.observed))
	for i, r := range t.observed {
		yobs[i] = working[r][t.col]
	}
	beta, err := olsFit(Xobs, yobs)
	if err != nil {
		return 0, err
	}
	predObs := make([]float64, len(Xobs))
	for i, x := range Xobs {
		predObs[i] = linearPredict(beta, x)
	}

	sd, _ := stats.StandardDeviation(yobs)
	if sd == 0 {
		sd = 1
	}
	donors := opts.Donors
	if donors > len(t.observed) {
		donors = len(t.observed)
	}

	change := 0.0
	pred := make([]float64, len(t.missing))
	order := make([]int, len(predObs))
	for i, x := range Xmis {
		p := linearPredict(beta, x)
		pred[i] = p
		for j := range order {
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool {
			da := math.Abs(predObs[order[a]] - p)
			db := math.Abs(predObs[order[b]] - p)
			if da == db {
				return order[a] < order[b]
			}
			return da < db
		})
		donor := order[rng.Intn(donors)]
		working[t.missing[i]][t.col] = yobs[donor]

		if t.prev != nil {
			change += math.Abs(p-t.prev[i]) / sd
		}
	}
	if t.prev == nil {
		change = math.Inf(1)
	} else {
		change /= float64(len(t.missing))
	}
	t.prev = pred
	return change, nil
}

// categorical refits the level model (two-class or multinomial softmax for
// unordered columns, proportional odds for ordered ones) and draws each
// missing cell from the predicted level distribution.
func (t *task) categorical(Xobs, Xmis [][]float64, working [][]float64, rng *rand.Rand) (float64, error) {
	yobs := make([]int, len(t.observed))
	levelsSeen := map[int]bool{}
	for i, r := range t.observed {
		yobs[i] = int(working[r][t.col])
		levelsSeen[yobs[i]] = true
	}
	if len(levelsSeen) < 2 {
		// Degenerate column: a single observed level is the only plausible fill.
		for _, r := range t.missing {
			working[r][t.col] = float64(yobs[0])
		}
		t.prev = make([]float64, len(t.missing)*t.levels)
		return 0, nil
	}

	var probsFor func(x []float64) []float64
	switch t.typ {
	case data.OrderedFactor:
		m, err := ordinalFit(Xobs, yobs, t.levels)
		if err != nil {
			return 0, err
		}
		probsFor = m.probs
	default: // Binary and Nominal
		m, err := softmaxFit(Xobs, yobs, t.levels)
		if err != nil {
			return 0, err
		}
		probsFor = m.probs
	}

	change := 0.0
	pred := make([]float64, 0, len(t.missing)*t.levels)
	for i, x := range Xmis {
		p := probsFor(x)
		if t.prev != nil {
			tv := 0.0
			for k, pk := range p {
				tv += math.Abs(pk - t.prev[i*t.levels+k])
			}
			change += tv / 2
		}
		pred = append(pred, p...)
		working[t.missing[i]][t.col] = float64(drawLevel(p, rng))
	}
	if t.prev == nil {
		change = math.Inf(1)
	} else {
		change /= float64(len(t.missing))
	}
	t.prev = pred
	return change, nil
}

func drawLevel(probs []float64, rng *rand.Rand) int {
	u := rng.Float64()
	cum := 0.0
	for k, p := range probs {
		cum += p
		if u < cum {
			return k
		}
	}
	return len(probs) - 1
}
