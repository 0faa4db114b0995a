// Package compare assembles per-predictor metric bundles into the harness's
// terminal artifact: an ordered comparison table keyed by (algorithm, tier),
// with explicit skip reasons for cells that could not be trained or scored.
package compare

import (
	"fmt"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/eval"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/train"
)

// Key identifies one cell of the algorithm × tier cross product.
type Key struct {
	Algorithm string
	Tier      string
}

// Row is one comparison table entry. Exactly one of Metrics / SkipReason is
// meaningful: a skipped cell carries the reason it was skipped, never a
// silent omission.
type Row struct {
	Key        Key
	Metrics    eval.MetricBundle
	Params     train.Params
	CVScore    float64
	SkipReason string
}

// Skipped reports whether this cell was skipped.
func (r Row) Skipped() bool { return r.SkipReason != "" }

// Table is the ordered collection of rows. Input order is preserved; ranking
// is a presentation concern left to the reporting collaborator.
type Table struct {
	Rows []Row

	index map[Key]int
}

// Aggregate builds a table from rows in the given order. A duplicate
// (algorithm, tier) key is a programming error and rejected.
func Aggregate(rows []Row) (*Table, error) {
	t := &Table{index: make(map[Key]int, len(rows))}
	for _, r := range rows {
		if _, dup := t.index[r.Key]; dup {
			return nil, fmt.Errorf("duplicate comparison cell %s/%s", r.Key.Algorithm, r.Key.Tier)
		}
		t.index[r.Key] = len(t.Rows)
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

// Get returns the row for a cell.
func (t *Table) Get(algorithm, tier string) (Row, bool) {
	i, ok := t.index[Key{Algorithm: algorithm, Tier: tier}]
	if !ok {
		return Row{}, false
	}
	return t.Rows[i], true
}

// Delta is the metric-wise difference of a variant cell against the primary
// pipeline's cell, in the same bundle shape so deltas are directly comparable.
type Delta struct {
	Key         Key
	Sensitivity float64
	Specificity float64
	F1          float64
	AUC         float64
	PrimaryN    int
	VariantN    int
}

// Compare diffs a variant row against its primary counterpart.
func Compare(primary, variant Row) Delta {
	return Delta{
		Key:         primary.Key,
		Sensitivity: variant.Metrics.Sensitivity - primary.Metrics.Sensitivity,
		Specificity: variant.Metrics.Specificity - primary.Metrics.Specificity,
		F1:          variant.Metrics.F1 - primary.Metrics.F1,
		AUC:         variant.Metrics.AUC - primary.Metrics.AUC,
		PrimaryN:    primary.Metrics.N,
		VariantN:    variant.Metrics.N,
	}
}

// CompareTables diffs every cell present in both tables, in the primary
// table's order. Skipped cells on either side are omitted from the deltas.
func CompareTables(primary, variant *Table) []Delta {
	var out []Delta
	for _, pr := range primary.Rows {
		if pr.Skipped() {
			continue
		}
		vr, ok := variant.Get(pr.Key.Algorithm, pr.Key.Tier)
		if !ok || vr.Skipped() {
			continue
		}
		out = append(out, Compare(pr, vr))
	}
	return out
}
