package eval

import (
	"fmt"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/models"
)

// Probabilistic is the slice of the model capability the evaluator needs.
type Probabilistic interface {
	PredictProba(X [][]float64) []float64
}

// Threshold is the fixed decision threshold on P(Yes).
const Threshold = models.DefaultThreshold

// Evaluate scores a predictor on the validation subset restricted to the
// given columns. Rows with any missing value in the restricted column set are
// excluded from scoring; no imputation is applied on this side of the
// partition. Deterministic given (p, valid, columns).
func Evaluate(p Probabilistic, valid *data.Dataset, columns []string) (MetricBundle, error) {
	if valid.Origin != data.OriginValidation {
		return MetricBundle{}, fmt.Errorf("%w: evaluator fed a non-validation dataset", data.ErrLeakage)
	}
	enc, err := data.NewEncoding(valid.Schema, columns)
	if err != nil {
		return MetricBundle{}, err
	}
	X, y := enc.CompleteMatrix(valid)
	if len(X) == 0 {
		return MetricBundle{}, fmt.Errorf("%w: no complete validation rows over %d columns", data.ErrInsufficientData, len(columns))
	}
	ps := p.PredictProba(X)
	c := NewConfusion(y, ps, Threshold)
	return MetricBundle{
		Sensitivity: c.Sensitivity(),
		Specificity: c.Specificity(),
		F1:          c.F1(),
		AUC:         ROCAUC(y, ps),
		N:           len(X),
	}, nil
}
