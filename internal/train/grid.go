package train

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/models"
)

// Params is one hyperparameter configuration.
type Params map[string]float64

// String renders the configuration with sorted keys, for logs and reports.
func (p Params) String() string {
	if len(p) == 0 {
		return "default"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

// Axis is one tuning dimension with its candidate values in search order.
type Axis struct {
	Name   string
	Values []float64
}

// Cartesian expands axes into the full configuration grid. Enumeration order
// is fixed: the first axis varies slowest. Ties during selection are broken
// by this order, never by randomness.
func Cartesian(axes ...Axis) []Params {
	grid := []Params{{}}
	for _, ax := range axes {
		next := make([]Params, 0, len(grid)*len(ax.Values))
		for _, base := range grid {
			for _, v := range ax.Values {
				p := Params{}
				for k, bv := range base {
					p[k] = bv
				}
				p[ax.Name] = v
				next = append(next, p)
			}
		}
		grid = next
	}
	return grid
}

// AlgorithmSpec binds an algorithm family to its tuning grid and constructor.
// An empty grid means a single untuned fit, still scored through the same
// cross-validation loop so the reported metric stays comparable.
type AlgorithmSpec struct {
	Name string
	Grid []Params
	New  func(p Params, seed int64) models.Model
}

// DefaultAlgorithms returns the three families the harness trains, with their
// tuning grids.
func DefaultAlgorithms() []AlgorithmSpec {
	return []AlgorithmSpec{
		{
			Name: "logistic",
			New: func(_ Params, _ int64) models.Model {
				return models.NewLogisticRegression()
			},
		},
		{
			Name: "elastic_net",
			Grid: Cartesian(
				Axis{Name: "alpha", Values: []float64{0, 0.25, 0.5, 0.75, 1}},
				Axis{Name: "lambda", Values: []float64{0.001, 0.01, 0.1, 1}},
			),
			New: func(p Params, _ int64) models.Model {
				return models.NewElasticNet(p["alpha"], p["lambda"])
			},
		},
		{
			Name: "random_forest",
			Grid: Cartesian(
				// max_features 0 delegates to sqrt(n_features).
				Axis{Name: "max_features", Values: []float64{0, 2, 4}},
				Axis{Name: "min_samples_leaf", Values: []float64{2, 5, 10}},
			),
			New: func(p Params, seed int64) models.Model {
				rf := models.NewRandomForest(seed)
				rf.MaxFeatures = int(p["max_features"])
				rf.MinSamplesLeaf = int(p["min_samples_leaf"])
				return rf
			},
		},
	}
}
