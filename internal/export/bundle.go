// Package export persists run artifacts: the trained-predictor bundle, the
// comparison tables (CSV and workbook), diagnostic plots, and the manifest.
package export

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/compare"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/harness"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/models"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/train"
)

func init() {
	// Concrete model types behind the models.Model interface, for gob.
	gob.Register(&models.LogisticRegression{})
	gob.Register(&models.ElasticNet{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.DecisionTree{})
}

// Bundle is the persisted form of a run's trained predictors, keyed
// "algorithm/tier", alongside the manifest that reproduces them.
type Bundle struct {
	Manifest   harness.Manifest
	Predictors map[string]*train.Fitted
}

// BundleKey renders a comparison key as the bundle map key.
func BundleKey(k compare.Key) string {
	return k.Algorithm + "/" + k.Tier
}

// NewBundle packs a run result for persistence.
func NewBundle(res *harness.Result) *Bundle {
	b := &Bundle{
		Manifest:   res.Manifest,
		Predictors: make(map[string]*train.Fitted, len(res.Predictors)),
	}
	for k, f := range res.Predictors {
		b.Predictors[BundleKey(k)] = f
	}
	return b
}

// SaveBundle gob-encodes the bundle at path, creating parent directories.
func SaveBundle(path string, b *Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a bundle written by SaveBundle.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}
