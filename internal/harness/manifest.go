package harness

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
	"github.com/ErickNavarroD/MachineLearningPCOS/internal/tiers"
)

// Manifest records everything needed to reproduce a run: the seed, the
// pipeline settings, and content hashes of the dataset and tier config. The
// fingerprint is deterministic over those inputs; RunID and CreatedAt
// identify the specific execution.
type Manifest struct {
	RunID         string    `json:"run_id"`
	CreatedAt     time.Time `json:"created_at"`
	Seed          int64     `json:"seed"`
	TrainFraction float64   `json:"train_fraction"`
	Folds         int       `json:"folds"`
	TargetMetric  string    `json:"target_metric"`
	Variant       string    `json:"variant"`
	Imputations   int       `json:"imputations"`
	DatasetHash   string    `json:"dataset_hash"`
	ConfigHash    string    `json:"config_hash"`
	Fingerprint   string    `json:"fingerprint"`
}

// NewManifest fingerprints the run inputs.
func NewManifest(ds *data.Dataset, reg *tiers.Registry, opts Options) Manifest {
	m := Manifest{
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Seed:          opts.Seed,
		TrainFraction: opts.TrainFraction,
		Folds:         opts.Folds,
		TargetMetric:  opts.TargetMetric,
		Variant:       opts.Variant.String(),
		Imputations:   opts.Imputations,
		DatasetHash:   hashDataset(ds),
		ConfigHash:    hashConfig(reg),
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("dataset:%s|config:%s|seed:%d|frac:%g|folds:%d|metric:%s|variant:%s|m:%d",
		m.DatasetHash, m.ConfigHash, m.Seed, m.TrainFraction, m.Folds, m.TargetMetric, m.Variant, m.Imputations)))
	m.Fingerprint = fmt.Sprintf("%x", sum)
	return m
}

func hashDataset(ds *data.Dataset) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, row := range ds.Rows {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			h.Write(buf)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func hashConfig(reg *tiers.Registry) string {
	h := sha256.New()
	for _, t := range reg.Tiers {
		h.Write([]byte(t.Name))
		for _, c := range t.Columns {
			h.Write([]byte("|" + c))
		}
		h.Write([]byte("\n"))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
