// Package tiers holds the feature-tier registry: an ordered list of named,
// nested column sets representing increasing data-collection cost. Tiers are
// static configuration, validated eagerly against the dataset schema before
// any training starts.
package tiers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ErickNavarroD/MachineLearningPCOS/internal/data"
)

// Tier is one named column subset.
type Tier struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// Registry is the ordered tier sequence. Invariant after Validate: each
// tier's column set contains the previous tier's.
type Registry struct {
	Tiers []Tier
}

// Config is the on-disk harness configuration: the dataset schema plus the
// tier definitions, in one YAML document.
type Config struct {
	Label   string `yaml:"label"`
	ID      string `yaml:"id"`
	Columns []struct {
		Name   string   `yaml:"name"`
		Type   string   `yaml:"type"`
		Levels []string `yaml:"levels,omitempty"`
	} `yaml:"columns"`
	Tiers []Tier `yaml:"tiers"`
}

// Load reads the YAML config at path and returns the schema and validated
// tier registry. Any structural problem fails here, before data is touched.
func Load(path string) (*data.Schema, *Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML config document.
func Parse(raw []byte) (*data.Schema, *Registry, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", data.ErrSchemaMismatch, err)
	}
	schema := &data.Schema{Label: cfg.Label, ID: cfg.ID}
	for _, c := range cfg.Columns {
		t, err := data.ParseColumnType(c.Type)
		if err != nil {
			return nil, nil, err
		}
		schema.Columns = append(schema.Columns, data.Column{Name: c.Name, Type: t, Levels: c.Levels})
	}
	if err := schema.Validate(); err != nil {
		return nil, nil, err
	}
	reg := &Registry{Tiers: cfg.Tiers}
	if err := reg.Validate(schema); err != nil {
		return nil, nil, err
	}
	return schema, reg, nil
}

// New builds a registry from in-memory tiers and validates it.
func New(schema *data.Schema, ts []Tier) (*Registry, error) {
	reg := &Registry{Tiers: ts}
	if err := reg.Validate(schema); err != nil {
		return nil, err
	}
	return reg, nil
}

// Dump renders a schema and registry back into the YAML form Load reads.
func Dump(schema *data.Schema, reg *Registry) ([]byte, error) {
	cfg := Config{Label: schema.Label, ID: schema.ID, Tiers: reg.Tiers}
	for _, c := range schema.Columns {
		cfg.Columns = append(cfg.Columns, struct {
			Name   string   `yaml:"name"`
			Type   string   `yaml:"type"`
			Levels []string `yaml:"levels,omitempty"`
		}{Name: c.Name, Type: c.Type.String(), Levels: c.Levels})
	}
	return yaml.Marshal(cfg)
}

// Validate checks that at least one tier exists, every referenced column is a
// feature column of the schema, and tier k contains tier k-1 (monotonic
// inclusion).
func (r *Registry) Validate(schema *data.Schema) error {
	if len(r.Tiers) == 0 {
		return fmt.Errorf("%w: no feature tiers configured", data.ErrSchemaMismatch)
	}
	prev := map[string]bool{}
	for k, tier := range r.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("%w: tier %d has no name", data.ErrSchemaMismatch, k)
		}
		if len(tier.Columns) == 0 {
			return fmt.Errorf("%w: tier %q is empty", data.ErrSchemaMismatch, tier.Name)
		}
		cur := make(map[string]bool, len(tier.Columns))
		for _, name := range tier.Columns {
			if name == schema.Label || name == schema.ID {
				return data.NewSchemaError(name, fmt.Sprintf("in tier %q but is not a feature", tier.Name))
			}
			if schema.ColumnIndex(name) < 0 {
				return data.NewSchemaError(name, fmt.Sprintf("referenced by tier %q but missing from dataset schema", tier.Name))
			}
			cur[name] = true
		}
		for name := range prev {
			if !cur[name] {
				return data.NewSchemaError(name,
					fmt.Sprintf("in tier %q but dropped by tier %q; tiers must be nested", r.Tiers[k-1].Name, tier.Name))
			}
		}
		prev = cur
	}
	return nil
}

// Get returns the tier by name.
func (r *Registry) Get(name string) (Tier, bool) {
	for _, t := range r.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}
