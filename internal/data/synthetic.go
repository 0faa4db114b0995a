package data

import (
	"fmt"
	"math"
	"math/rand"
)

// ClinicalSchema returns the schema of the synthetic screening dataset used
// by tests and the CLI demo path. Columns mirror the three collection levels:
// clinical exam, blood panel, ultrasound.
func ClinicalSchema() *Schema {
	return &Schema{
		Label: "pcos",
		ID:    "patient_id",
		Columns: []Column{
			{Name: "patient_id", Type: Continuous},
			{Name: "age", Type: Continuous},
			{Name: "bmi", Type: Continuous},
			{Name: "cycle_length", Type: Ordinal},
			{Name: "hirsutism", Type: OrderedFactor, Levels: []string{"none", "mild", "moderate", "severe"}},
			{Name: "skin_darkening", Type: Binary, Levels: []string{"No", "Yes"}},
			{Name: "blood_group", Type: Nominal, Levels: []string{"A", "B", "AB", "O"}},
			{Name: "fsh", Type: Continuous},
			{Name: "lh", Type: Continuous},
			{Name: "amh", Type: Continuous},
			{Name: "beta_hcg_1", Type: Continuous},
			{Name: "beta_hcg_2", Type: Continuous},
			{Name: "follicle_count_l", Type: Ordinal},
			{Name: "follicle_count_r", Type: Ordinal},
			{Name: "pcos", Type: Binary, Levels: []string{"No", "Yes"}},
		},
	}
}

// ClinicalTierColumns returns the nested tier definitions matching
// ClinicalSchema, from cheapest to most invasive collection level.
func ClinicalTierColumns() map[string][]string {
	clinical := []string{"age", "bmi", "cycle_length", "hirsutism", "skin_darkening", "blood_group"}
	biochemical := append(append([]string{}, clinical...), "fsh", "lh", "amh", "beta_hcg_1", "beta_hcg_2")
	ultrasound := append(append([]string{}, biochemical...), "follicle_count_l", "follicle_count_r")
	return map[string][]string{
		"clinical":    clinical,
		"biochemical": biochemical,
		"ultrasound":  ultrasound,
	}
}

// GenerateClinical builds a seeded synthetic dataset of n records with
// roughly posRate positive labels and missRate missing cells in the optional
// feature columns. The hormonal and ultrasound columns carry most of the
// signal; the clinical columns carry a weaker one.
func GenerateClinical(n int, posRate, missRate float64, seed int64) *Dataset {
	schema := ClinicalSchema()
	rng := rand.New(rand.NewSource(seed))
	ds := &Dataset{Schema: schema, Origin: OriginSource}

	for i := 0; i < n; i++ {
		pos := rng.Float64() < posRate
		shift := 0.0
		if pos {
			shift = 1.0
		}

		age := 20 + rng.Float64()*18
		bmi := 22 + rng.NormFloat64()*3 + shift*3.5
		cycle := math.Round(28 + rng.NormFloat64()*2 + shift*7)
		hirs := clampLevel(rng.NormFloat64()*0.9+shift*1.4, 4)
		skin := 0.0
		if rng.Float64() < 0.15+0.35*shift {
			skin = 1
		}
		blood := float64(rng.Intn(4))
		fsh := 5.5 + rng.NormFloat64()*1.2
		lh := 5 + rng.NormFloat64()*1.5 + shift*4
		amh := 3 + rng.NormFloat64()*1.2 + shift*4.5
		hcg1 := 1.2 + rng.Float64()*2
		hcg2 := hcg1 + rng.NormFloat64()*0.4
		folL := math.Round(math.Max(0, 4+rng.NormFloat64()*2+shift*8))
		folR := math.Round(math.Max(0, 4+rng.NormFloat64()*2+shift*8))

		label := 0.0
		if pos {
			label = 1
		}
		row := []float64{float64(i), age, bmi, cycle, hirs, skin, blood, fsh, lh, amh, hcg1, hcg2, folL, folR, label}

		if missRate > 0 {
			for ci, col := range schema.Columns {
				if col.Name == schema.Label || col.Name == schema.ID {
					continue
				}
				if rng.Float64() < missRate {
					row[ci] = math.NaN()
				}
			}
		}
		ds.Rows = append(ds.Rows, row)
		ds.IDs = append(ds.IDs, fmt.Sprintf("P%04d", i+1))
	}
	return ds
}

func clampLevel(v float64, levels int) float64 {
	l := int(math.Round(v))
	if l < 0 {
		l = 0
	}
	if l >= levels {
		l = levels - 1
	}
	return float64(l)
}
