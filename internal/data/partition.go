package data

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Split partitions ds into train and validation subsets, stratified on the
// label: within each class, round(trainFraction * classSize) records are
// sampled without replacement for the training side and the remainder forms
// the validation side. The split is a pure function of (ds, trainFraction,
// seed); class-ratio drift between the two sides is bounded by rounding error.
func Split(ds *Dataset, trainFraction float64, seed int64) (train, valid *Dataset, err error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, fmt.Errorf("train fraction %v outside (0,1)", trainFraction)
	}
	y := ds.Labels()
	var negIdx, posIdx []int
	for i, v := range y {
		if v == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}
	if len(negIdx) < 2 {
		return nil, nil, NewInsufficientDataError(LabelLevels[0], len(negIdx))
	}
	if len(posIdx) < 2 {
		return nil, nil, NewInsufficientDataError(LabelLevels[1], len(posIdx))
	}

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, validIdx []int
	// Negative class first, then positive: fixed order keeps the stream
	// deterministic.
	for _, class := range [][]int{negIdx, posIdx} {
		perm := rng.Perm(len(class))
		take := int(math.Round(trainFraction * float64(len(class))))
		if take < 1 {
			take = 1
		}
		if take >= len(class) {
			take = len(class) - 1
		}
		for i, p := range perm {
			if i < take {
				trainIdx = append(trainIdx, class[p])
			} else {
				validIdx = append(validIdx, class[p])
			}
		}
	}
	return ds.Subset(trainIdx, OriginTrain), ds.Subset(validIdx, OriginValidation), nil
}

// DownsampleMajority rebalances the label classes by sampling the majority
// class down to the minority class size, without replacement. Used by the
// class-balanced sensitivity variant; the result keeps the train provenance.
func DownsampleMajority(ds *Dataset, seed int64) *Dataset {
	y := ds.Labels()
	var negIdx, posIdx []int
	for i, v := range y {
		if v == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}
	minority, majority := posIdx, negIdx
	if len(posIdx) > len(negIdx) {
		minority, majority = negIdx, posIdx
	}
	if len(majority) == len(minority) {
		return ds.Clone()
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(majority))
	keep := make([]int, 0, 2*len(minority))
	keep = append(keep, minority...)
	for i := 0; i < len(minority); i++ {
		keep = append(keep, majority[perm[i]])
	}
	// Restore original record order so downstream fold assignment is not
	// affected by which class was the majority.
	sort.Ints(keep)
	return ds.Subset(keep, ds.Origin)
}
