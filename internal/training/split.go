// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package training

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// classIndices groups row indices by label and shuffles each group with rng.
func classIndices(y []int, rng *rand.Rand) [2][]int {
	var groups [2][]int
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}
	for c := range groups {
		rng.Shuffle(len(groups[c]), func(i, j int) {
			groups[c][i], groups[c][j] = groups[c][j], groups[c][i]
		})
	}
	return groups
}

// StratifiedSplit partitions row indices into train and test sets while
// preserving the class ratio. Each class contributes round(testSize*n) rows to
// the test set, bounded so both partitions keep at least one row of the class.
// Returned indices are sorted ascending.
func StratifiedSplit(y []int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0,1), got %v", testSize)
	}
	if err := checkLabels(y); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	for c, idx := range classIndices(y, rng) {
		if len(idx) < 2 {
			return nil, nil, fmt.Errorf("class %d has %d samples, need at least 2 to split", c, len(idx))
		}
		nTest := int(math.Round(testSize * float64(len(idx))))
		nTest = max(1, min(nTest, len(idx)-1))
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	slices.Sort(train)
	slices.Sort(test)
	return train, test, nil
}

// Fold is one cross-validation split expressed as row indices.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold deals each class round-robin into k folds so every fold
// keeps roughly the overall class ratio. Every class needs at least k rows.
func StratifiedKFold(y []int, k int, seed uint64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", k)
	}
	if err := checkLabels(y); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed, 1))
	assign := make([]int, len(y))
	next := 0
	for c, idx := range classIndices(y, rng) {
		if len(idx) < k {
			return nil, fmt.Errorf("class %d has %d samples, fewer than %d folds", c, len(idx), k)
		}
		for _, i := range idx {
			assign[i] = next % k
			next++
		}
	}

	folds := make([]Fold, k)
	for i, f := range assign {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}

func checkLabels(y []int) error {
	var seen [2]bool
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d at row %d is not binary", label, i)
		}
		seen[label] = true
	}
	if !seen[0] || !seen[1] {
		return fmt.Errorf("training data must contain both classes")
	}
	return nil
}

// subset selects rows and labels by index.
func subset(x [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
