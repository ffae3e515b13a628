// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package classifier provides the binary probabilistic model behind predictions:
// a random forest of CART trees with Gini impurity, bootstrap sampling and
// mean-decrease-in-impurity feature importances.
//
// Fitting is parallel but deterministic. Every tree draws from its own PCG
// stream seeded by (Params.Seed, tree index), so the fitted forest depends only
// on the data and the parameters.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Model is the scoring contract used by training and prediction. Any binary
// probabilistic classifier satisfying it can replace the forest.
type Model interface {
	// PredictProba returns the probability of the positive class.
	PredictProba(x []float64) (float64, error)

	// FeatureImportances returns one importance per input column, summing to 1
	// when any split was made.
	FeatureImportances() []float64

	// NumFeatures is the vector width the model was fitted on.
	NumFeatures() int
}

// ErrEmptyDataset is returned when Fit receives no rows.
var ErrEmptyDataset = errors.New("empty training dataset")

// Forest is a fitted random forest. All fields are exported for gob encoding;
// a Forest is never mutated after Fit returns.
type Forest struct {
	Params      Params
	NFeatures   int
	Trees       []Tree
	Importances []float64
}

var _ Model = (*Forest)(nil)

// Fit trains a forest on X (rows of equal width) and binary labels y.
// workers bounds tree-level parallelism; values <= 0 use GOMAXPROCS.
func Fit(ctx context.Context, x [][]float64, y []int, params Params, workers int) (*Forest, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := checkDataset(x, y); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	nFeatures := len(x[0])
	mtry := params.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Sqrt(float64(nFeatures)))
	}
	if mtry < 1 {
		mtry = 1
	}
	if mtry > nFeatures {
		mtry = nFeatures
	}

	trees := make([]Tree, params.NEstimators)
	perTree := make([][]float64, params.NEstimators)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < params.NEstimators; t++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(params.Seed, uint64(t)))
			trees[t], perTree[t] = fitTree(x, y, bootstrap(len(x), rng), params, mtry, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	return &Forest{
		Params:      params,
		NFeatures:   nFeatures,
		Trees:       trees,
		Importances: averageImportances(perTree, nFeatures),
	}, nil
}

func checkDataset(x [][]float64, y []int) error {
	if len(x) == 0 {
		return ErrEmptyDataset
	}
	if len(x) != len(y) {
		return fmt.Errorf("row count %d does not match label count %d", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return fmt.Errorf("rows have no features")
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
		if y[i] != 0 && y[i] != 1 {
			return fmt.Errorf("label %d at row %d is not binary", y[i], i)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d feature %d is not finite", i, j)
			}
		}
	}
	return nil
}

// bootstrap draws n indices with replacement.
func bootstrap(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

func averageImportances(perTree [][]float64, nFeatures int) []float64 {
	out := make([]float64, nFeatures)
	for _, imp := range perTree {
		for i, v := range imp {
			out[i] += v
		}
	}
	var sum float64
	for _, v := range out {
		sum += v
	}
	if sum > 0 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out
}

// PredictProba averages the leaf positive fractions across trees.
func (f *Forest) PredictProba(x []float64) (float64, error) {
	if len(x) != f.NFeatures {
		return 0, fmt.Errorf("vector has %d features, model expects %d", len(x), f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// PredictProbaBatch scores every row.
func (f *Forest) PredictProbaBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		p, err := f.PredictProba(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// FeatureImportances returns a copy of the normalized importances.
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, len(f.Importances))
	copy(out, f.Importances)
	return out
}

// NumFeatures returns the fitted vector width.
func (f *Forest) NumFeatures() int {
	return f.NFeatures
}

// Importance pairs a column name with its importance.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Rank pairs importances with column names and sorts them descending.
// Ties keep column order.
func Rank(columns []string, importances []float64) ([]Importance, error) {
	if len(columns) != len(importances) {
		return nil, fmt.Errorf("have %d columns but %d importances", len(columns), len(importances))
	}
	out := make([]Importance, len(columns))
	for i := range columns {
		out[i] = Importance{Feature: columns[i], Importance: importances[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out, nil
}
