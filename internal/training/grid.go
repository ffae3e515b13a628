// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package training

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/eventpulse/internal/classifier"
)

// Grid is the hyperparameter search space.
type Grid struct {
	NEstimators     []int `json:"n_estimators" koanf:"n_estimators"`
	MaxDepth        []int `json:"max_depth" koanf:"max_depth"`
	MinSamplesSplit []int `json:"min_samples_split" koanf:"min_samples_split"`
	MinSamplesLeaf  []int `json:"min_samples_leaf" koanf:"min_samples_leaf"`
}

// DefaultGrid returns the production search space (81 combinations).
func DefaultGrid() Grid {
	return Grid{
		NEstimators:     []int{200, 300, 400},
		MaxDepth:        []int{10, 15, 20},
		MinSamplesSplit: []int{5, 10, 15},
		MinSamplesLeaf:  []int{2, 4, 6},
	}
}

// Size is the number of combinations.
func (g Grid) Size() int {
	return len(g.NEstimators) * len(g.MaxDepth) * len(g.MinSamplesSplit) * len(g.MinSamplesLeaf)
}

// Validate rejects empty dimensions.
func (g Grid) Validate() error {
	if g.Size() == 0 {
		return fmt.Errorf("hyperparameter grid has an empty dimension")
	}
	return nil
}

// Combinations enumerates the grid with max_depth outermost and n_estimators
// innermost. Fields not covered by the grid are copied from base.
func (g Grid) Combinations(base classifier.Params) []classifier.Params {
	out := make([]classifier.Params, 0, g.Size())
	for _, depth := range g.MaxDepth {
		for _, leaf := range g.MinSamplesLeaf {
			for _, split := range g.MinSamplesSplit {
				for _, n := range g.NEstimators {
					p := base
					p.MaxDepth = depth
					p.MinSamplesLeaf = leaf
					p.MinSamplesSplit = split
					p.NEstimators = n
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// Trial is the cross-validation outcome of one combination.
type Trial struct {
	Params     classifier.Params `json:"params"`
	FoldScores []float64         `json:"fold_scores"`
	MeanScore  float64           `json:"mean_score"`
}

// SearchResult is the outcome of a grid search.
type SearchResult struct {
	Best      classifier.Params `json:"best_params"`
	BestIndex int               `json:"best_index"`
	BestScore float64           `json:"best_score"`
	Trials    []Trial           `json:"trials"`
}

// crossValidate fits one forest per fold and returns the held-out ROC-AUC of each.
func crossValidate(ctx context.Context, x [][]float64, y []int, folds []Fold, params classifier.Params, workers int) ([]float64, error) {
	scores := make([]float64, len(folds))
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		xtr, ytr := subset(x, y, fold.Train)
		forest, err := classifier.Fit(ctx, xtr, ytr, params, workers)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		xte, yte := subset(x, y, fold.Test)
		proba, err := forest.PredictProbaBatch(xte)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		if scores[i], err = ROCAUC(yte, proba); err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
	}
	return scores, nil
}

// GridSearch scores every combination by k-fold ROC-AUC on (x, y). Trials run
// on a bounded worker pool and are collected by index, so the winner is the
// highest mean with ties resolved to the earliest combination.
func GridSearch(ctx context.Context, x [][]float64, y []int, grid Grid, base classifier.Params, folds []Fold, workers int) (*SearchResult, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	combos := grid.Combinations(base)
	trials := make([]Trial, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, params := range combos {
		g.Go(func() error {
			scores, err := crossValidate(gctx, x, y, folds, params, 1)
			if err != nil {
				return fmt.Errorf("combination %d (%s): %w", i, params, err)
			}
			mean, _ := meanStd(scores)
			trials[i] = Trial{Params: params, FoldScores: scores, MeanScore: mean}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &SearchResult{BestIndex: -1, BestScore: math.Inf(-1), Trials: trials}
	for i, t := range trials {
		if t.MeanScore > res.BestScore {
			res.Best = t.Params
			res.BestIndex = i
			res.BestScore = t.MeanScore
		}
	}
	return res, nil
}
