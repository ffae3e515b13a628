// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package classifier

import (
	"math"
	"math/rand/v2"
	"slices"
)

// leaf marks a node without children.
const leaf = -1

// Node is one node of a flattened binary tree. Exported for gob encoding.
type Node struct {
	// Feature is the split column, or -1 for a leaf.
	Feature   int
	Threshold float64
	Left      int
	Right     int

	// Value is the fraction of positive samples that reached the node.
	Value   float64
	Samples int
}

// Tree is a fitted CART classification tree.
type Tree struct {
	Nodes []Node
}

// predict walks the tree and returns the leaf positive fraction.
func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows one tree on a bootstrap sample.
type treeBuilder struct {
	x      [][]float64
	y      []int
	params Params
	mtry   int
	rng    *rand.Rand

	nodes       []Node
	importances []float64
	total       float64
}

type split struct {
	ok        bool
	feature   int
	threshold float64
	score     float64 // weighted child impurity, lower is better
}

func gini(pos, n float64) float64 {
	if n == 0 {
		return 0
	}
	p := pos / n
	return 2 * p * (1 - p)
}

// fitTree grows a tree over the given sample indices (duplicates allowed).
func fitTree(x [][]float64, y []int, idx []int, params Params, mtry int, rng *rand.Rand) (Tree, []float64) {
	b := &treeBuilder{
		x:           x,
		y:           y,
		params:      params,
		mtry:        mtry,
		rng:         rng,
		importances: make([]float64, len(x[0])),
		total:       float64(len(idx)),
	}
	b.build(idx, 0)

	var sum float64
	for _, v := range b.importances {
		sum += v
	}
	if sum > 0 {
		for i := range b.importances {
			b.importances[i] /= sum
		}
	}
	return Tree{Nodes: b.nodes}, b.importances
}

func (b *treeBuilder) positives(idx []int) int {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	return pos
}

func (b *treeBuilder) build(idx []int, depth int) int {
	n := len(idx)
	pos := b.positives(idx)

	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Feature: leaf,
		Value:   float64(pos) / float64(n),
		Samples: n,
	})

	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return self
	}
	if n < b.params.MinSamplesSplit || n < 2*b.params.MinSamplesLeaf || pos == 0 || pos == n {
		return self
	}

	s := b.bestSplit(idx, pos)
	if !s.ok {
		return self
	}

	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, i := range idx {
		if b.x[i][s.feature] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	parent := gini(float64(pos), float64(n)) * float64(n)
	b.importances[s.feature] += (parent - s.score) / b.total

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)

	b.nodes[self].Feature = s.feature
	b.nodes[self].Threshold = s.threshold
	b.nodes[self].Left = l
	b.nodes[self].Right = r
	return self
}

// bestSplit draws features in random order and evaluates them until mtry
// non-constant features have been visited, continuing past mtry only while no
// valid split has been found.
func (b *treeBuilder) bestSplit(idx []int, pos int) split {
	best := split{score: math.Inf(1)}
	n := len(idx)
	minLeaf := b.params.MinSamplesLeaf

	order := make([]int, n)
	visited := 0

	for _, f := range b.rng.Perm(len(b.x[0])) {
		if visited >= b.mtry && best.ok {
			break
		}

		copy(order, idx)
		slices.SortFunc(order, func(a, c int) int {
			va, vc := b.x[a][f], b.x[c][f]
			switch {
			case va < vc:
				return -1
			case va > vc:
				return 1
			default:
				return 0
			}
		})
		if b.x[order[0]][f] == b.x[order[n-1]][f] {
			continue
		}
		visited++

		leftPos := 0
		for i := 0; i < n-1; i++ {
			leftPos += b.y[order[i]]
			lo, hi := b.x[order[i]][f], b.x[order[i+1]][f]
			if lo == hi {
				continue
			}
			leftN := i + 1
			rightN := n - leftN
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}
			score := gini(float64(leftPos), float64(leftN))*float64(leftN) +
				gini(float64(pos-leftPos), float64(rightN))*float64(rightN)
			if score < best.score {
				best = split{ok: true, feature: f, threshold: lo + (hi-lo)/2, score: score}
			}
		}
	}
	return best
}
