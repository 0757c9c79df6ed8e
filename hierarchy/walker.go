// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package hierarchy

import (
	"math/rand/v2"
)

// Walker generates uniform random walks over a classification tree. Walks
// are sequences of node indices; the embedding trainer consumes them as its
// corpus. A Walker is deterministic for a given seed.
type Walker struct {
	graph        *Graph
	walksPerNode int
	walkLength   int
	rng          *rand.Rand
}

// NewWalker creates a Walker producing walksPerNode walks of walkLength
// nodes starting from every node of the graph.
func NewWalker(g *Graph, walksPerNode, walkLength int, seed uint64) *Walker {
	return &Walker{
		graph:        g,
		walksPerNode: walksPerNode,
		walkLength:   walkLength,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Walks generates the full walk corpus. Start nodes are shuffled between
// passes so consecutive walks do not revisit the same region.
func (w *Walker) Walks() [][]int32 {
	n := w.graph.Len()
	order := make([]int32, n)
	for i := range order {
		order[i] = int32(i)
	}

	walks := make([][]int32, 0, n*w.walksPerNode)
	for pass := 0; pass < w.walksPerNode; pass++ {
		w.rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, start := range order {
			walks = append(walks, w.walk(start))
		}
	}
	return walks
}

// walk takes one uniform random walk: each step moves to a neighbor chosen
// uniformly among the parent and children of the current node.
func (w *Walker) walk(start int32) []int32 {
	steps := make([]int32, 1, w.walkLength)
	steps[0] = start
	current := start
	for len(steps) < w.walkLength {
		degree := w.graph.Degree(current)
		if degree == 0 {
			break // single-node graph
		}
		current = w.graph.Neighbor(current, w.rng.IntN(degree))
		steps = append(steps, current)
	}
	return steps
}
