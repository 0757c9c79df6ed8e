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
	"errors"
	"fmt"
	"sort"

	"github.com/poiesic/icdmap/icd10"
)

// ErrEmptyCodeSet indicates Build was given no entries.
var ErrEmptyCodeSet = errors.New("cannot build hierarchy from empty code set")

// NodeKind discriminates the levels of the classification tree.
type NodeKind int

const (
	// KindRoot is the single synthetic root above the chapters.
	KindRoot NodeKind = iota + 1
	// KindChapter is a chapter of the tabular list.
	KindChapter
	// KindCode is a category or extension code. Interior prefixes absent
	// from the source are synthesized with this kind too.
	KindCode
)

// RootKey is the key of the root node.
const RootKey = "root"

func chapterKey(number int) string {
	return fmt.Sprintf("chapter:%02d", number)
}

// Node is one vertex of the classification tree.
type Node struct {
	Key      string
	Kind     NodeKind
	Parent   int32 // index into Graph nodes, -1 for the root
	Children []int32
}

// Graph is the classification tree. Nodes are stored in a flat slice and
// addressed by index; the tree is immutable once built.
type Graph struct {
	nodes []Node
	byKey map[string]int32
}

// Build derives the classification tree from a code set. Every entry code
// becomes a node; missing interior prefixes are synthesized so each code
// connects to its category, each category to its chapter, and each chapter
// to the root. Entries whose category falls outside every chapter are
// rejected.
func Build(entries []icd10.Entry) (*Graph, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCodeSet
	}

	g := &Graph{byKey: make(map[string]int32, len(entries)*2)}
	g.addNode(RootKey, KindRoot, -1)

	// Deterministic node numbering regardless of source order.
	codes := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Code] {
			continue
		}
		seen[e.Code] = true
		codes = append(codes, e.Code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if _, err := g.insertCode(code); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// insertCode ensures code and its whole prefix chain exist, returning the
// node index of code.
func (g *Graph) insertCode(code string) (int32, error) {
	if idx, ok := g.byKey[code]; ok {
		return idx, nil
	}

	var parentIdx int32
	if parent, ok := icd10.ParentOf(code); ok {
		var err error
		parentIdx, err = g.insertCode(parent)
		if err != nil {
			return 0, err
		}
	} else {
		ch, err := icd10.ChapterOf(code)
		if err != nil {
			return 0, fmt.Errorf("cannot place code %s in hierarchy: %w", code, err)
		}
		parentIdx = g.ensureChapter(ch.Number)
	}

	idx := g.addNode(code, KindCode, parentIdx)
	return idx, nil
}

func (g *Graph) ensureChapter(number int) int32 {
	key := chapterKey(number)
	if idx, ok := g.byKey[key]; ok {
		return idx
	}
	return g.addNode(key, KindChapter, 0) // parent is the root
}

func (g *Graph) addNode(key string, kind NodeKind, parent int32) int32 {
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, Node{Key: key, Kind: kind, Parent: parent})
	g.byKey[key] = idx
	if parent >= 0 {
		g.nodes[parent].Children = append(g.nodes[parent].Children, idx)
	}
	return idx
}

// Len returns the number of nodes, including root and chapters.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node at index i.
func (g *Graph) Node(i int32) Node {
	return g.nodes[i]
}

// Lookup returns the index of the node with the given key.
func (g *Graph) Lookup(key string) (int32, bool) {
	idx, ok := g.byKey[key]
	return idx, ok
}

// Degree returns the neighbor count of node i (parent plus children).
func (g *Graph) Degree(i int32) int {
	n := len(g.nodes[i].Children)
	if g.nodes[i].Parent >= 0 {
		n++
	}
	return n
}

// Neighbor returns the j-th neighbor of node i, counting the parent first.
func (g *Graph) Neighbor(i int32, j int) int32 {
	node := g.nodes[i]
	if node.Parent >= 0 {
		if j == 0 {
			return node.Parent
		}
		return node.Children[j-1]
	}
	return node.Children[j]
}

// Codes returns the keys of all code nodes in index order, synthesized
// interior prefixes included.
func (g *Graph) Codes() []string {
	out := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind == KindCode {
			out = append(out, n.Key)
		}
	}
	return out
}

// ChildrenOf returns the keys of the direct children of the given code.
func (g *Graph) ChildrenOf(code string) []string {
	idx, ok := g.byKey[code]
	if !ok {
		return nil
	}
	children := g.nodes[idx].Children
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, g.nodes[c].Key)
	}
	return out
}
