// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtree implements one honest regression tree: the bootstrap,
// honesty-split, and recursive-grow pipeline of spec.md §4.4, plus leaf
// traversal for a query point (§4.6). Grounded in classifiers/cart/cart.go's
// BuildTree/splitTree recursion and tree/binary's node linkage, generalized
// from a classification leaf (majority class) to a regression leaf (the
// honest sample set) and from unconditional recursion to the honesty/alpha/
// min-node-size guards spec.md §4.4 requires.
package rtree

import "github.com/shuLhan/grf/grfdata"

// Node is one node of a Tree. Internal nodes carry a split; leaves carry
// the honest prediction sample set (or, with honesty off, the whole
// in-bag set that reached the leaf).
type Node struct {
	IsLeaf          bool
	SplitVar        int
	SplitValue      float64
	SendMissingLeft bool
	LeftChild       int
	RightChild      int
	LeafSamples     []int
}

// Tree is a directed rooted binary tree over integer node ids, 0 = root,
// plus the in-bag/out-of-bag bookkeeping spec.md §3 requires of every
// tree. Trees are immutable after construction.
type Tree struct {
	Nodes        []Node
	InBagSamples []int
	OOBSamples   []int

	inBagIndex map[int]struct{}
}

// NewTree builds a Tree and its in-bag membership index.
func NewTree(nodes []Node, inBagSamples, oobSamples []int) *Tree {
	t := &Tree{Nodes: nodes, InBagSamples: inBagSamples, OOBSamples: oobSamples}
	t.BuildIndex()
	return t
}

// BuildIndex (re)builds the in-bag membership index. It must be called
// once after constructing a Tree outside of NewTree — for instance after
// gob-decoding one, since the index is unexported and not serialized.
func (t *Tree) BuildIndex() {
	t.inBagIndex = make(map[int]struct{}, len(t.InBagSamples))
	for _, id := range t.InBagSamples {
		t.inBagIndex[id] = struct{}{}
	}
}

// InBag reports whether row was in this tree's in-bag set.
func (t *Tree) InBag(row int) bool {
	_, ok := t.inBagIndex[row]
	return ok
}

// Leaf walks from the root to the leaf that row belongs to, routing on
// SplitValue (<=: left, >: right) and on SendMissingLeft when the split
// feature is missing (spec.md §4.6).
func (t *Tree) Leaf(row grfdata.Row) int {
	idx := 0
	for {
		n := &t.Nodes[idx]
		if n.IsLeaf {
			return idx
		}
		v := row.Get(n.SplitVar)
		var goLeft bool
		if grfdata.IsMissing(v) {
			goLeft = n.SendMissingLeft
		} else {
			goLeft = v <= n.SplitValue
		}
		if goLeft {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}
}

// LeafSamples returns the prediction sample set of row's leaf.
func (t *Tree) LeafSamples(row grfdata.Row) []int {
	return t.Nodes[t.Leaf(row)].LeafSamples
}
