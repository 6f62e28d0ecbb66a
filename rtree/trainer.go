// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtree

import (
	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/options"
	"github.com/shuLhan/grf/relabeling"
	"github.com/shuLhan/grf/sampling"
	"github.com/shuLhan/grf/splitting"
)

// Trainer grows one tree from a pre-drawn in-bag sample, following the
// three phases of spec.md §4.4: bootstrap (done by the caller, since it is
// shared across a CI group — see forest.Trainer), honesty split, and grow.
type Trainer struct {
	Splitter splitting.Rule
	Relabel  relabeling.Strategy
	Opts     options.TreeOptions
}

// Train grows a tree over inBag, using samp for the honesty split and the
// per-node mtry feature draws. samp must not be shared with any other
// concurrently-growing tree.
func (tr *Trainer) Train(data grfdata.Data, samp *sampling.Sampler, inBag []int) *Tree {
	splitSet, honestSet := inBag, inBag
	if tr.Opts.Honesty {
		splitSet, honestSet = samp.Subsample(inBag, 0.5)
	}

	reserved := reservedColumns(data)

	var nodes []Node
	tr.grow(data, samp, splitSet, honestSet, reserved, &nodes)

	inBagIdx := make(map[int]struct{}, len(inBag))
	for _, id := range inBag {
		inBagIdx[id] = struct{}{}
	}
	oob := make([]int, 0, data.NumRows()-len(inBag))
	for row := 0; row < data.NumRows(); row++ {
		if _, ok := inBagIdx[row]; !ok {
			oob = append(oob, row)
		}
	}

	return NewTree(nodes, inBag, oob)
}

// grow recursively builds the tree in depth-first pre-order (a node's
// index is reserved before its children are grown), a stable and
// deterministic traversal order given the sampler's state, per spec.md §5.
// splitSet chooses the split at this node; honestSet populates the leaf
// when the split is rejected. With honesty off the two sets are identical.
func (tr *Trainer) grow(data grfdata.Data, samp *sampling.Sampler, splitSet, honestSet []int, reserved map[int]struct{}, nodes *[]Node) int {
	idx := len(*nodes)
	*nodes = append(*nodes, Node{})

	if len(splitSet) < 2*tr.Opts.MinNodeSize {
		(*nodes)[idx] = leafNode(honestSet)
		return idx
	}

	pseudo, ok := tr.Relabel.Relabel(data, splitSet)
	if !ok {
		(*nodes)[idx] = leafNode(honestSet)
		return idx
	}

	features := samp.Draw(data.NumCols(), reserved, tr.Opts.Mtry)
	split, ok := tr.Splitter.FindBestSplit(
		data, splitSet, pseudo, features,
		tr.Opts.MinNodeSize, tr.Opts.Alpha, tr.Opts.ImbalancePenalty,
	)
	if !ok {
		(*nodes)[idx] = leafNode(honestSet)
		return idx
	}

	splitLeft, splitRight := partition(data, splitSet, split)

	honestLeft, honestRight := splitLeft, splitRight
	if tr.Opts.Honesty {
		honestLeft, honestRight = partition(data, honestSet, split)
		// The split chosen on splitSet is only legal if it also leaves
		// the honest sample's leaves above min_node_size: spec.md §4.4
		// requires the alpha/min-node-size guards to apply to both
		// samples, so a split that starves the honest side is refused
		// here rather than accepted and fixed up later.
		if len(honestLeft) < tr.Opts.MinNodeSize || len(honestRight) < tr.Opts.MinNodeSize {
			(*nodes)[idx] = leafNode(honestSet)
			return idx
		}
	}

	left := tr.grow(data, samp, splitLeft, honestLeft, reserved, nodes)
	right := tr.grow(data, samp, splitRight, honestRight, reserved, nodes)

	(*nodes)[idx] = Node{
		IsLeaf:          false,
		SplitVar:        split.Var,
		SplitValue:      split.Value,
		SendMissingLeft: split.SendMissingLeft,
		LeftChild:       left,
		RightChild:      right,
	}
	return idx
}

// reservedColumns returns the column indices a splitting rule must never be
// offered as a candidate feature: the outcome column, and the treatment/
// instrument columns a causal variant's relabeling strategy may consume
// directly (spec.md §4.3's relabeling seam).
func reservedColumns(data grfdata.Data) map[int]struct{} {
	reserved := map[int]struct{}{data.OutcomeIndex: {}}
	if data.TreatmentIndex != grfdata.NoColumn {
		reserved[data.TreatmentIndex] = struct{}{}
	}
	if data.InstrumentIndex != grfdata.NoColumn {
		reserved[data.InstrumentIndex] = struct{}{}
	}
	return reserved
}

func leafNode(samples []int) Node {
	leaf := append([]int(nil), samples...)
	return Node{IsLeaf: true, LeafSamples: leaf}
}

// partition splits ids into the left and right child sets of split,
// routing missing values per split.SendMissingLeft.
func partition(data grfdata.Data, ids []int, split splitting.Split) (left, right []int) {
	for _, id := range ids {
		v := data.Get(id, split.Var)
		var goLeft bool
		if grfdata.IsMissing(v) {
			goLeft = split.SendMissingLeft
		} else {
			goLeft = v <= split.Value
		}
		if goLeft {
			left = append(left, id)
		} else {
			right = append(right, id)
		}
	}
	return left, right
}
