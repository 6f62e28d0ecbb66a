// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/options"
	"github.com/shuLhan/grf/relabeling"
	"github.com/shuLhan/grf/rtree"
	"github.com/shuLhan/grf/sampling"
	"github.com/shuLhan/grf/splitting"
)

func twoClusterData() grfdata.Data {
	rows := make([][]float64, 0, 40)
	for i := 0; i < 20; i++ {
		rows = append(rows, []float64{float64(i) * 0.01, 1})
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, []float64{10 + float64(i)*0.01, 9})
	}
	return grfdata.New(grfdata.NewDenseMatrixFromRows(rows), 1)
}

func TestTrainLeafSamplesPartitionInBag(t *testing.T) {
	data := twoClusterData()
	samp := sampling.NewSampler(1, sampling.Options{})
	inBag := make([]int, data.NumRows())
	for i := range inBag {
		inBag[i] = i
	}

	trainer := rtree.Trainer{
		Splitter: splitting.RegressionRule{},
		Relabel:  relabeling.Identity{},
		Opts:     options.TreeOptions{Mtry: 1, MinNodeSize: 2, Alpha: 0.05},
	}

	tree := trainer.Train(data, samp, inBag)
	require.NotEmpty(t, tree.Nodes)

	// Every in-bag row must land in exactly one leaf, and the union of
	// all leaf sample sets must reconstruct a partition of the honest set.
	seen := make(map[int]int)
	var walk func(idx int)
	walk = func(idx int) {
		n := tree.Nodes[idx]
		if n.IsLeaf {
			for _, id := range n.LeafSamples {
				seen[id]++
			}
			return
		}
		walk(n.LeftChild)
		walk(n.RightChild)
	}
	walk(0)

	for _, count := range seen {
		assert.Equal(t, 1, count, "a sample must belong to exactly one leaf")
	}
}

func TestTrainHonestyLeafPopulationBoundedByInBag(t *testing.T) {
	data := twoClusterData()
	samp := sampling.NewSampler(2, sampling.Options{})
	inBag := make([]int, data.NumRows())
	for i := range inBag {
		inBag[i] = i
	}

	trainer := rtree.Trainer{
		Splitter: splitting.RegressionRule{},
		Relabel:  relabeling.Identity{},
		Opts:     options.TreeOptions{Mtry: 1, MinNodeSize: 2, Alpha: 0.05, Honesty: true},
	}

	tree := trainer.Train(data, samp, inBag)
	require.NotEmpty(t, tree.Nodes)

	var total int
	for _, n := range tree.Nodes {
		if n.IsLeaf {
			total += len(n.LeafSamples)
		}
	}
	// With honesty on, leaves are populated from the honest half only, so
	// the total leaf population is at most the in-bag size.
	assert.LessOrEqual(t, total, len(inBag))
	assert.Greater(t, total, 0)
}

func TestLeafTraversalRoutesByThreshold(t *testing.T) {
	nodes := []rtree.Node{
		{IsLeaf: false, SplitVar: 0, SplitValue: 5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, LeafSamples: []int{0, 1}},
		{IsLeaf: true, LeafSamples: []int{2, 3}},
	}
	tree := rtree.NewTree(nodes, []int{0, 1, 2, 3}, nil)

	data := grfdata.New(grfdata.NewDenseMatrixFromRows([][]float64{{1}, {9}}), 0)

	leftLeaf := tree.Leaf(data.Row(0))
	rightLeaf := tree.Leaf(data.Row(1))

	assert.Equal(t, 1, leftLeaf)
	assert.Equal(t, 2, rightLeaf)
}

func TestTreeInBagIndex(t *testing.T) {
	tree := rtree.NewTree([]rtree.Node{{IsLeaf: true, LeafSamples: []int{0}}}, []int{1, 3, 5}, []int{0, 2, 4})
	assert.True(t, tree.InBag(3))
	assert.False(t, tree.InBag(2))
}
