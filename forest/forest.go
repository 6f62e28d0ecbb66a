// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package forest builds and serializes a GRF forest: the CI-group task
// decomposition of spec.md §5 over a worker pool, and the trained result's
// gob-based on-disk form. Grounded in classifier/randomforest.Runtime's
// Build loop (bagging a fixed tree count against a Runtime.NTree budget),
// generalized from a single flat loop to the CI-group batching spec.md §5
// requires and from a hand-rolled goroutine/WaitGroup pair to
// golang.org/x/sync/errgroup's bounded worker pool.
package forest

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/options"
	"github.com/shuLhan/grf/relabeling"
	"github.com/shuLhan/grf/rtree"
	"github.com/shuLhan/grf/sampling"
	"github.com/shuLhan/grf/splitting"
)

// formatVersion is written first in a serialized forest so Deserialize can
// reject a file from an incompatible future format rather than misread it.
const formatVersion byte = 1

// ErrFormatVersion is returned by Deserialize for an unrecognized version byte.
var ErrFormatVersion = errors.New("forest: unrecognized serialization format version")

// Forest is a trained GRF forest: the grown trees plus the bookkeeping a
// predictor needs to reproduce training-time sampling (spec.md §3, §5).
type Forest struct {
	Trees        []*rtree.Tree
	NumRows      int
	NumCols      int
	OutcomeIndex int
	CIGroupSize  int
	Seed         uint64
	Options      options.ForestOptions
}

// Trainer grows a Forest: it owns the splitting rule and relabeling
// strategy every tree shares, and drives a bounded worker pool over the
// CI-group task decomposition of spec.md §5.
type Trainer struct {
	Splitter splitting.Rule
	Relabel  relabeling.Strategy
}

// NewTrainer builds a Trainer for the regression criterion, the only one
// this module implements.
func NewTrainer() *Trainer {
	return &Trainer{Splitter: splitting.RegressionRule{}, Relabel: relabeling.Identity{}}
}

// group holds the trees grown in lock-step from one shared first-stage
// subsample, the unit of work spec.md §5 assigns to the worker pool.
type group struct {
	startTree int
	trees     []*rtree.Tree
}

// Train grows opts.NumTrees trees over data, opts.CIGroupSize at a time per
// shared first-stage subsample, across opts.NumThreads workers. Train fills
// in any zero-valued options via options.ForestOptions.WithDefaults and
// validates the result before any tree is grown, so callers may pass
// either raw or already-defaulted options.
func (tr *Trainer) Train(ctx context.Context, data grfdata.Data, opts options.ForestOptions) (*Forest, error) {
	opts = opts.WithDefaults(data.NumCols())
	if err := opts.Validate(data.NumRows(), data.NumCols(), data.OutcomeIndex); err != nil {
		return nil, errors.Wrap(err, "forest: invalid options")
	}

	numGroups := opts.NumTrees / opts.CIGroupSize
	groups := make([]group, numGroups)

	log.Debug().Int("num_trees", opts.NumTrees).Int("num_groups", numGroups).
		Int("num_threads", opts.NumThreads).Msg("forest: training")

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.NumThreads)

	sampOpts := sampling.Options{
		Weights:           opts.SampleWeights,
		Clusters:          opts.Clusters,
		SamplesPerCluster: opts.SamplesPerCluster,
	}
	treeOpts := opts.TreeOptions()

	for g := 0; g < numGroups; g++ {
		g := g
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			groups[g] = tr.growGroup(data, opts, sampOpts, treeOpts, g)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "forest: training failed")
	}

	trees := make([]*rtree.Tree, 0, opts.NumTrees)
	for _, grp := range groups {
		trees = append(trees, grp.trees...)
	}

	return &Forest{
		Trees:        trees,
		NumRows:      data.NumRows(),
		NumCols:      data.NumCols(),
		OutcomeIndex: data.OutcomeIndex,
		CIGroupSize:  opts.CIGroupSize,
		Seed:         opts.Seed,
		Options:      opts,
	}, nil
}

// growGroup draws the shared first-stage subsample for CI group g — at
// opts.SampleFraction, weighted by opts.SampleWeights when set — and grows
// its CIGroupSize trees directly on that one subsample, per spec.md §5: a
// CI group's trees share their bootstrap sample outright (they differ only
// in the honesty split and mtry draws each tree's own Sampler makes), which
// is what makes the group's between/within variance decomposition valid.
func (tr *Trainer) growGroup(data grfdata.Data, opts options.ForestOptions, sampOpts sampling.Options, treeOpts options.TreeOptions, g int) group {
	poolSeed := sampling.DerivePoolSeed(opts.Seed, g)
	poolSampler := sampling.NewSampler(poolSeed, sampOpts)

	pool := poolSampler.SampleClusters(data.NumRows(), opts.SampleFraction)
	if sampOpts.Clustered() {
		pool = poolSampler.SampleFromClusters(pool)
	}

	grp := group{startTree: g * opts.CIGroupSize, trees: make([]*rtree.Tree, opts.CIGroupSize)}
	for t := 0; t < opts.CIGroupSize; t++ {
		treeIndex := grp.startTree + t
		treeSampler := sampling.NewSampler(sampling.DeriveTreeSeed(opts.Seed, treeIndex), sampOpts)

		trainer := rtree.Trainer{Splitter: tr.Splitter, Relabel: tr.Relabel, Opts: treeOpts}
		grp.trees[t] = trainer.Train(data, treeSampler, pool)
	}
	return grp
}

// wireForest is the gob-serializable shadow of Forest: rtree.Tree carries an
// unexported index that gob cannot round-trip, so Serialize/Deserialize
// transfer only the exported Nodes/InBagSamples/OOBSamples and rebuild the
// index on decode via rtree.Tree.BuildIndex.
type wireForest struct {
	Trees        []wireTree
	NumRows      int
	NumCols      int
	OutcomeIndex int
	CIGroupSize  int
	Seed         uint64
	Options      options.ForestOptions
}

type wireTree struct {
	Nodes        []rtree.Node
	InBagSamples []int
	OOBSamples   []int
}

// Serialize encodes f in this package's versioned gob format.
func Serialize(f *Forest) ([]byte, error) {
	wf := wireForest{
		NumRows:      f.NumRows,
		NumCols:      f.NumCols,
		OutcomeIndex: f.OutcomeIndex,
		CIGroupSize:  f.CIGroupSize,
		Seed:         f.Seed,
		Options:      f.Options,
		Trees:        make([]wireTree, len(f.Trees)),
	}
	for i, t := range f.Trees {
		wf.Trees[i] = wireTree{Nodes: t.Nodes, InBagSamples: t.InBagSamples, OOBSamples: t.OOBSamples}
	}

	var buf bytes.Buffer
	buf.WriteByte(formatVersion)
	if err := gob.NewEncoder(&buf).Encode(wf); err != nil {
		return nil, errors.Wrap(err, "forest: serialize")
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a Forest previously written by Serialize.
func Deserialize(data []byte) (*Forest, error) {
	if len(data) == 0 || data[0] != formatVersion {
		return nil, ErrFormatVersion
	}

	var wf wireForest
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&wf); err != nil {
		return nil, errors.Wrap(err, "forest: deserialize")
	}

	trees := make([]*rtree.Tree, len(wf.Trees))
	for i, wt := range wf.Trees {
		trees[i] = rtree.NewTree(wt.Nodes, wt.InBagSamples, wt.OOBSamples)
	}

	return &Forest{
		Trees:        trees,
		NumRows:      wf.NumRows,
		NumCols:      wf.NumCols,
		OutcomeIndex: wf.OutcomeIndex,
		CIGroupSize:  wf.CIGroupSize,
		Seed:         wf.Seed,
		Options:      wf.Options,
	}, nil
}
