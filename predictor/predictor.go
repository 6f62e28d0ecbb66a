// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package predictor implements the forest-kernel weight map (spec.md §4.6)
// and drives a strategy.Strategy over it, plus the half-sampling variance
// replay (spec.md §4.8) for forests trained with more than one CI group.
// Grounded in classifier/rf.Runtime's ClassifySet/Votes tallying loop,
// generalized from a vote-count tally per class to a weighted-contribution
// tally per training sample.
package predictor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shuLhan/grf/forest"
	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/statutil"
	"github.com/shuLhan/grf/strategy"
)

// Predictor drives a strategy.Strategy over a trained forest.Forest.
type Predictor struct {
	Forest   *forest.Forest
	Strategy strategy.Strategy
}

// New builds a Predictor for f using strat.
func New(f *forest.Forest, strat strategy.Strategy) *Predictor {
	return &Predictor{Forest: f, Strategy: strat}
}

// Prediction is the output of a single query row: the point estimate and,
// when variance estimation was requested, its half-sampling variance.
type Prediction struct {
	Value    float64
	Variance float64
	HasVar   bool
}

// Predict computes one Prediction per row of query, using trainData as the
// training set the forest's weight maps are built over. When oob is true,
// a query row's own trees (those it was in-bag for) are excluded from its
// weight map — the out-of-bag prediction mode of spec.md §4.6, used when
// query and trainData are the same dataset. estimateVariance requests the
// half-sampling variance replay of spec.md §4.8, which requires CIGroupSize
// > 1.
func (p *Predictor) Predict(ctx context.Context, query grfdata.Data, trainData grfdata.Data, oob bool, estimateVariance bool, numThreads int) ([]Prediction, error) {
	n := query.NumRows()
	out := make([]Prediction, n)

	eg, egCtx := errgroup.WithContext(ctx)
	if numThreads <= 0 {
		numThreads = 1
	}
	eg.SetLimit(numThreads)

	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			out[i] = p.predictRow(trainData, query.Row(i), oob && sameRow(query, trainData, i), estimateVariance)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// sameRow reports whether query and trainData are the same backing dataset
// at row i, the condition under which OOB exclusion is meaningful: a query
// point that wasn't part of training has no in-bag trees to exclude.
func sameRow(query, trainData grfdata.Data, i int) bool {
	return query.Matrix == trainData.Matrix && i < trainData.NumRows()
}

// predictRow builds the weight map for one query row and evaluates the
// strategy over it, replaying the half-sampling variance estimator across
// CI groups when requested.
func (p *Predictor) predictRow(trainData grfdata.Data, query grfdata.Row, oob bool, estimateVariance bool) Prediction {
	weights, groupLeaves := p.gatherContributions(trainData, query, oob)
	if len(weights) == 0 {
		return Prediction{}
	}

	value := p.Strategy.Predict(trainData, weights)

	pred := Prediction{Value: value}
	if !estimateVariance || p.Forest.CIGroupSize <= 1 || len(groupLeaves) < 2 {
		return pred
	}

	est := p.Strategy.Estimate(trainData, weights, query)
	gv := statutil.NewGroupVariance(len(groupLeaves), p.Forest.CIGroupSize)
	for g, leaves := range groupLeaves {
		treeValues := make([]float64, len(leaves))
		for t, leaf := range leaves {
			treeValues[t] = est.TreeValue(leaf)
		}
		gv.AddGroup(g, treeValues)
	}

	pred.Variance = gv.Estimate()
	pred.HasVar = true
	return pred
}

// MatrixPrediction is one query row's per-lambda local-linear point
// estimates and, when variance estimation was requested, their half-
// sampling variances — the batched form spec.md §6 requires
// local_linear_predict to return ("a matrix", one row per query point, one
// column per lambda).
type MatrixPrediction struct {
	Values    []float64
	Variances []float64
	HasVar    bool
}

// PredictLocalLinearMulti evaluates strat against every entry of lambdas for
// each row of query, sharing strat's unpenalized Gram/RHS system across the
// lambda loop (spec.md §4.7.2 point 4) rather than rebuilding it per lambda.
func PredictLocalLinearMulti(ctx context.Context, f *forest.Forest, strat strategy.LocalLinear, query grfdata.Data, trainData grfdata.Data, lambdas []float64, oob bool, estimateVariance bool, numThreads int) ([]MatrixPrediction, error) {
	p := &Predictor{Forest: f, Strategy: strat}
	n := query.NumRows()
	out := make([]MatrixPrediction, n)

	eg, egCtx := errgroup.WithContext(ctx)
	if numThreads <= 0 {
		numThreads = 1
	}
	eg.SetLimit(numThreads)

	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			out[i] = p.predictRowMulti(trainData, query.Row(i), strat, lambdas, oob && sameRow(query, trainData, i), estimateVariance)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// predictRowMulti is predictRow's multi-lambda counterpart: one weight map
// and one set of CI-group leaf samples serve every lambda in the batch.
func (p *Predictor) predictRowMulti(trainData grfdata.Data, query grfdata.Row, strat strategy.LocalLinear, lambdas []float64, oob bool, estimateVariance bool) MatrixPrediction {
	weights, groupLeaves := p.gatherContributions(trainData, query, oob)
	if len(weights) == 0 {
		return MatrixPrediction{Values: make([]float64, len(lambdas))}
	}

	mp := MatrixPrediction{Values: strat.PredictMulti(trainData, weights, lambdas)}
	if !estimateVariance || p.Forest.CIGroupSize <= 1 || len(groupLeaves) < 2 {
		return mp
	}

	ests := strat.EstimateMulti(trainData, weights, query, lambdas)
	variances := make([]float64, len(lambdas))
	for li, est := range ests {
		gv := statutil.NewGroupVariance(len(groupLeaves), p.Forest.CIGroupSize)
		for g, leaves := range groupLeaves {
			treeValues := make([]float64, len(leaves))
			for t, leaf := range leaves {
				treeValues[t] = est.TreeValue(leaf)
			}
			gv.AddGroup(g, treeValues)
		}
		variances[li] = gv.Estimate()
	}
	mp.Variances = variances
	mp.HasVar = true
	return mp
}

// gatherContributions builds the forest weight map of spec.md §4.6: each
// tree contributes 1/|leaf| to every sample sharing the query's leaf, and
// the per-tree contributions are averaged across trees (in OOB mode, trees
// the query row was in-bag for are excluded) so the weights sum to 1. It also returns, per CI group,
// each tree's leaf sample set — the raw material the variance replay needs.
func (p *Predictor) gatherContributions(trainData grfdata.Data, query grfdata.Row, oob bool) (map[int]float64, [][][]int) {
	groupSize := p.Forest.CIGroupSize
	if groupSize <= 0 {
		groupSize = 1
	}
	numGroups := (len(p.Forest.Trees) + groupSize - 1) / groupSize
	groupLeaves := make([][][]int, numGroups)

	sums := make(map[int]float64)
	var denom float64

	for ti, tree := range p.Forest.Trees {
		if oob && tree.InBag(query.Index()) {
			continue
		}
		leaf := tree.LeafSamples(query)
		if len(leaf) == 0 {
			continue
		}
		g := ti / groupSize
		groupLeaves[g] = append(groupLeaves[g], leaf)

		w := 1.0 / float64(len(leaf))
		for _, id := range leaf {
			sums[id] += w
		}
		denom++
	}

	if denom == 0 {
		return nil, nil
	}
	weights := make(map[int]float64, len(sums))
	for id, s := range sums {
		weights[id] = s / denom
	}

	nonEmpty := groupLeaves[:0]
	for _, g := range groupLeaves {
		if len(g) > 0 {
			nonEmpty = append(nonEmpty, g)
		}
	}
	return weights, nonEmpty
}
