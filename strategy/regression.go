// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package strategy implements the prediction strategies of spec.md §4.7:
// plain regression (the forest's weighted average of leaf outcomes) and
// local-linear regression (a ridge-regularized linear correction evaluated
// at the query point). Both satisfy the same Estimate seam so the predictor
// package never branches on which one it is driving.
package strategy

import "github.com/shuLhan/grf/grfdata"

// Estimate is the per-query pseudo-outcome view a prediction strategy hands
// to the half-sampling variance estimator (statutil.GroupVariance): the
// value a single tree contributes, given the sample ids in the leaf the
// query point landed in. For regression this is the leaf mean of y; for
// local-linear regression it is the leaf mean of a precomputed pseudo-
// residual. Since variance is shift-invariant, no strategy needs to also
// expose the forest-level estimate itself to compute a valid variance
// (spec.md §4.8).
type Estimate interface {
	// TreeValue returns one tree's contribution to the query estimate,
	// given the sample ids of the leaf the query point fell into.
	TreeValue(leafSamples []int) float64
}

// RegressionEstimate is the Estimate for plain regression: the mean outcome
// of the leaf.
type RegressionEstimate struct {
	Data grfdata.Data
}

// TreeValue implements Estimate.
func (r RegressionEstimate) TreeValue(leafSamples []int) float64 {
	if len(leafSamples) == 0 {
		return 0
	}
	var sum float64
	for _, id := range leafSamples {
		sum += r.Data.Outcome(id)
	}
	return sum / float64(len(leafSamples))
}

// Strategy computes a point prediction from a weight map (sample id ->
// forest weight, spec.md §4.6) over the training data.
type Strategy interface {
	Predict(data grfdata.Data, weights map[int]float64) float64
	// Estimate returns the per-tree value view this strategy's variance
	// replay should use. query is the row being predicted; plain
	// regression ignores it, local-linear regression centers its
	// correction on it.
	Estimate(data grfdata.Data, weights map[int]float64, query grfdata.Row) Estimate
}

// Regression is the plain-regression prediction strategy: the weighted
// average of training outcomes, spec.md §4.6/§4.7's baseline strategy.
type Regression struct{}

// Predict implements Strategy.
func (Regression) Predict(data grfdata.Data, weights map[int]float64) float64 {
	var sum float64
	for id, w := range weights {
		sum += w * data.Outcome(id)
	}
	return sum
}

// Estimate implements Strategy.
func (Regression) Estimate(data grfdata.Data, _ map[int]float64, _ grfdata.Row) Estimate {
	return RegressionEstimate{Data: data}
}
