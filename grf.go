// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grf implements a Generalized Random Forest: honest, CI-group
// structured regression trees trained over a weighted-variance splitting
// criterion (spec.md §4), with plain and local-linear-regression prediction
// strategies and a half-sampling variance estimator (spec.md §4.6-§4.8).
//
// This file is the package's external surface (spec.md §6); the trainer,
// tree grower, splitting/relabeling rules, sampler, predictor, and
// prediction strategies each live in their own subpackage, composed here.
package grf

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shuLhan/grf/forest"
	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/options"
	"github.com/shuLhan/grf/predictor"
	"github.com/shuLhan/grf/strategy"
)

// Re-exported so callers need only import this package for the common path.
type (
	// Data is a training or query dataset: a Matrix plus its outcome
	// column index.
	Data = grfdata.Data
	// Matrix is the read-only numeric accessor Data wraps.
	Matrix = grfdata.Matrix
	// ForestOptions configures a Train call.
	ForestOptions = options.ForestOptions
	// Forest is a trained GRF forest.
	Forest = forest.Forest
	// Prediction is one query row's point estimate (and, optionally, its
	// variance).
	Prediction = predictor.Prediction
	// LocalLinearPrediction is one query row's per-lambda local-linear
	// point estimates (and, optionally, their variances) — the "matrix"
	// spec.md §6 requires local_linear_predict to return.
	LocalLinearPrediction = predictor.MatrixPrediction
)

// NewData wraps m as training/query Data with the given outcome column.
func NewData(m Matrix, outcomeIndex int) Data {
	return grfdata.New(m, outcomeIndex)
}

// Train grows a forest over data under opts (spec.md §5). opts is defaulted
// and validated internally; Train never returns a partially grown forest —
// a configuration error aborts before any tree is built.
func Train(ctx context.Context, data Data, opts ForestOptions) (*Forest, error) {
	return forest.NewTrainer().Train(ctx, data, opts)
}

// Predict computes in-sample predictions for query against f's training
// data, using the plain-regression strategy. estimateVariance requests the
// half-sampling variance of spec.md §4.8 (requires f.CIGroupSize > 1).
func Predict(ctx context.Context, f *Forest, trainData, query Data, estimateVariance bool, numThreads int) ([]Prediction, error) {
	p := predictor.New(f, strategy.Regression{})
	return p.Predict(ctx, query, trainData, false, estimateVariance, numThreads)
}

// PredictOOB computes out-of-bag predictions for trainData against f: each
// row's estimate excludes every tree it was in-bag for (spec.md §4.6),
// giving an estimate of out-of-sample accuracy without a held-out set.
func PredictOOB(ctx context.Context, f *Forest, trainData Data, estimateVariance bool, numThreads int) ([]Prediction, error) {
	p := predictor.New(f, strategy.Regression{})
	return p.Predict(ctx, trainData, trainData, true, estimateVariance, numThreads)
}

// LocalLinearPredict computes in-sample predictions using the local-linear
// regression strategy (spec.md §4.7): a ridge-regularized linear correction
// over correctionVars, evaluated at each query point. lambdas is the list of
// ridge penalties to evaluate; ridge selects how each one's scale is chosen.
// Per spec.md §4.7.2 point 4 and §6, every lambda in the batch is solved
// against the same unpenalized Gram/RHS system, and the result carries one
// value (and, if requested, one variance) per lambda per query row. An
// empty correctionVars reduces to plain regression (spec.md §8).
func LocalLinearPredict(ctx context.Context, f *Forest, trainData, query Data, correctionVars []int, lambdas []float64, ridge strategy.RidgeType, estimateVariance bool, numThreads int) ([]LocalLinearPrediction, error) {
	strat := strategy.LocalLinear{CorrectionVars: correctionVars, Ridge: ridge}
	return predictor.PredictLocalLinearMulti(ctx, f, strat, query, trainData, lambdas, false, estimateVariance, numThreads)
}

// LocalLinearPredictOOB is the out-of-bag counterpart of
// LocalLinearPredict, analogous to PredictOOB.
func LocalLinearPredictOOB(ctx context.Context, f *Forest, trainData Data, correctionVars []int, lambdas []float64, ridge strategy.RidgeType, estimateVariance bool, numThreads int) ([]LocalLinearPrediction, error) {
	strat := strategy.LocalLinear{CorrectionVars: correctionVars, Ridge: ridge}
	return predictor.PredictLocalLinearMulti(ctx, f, strat, trainData, trainData, lambdas, true, estimateVariance, numThreads)
}

// Serialize encodes f in this package's versioned binary format.
func Serialize(f *Forest) ([]byte, error) {
	b, err := forest.Serialize(f)
	return b, errors.Wrap(err, "grf: serialize")
}

// Deserialize decodes a Forest previously written by Serialize.
func Deserialize(data []byte) (*Forest, error) {
	f, err := forest.Deserialize(data)
	return f, errors.Wrap(err, "grf: deserialize")
}
