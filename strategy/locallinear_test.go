// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuLhan/grf/strategy"
)

func TestLocalLinearNoCorrectionVarsMatchesRegression(t *testing.T) {
	data := sampleData()
	weights := map[int]float64{0: 0.25, 1: 0.25, 2: 0.25, 3: 0.25}

	ll := strategy.LocalLinear{}
	reg := strategy.Regression{}

	assert.Equal(t, reg.Predict(data, weights), ll.Predict(data, weights))
}

func TestLocalLinearExactLinearRelationshipZeroLambda(t *testing.T) {
	// y = 10*x exactly: with lambda=0 the ridge correction should recover
	// the exact linear relationship, so predicting at x=2.5 gives ~25.
	data := sampleData() // x in {1,2,3,4}, y = 10x
	weights := map[int]float64{0: 0.25, 1: 0.25, 2: 0.25, 3: 0.25}

	ll := strategy.LocalLinear{CorrectionVars: []int{0}, Lambda: 0}
	got := ll.Predict(data, weights)

	// The weighted mean of y over these four equally-weighted rows is 25;
	// the linear correction is centered on the weighted mean of x (2.5),
	// so the intercept term equals the prediction at that centering point.
	assert.InDelta(t, 25.0, got, 1e-6)
}

func TestLocalLinearHighLambdaShrinksTowardRegression(t *testing.T) {
	data := sampleData()
	weights := map[int]float64{0: 0.25, 1: 0.25, 2: 0.25, 3: 0.25}

	reg := strategy.Regression{}.Predict(data, weights)
	ll := strategy.LocalLinear{CorrectionVars: []int{0}, Lambda: 1e9}

	assert.InDelta(t, reg, ll.Predict(data, weights), 1e-3)
}

func TestLocalLinearRidgeTypesPenalizeDifferently(t *testing.T) {
	// x in {1,2,3,4}, equally weighted, centered on query=row0 (x=1):
	// M = [[1.0, 1.5], [1.5, 3.5]], b = (25, 50), trace(M) = 4.5. With
	// lambda=1000, RidgeUnweighted adds lambda*trace(M)/(p+1) = 2250 to
	// M[1,1], giving coef 10/1801; RidgeCovariance adds lambda*M[1,1]
	// (pre-penalty) = 3500, giving coef 10/2801. A leaf of {0,1} (x=1,2,
	// centered -0,+1) has pseudo-residual mean 15 - coef/2, so the two
	// ridge types must disagree on it whenever their coefficients differ.
	data := sampleData()
	weights := map[int]float64{0: 0.25, 1: 0.25, 2: 0.25, 3: 0.25}
	query := data.Row(0)

	unweighted := strategy.LocalLinear{CorrectionVars: []int{0}, Lambda: 1000, Ridge: strategy.RidgeUnweighted}
	covariance := strategy.LocalLinear{CorrectionVars: []int{0}, Lambda: 1000, Ridge: strategy.RidgeCovariance}

	estU := unweighted.Estimate(data, weights, query)
	estC := covariance.Estimate(data, weights, query)

	assert.InDelta(t, 15.0-5.0/1801.0, estU.TreeValue([]int{0, 1}), 1e-9)
	assert.InDelta(t, 15.0-5.0/2801.0, estC.TreeValue([]int{0, 1}), 1e-9)
}

func TestLocalLinearPredictMultiSharesSystemAcrossLambdas(t *testing.T) {
	data := sampleData()
	weights := map[int]float64{0: 0.25, 1: 0.25, 2: 0.25, 3: 0.25}

	ll := strategy.LocalLinear{CorrectionVars: []int{0}, Ridge: strategy.RidgeUnweighted}
	lambdas := []float64{0, 1000, 1e9}

	got := ll.PredictMulti(data, weights, lambdas)
	require.Len(t, got, 3)

	for i, lambda := range lambdas {
		want := strategy.LocalLinear{CorrectionVars: []int{0}, Lambda: lambda, Ridge: strategy.RidgeUnweighted}.Predict(data, weights)
		assert.InDelta(t, want, got[i], 1e-9)
	}
}
