// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/strategy"
)

func sampleData() grfdata.Data {
	m := grfdata.NewDenseMatrixFromRows([][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{4, 40},
	})
	return grfdata.New(m, 1)
}

func TestRegressionPredictWeightedAverage(t *testing.T) {
	data := sampleData()
	weights := map[int]float64{0: 0.25, 1: 0.25, 2: 0.25, 3: 0.25}

	got := strategy.Regression{}.Predict(data, weights)
	assert.Equal(t, 25.0, got)
}

func TestRegressionTreeValueIsLeafMean(t *testing.T) {
	data := sampleData()
	est := strategy.RegressionEstimate{Data: data}

	assert.Equal(t, 15.0, est.TreeValue([]int{0, 1}))
	assert.Equal(t, 0.0, est.TreeValue(nil))
}
