// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grf_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuLhan/grf"
	"github.com/shuLhan/grf/strategy"
)

func linearData(n int) grf.Data {
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		rows[i] = []float64{x, 2*x + 1}
	}
	return grf.NewData(dense(rows), 1)
}

type dense [][]float64

func (d dense) Get(row, col int) float64 { return d[row][col] }
func (d dense) NumRows() int             { return len(d) }
func (d dense) NumCols() int {
	if len(d) == 0 {
		return 0
	}
	return len(d[0])
}

func TestTrainAndPredictEndToEnd(t *testing.T) {
	data := linearData(80)
	opts := grf.ForestOptions{NumTrees: 40, Seed: 42}

	ctx := context.Background()
	f, err := grf.Train(ctx, data, opts)
	require.NoError(t, err)
	require.Len(t, f.Trees, 40)

	preds, err := grf.Predict(ctx, f, data, data, false, 4)
	require.NoError(t, err)
	require.Len(t, preds, 80)

	// The outcome spans 1..159; rows at either end are averaged over edge
	// leaves of at least MinNodeSize rows, which biases them by up to ~14.
	for i, p := range preds {
		assert.InDelta(t, data.Outcome(i), p.Value, 15.0)
	}
}

func TestLocalLinearPredictMatchesRegressionWithNoCorrection(t *testing.T) {
	data := linearData(50)
	opts := grf.ForestOptions{NumTrees: 20, Seed: 9}

	ctx := context.Background()
	f, err := grf.Train(ctx, data, opts)
	require.NoError(t, err)

	regPreds, err := grf.Predict(ctx, f, data, data, false, 4)
	require.NoError(t, err)

	llPreds, err := grf.LocalLinearPredict(ctx, f, data, data, nil, []float64{0, 1, 1e6}, strategy.RidgeUnweighted, false, 4)
	require.NoError(t, err)

	require.Len(t, llPreds, len(regPreds))
	for i := range regPreds {
		require.Len(t, llPreds[i].Values, 3)
		for _, v := range llPreds[i].Values {
			assert.InDelta(t, regPreds[i].Value, v, 1e-9)
		}
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	data := linearData(30)
	opts := grf.ForestOptions{NumTrees: 5, Seed: 1}

	f, err := grf.Train(context.Background(), data, opts)
	require.NoError(t, err)

	encoded, err := grf.Serialize(f)
	require.NoError(t, err)

	decoded, err := grf.Deserialize(encoded)
	require.NoError(t, err)
	assert.Len(t, decoded.Trees, len(f.Trees))
}
