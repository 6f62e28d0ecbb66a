// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package forest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuLhan/grf/forest"
	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/options"
)

func linearData(n int) grfdata.Data {
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		rows[i] = []float64{x, 2*x + 1}
	}
	return grfdata.New(grfdata.NewDenseMatrixFromRows(rows), 1)
}

func TestTrainProducesRequestedTreeCount(t *testing.T) {
	data := linearData(50)
	opts := options.ForestOptions{NumTrees: 20, Seed: 7}.WithDefaults(2)

	f, err := forest.NewTrainer().Train(context.Background(), data, opts)
	require.NoError(t, err)
	assert.Len(t, f.Trees, 20)
}

func TestTrainDeterministicAcrossThreadCounts(t *testing.T) {
	data := linearData(50)

	opts1 := options.ForestOptions{NumTrees: 12, CIGroupSize: 4, Seed: 99, NumThreads: 1}.WithDefaults(2)
	opts2 := options.ForestOptions{NumTrees: 12, CIGroupSize: 4, Seed: 99, NumThreads: 8}.WithDefaults(2)

	f1, err := forest.NewTrainer().Train(context.Background(), data, opts1)
	require.NoError(t, err)
	f2, err := forest.NewTrainer().Train(context.Background(), data, opts2)
	require.NoError(t, err)

	require.Len(t, f2.Trees, len(f1.Trees))
	for i := range f1.Trees {
		assert.Equal(t, f1.Trees[i].InBagSamples, f2.Trees[i].InBagSamples,
			"tree %d in-bag set must not depend on worker-pool thread count", i)
		assert.Equal(t, f1.Trees[i].Nodes, f2.Trees[i].Nodes, "tree %d structure must match", i)
	}
}

func TestTrainSampleWeightsBiasBootstrapMembership(t *testing.T) {
	data := linearData(50)

	weights := make([]float64, 50)
	for i := range weights {
		if i < 10 {
			weights[i] = 1000
		} else {
			weights[i] = 0.001
		}
	}

	opts := options.ForestOptions{
		NumTrees:       60,
		CIGroupSize:    4,
		Seed:           21,
		SampleFraction: 0.3,
		SampleWeights:  weights,
	}.WithDefaults(2)

	f, err := forest.NewTrainer().Train(context.Background(), data, opts)
	require.NoError(t, err)

	var fromHeavy, fromLight int
	for _, tr := range f.Trees {
		for _, id := range tr.InBagSamples {
			if id < 10 {
				fromHeavy++
			} else {
				fromLight++
			}
		}
	}

	require.Greater(t, fromHeavy+fromLight, 0)
	// Rows 0-9 carry a weight a million times larger than the rest, so a
	// weighted draw should pick them overwhelmingly more often than their
	// 10/50 share of the population would predict.
	heavyShare := float64(fromHeavy) / float64(fromHeavy+fromLight)
	assert.Greater(t, heavyShare, 0.8, "bootstrap membership must track SampleWeights")
}

func TestTrainRejectsInvalidOptions(t *testing.T) {
	data := linearData(0)
	_, err := forest.NewTrainer().Train(context.Background(), data, options.ForestOptions{}.WithDefaults(2))
	assert.Error(t, err)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	data := linearData(30)
	opts := options.ForestOptions{NumTrees: 6, Seed: 3}.WithDefaults(2)
	f, err := forest.NewTrainer().Train(context.Background(), data, opts)
	require.NoError(t, err)

	encoded, err := forest.Serialize(f)
	require.NoError(t, err)

	decoded, err := forest.Deserialize(encoded)
	require.NoError(t, err)

	require.Len(t, decoded.Trees, len(f.Trees))
	for i := range f.Trees {
		assert.Equal(t, f.Trees[i].Nodes, decoded.Trees[i].Nodes)
		assert.Equal(t, f.Trees[i].InBagSamples, decoded.Trees[i].InBagSamples)
		assert.True(t, decoded.Trees[i].InBag(decoded.Trees[i].InBagSamples[0]))
	}
}

func TestDeserializeRejectsBadVersion(t *testing.T) {
	_, err := forest.Deserialize([]byte{0xFF, 1, 2, 3})
	assert.ErrorIs(t, err, forest.ErrFormatVersion)
}
