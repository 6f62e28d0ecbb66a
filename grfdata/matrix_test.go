// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grfdata_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuLhan/grf/grfdata"
)

func TestDenseMatrixGet(t *testing.T) {
	m := grfdata.NewDenseMatrix([]float64{
		1, 2, 3,
		4, 5, 6,
	}, 2, 3)

	require.Equal(t, 2, m.NumRows())
	require.Equal(t, 3, m.NumCols())
	assert.Equal(t, 5.0, m.Get(1, 1))
	assert.Equal(t, 3.0, m.Get(0, 2))
}

func TestDenseMatrixFromRows(t *testing.T) {
	m := grfdata.NewDenseMatrixFromRows([][]float64{
		{1, 2},
		{3, 4},
		{5, 6},
	})

	require.Equal(t, 3, m.NumRows())
	require.Equal(t, 2, m.NumCols())
	assert.Equal(t, 4.0, m.Get(1, 1))
}

func TestDataOutcomeAndRow(t *testing.T) {
	m := grfdata.NewDenseMatrixFromRows([][]float64{
		{1, 10},
		{2, 20},
	})
	d := grfdata.New(m, 1)

	assert.Equal(t, 10.0, d.Outcome(0))
	assert.Equal(t, 20.0, d.Outcome(1))

	row := d.Row(0)
	assert.Equal(t, 0, row.Index())
	assert.Equal(t, 1.0, row.Get(0))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, grfdata.IsMissing(math.NaN()))
	assert.False(t, grfdata.IsMissing(0.0))
}

func TestSparseMatrixBuilder(t *testing.T) {
	b := grfdata.NewSparseMatrixBuilder(3, 3)
	b.Add(0, 0, 1.0)  // column 0
	b.Add(2, 1, 3.0)  // column 1
	b.Add(1, 2, 5.0)  // column 2
	m := b.Build()

	assert.Equal(t, 1.0, m.Get(0, 0))
	assert.Equal(t, 0.0, m.Get(0, 1))
	assert.Equal(t, 5.0, m.Get(1, 2))
	assert.Equal(t, 3.0, m.Get(2, 1))
	assert.Equal(t, 3, m.NumRows())
	assert.Equal(t, 3, m.NumCols())
}
