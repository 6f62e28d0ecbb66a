// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/shuLhan/grf/linalg"
)

func TestSolveLDLTIdentity(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	b := []float64{1, 2, 3}

	x, err := linalg.SolveLDLT(m, b)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3}, x, 1e-9)
}

func TestSolveLDLTKnownSystem(t *testing.T) {
	// M = [[4,1],[1,3]], b = [1,2] -> x = [1/11, 7/11]
	m := mat.NewSymDense(2, []float64{
		4, 1,
		1, 3,
	})
	b := []float64{1, 2}

	x, err := linalg.SolveLDLT(m, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/11.0, x[0], 1e-9)
	assert.InDelta(t, 7.0/11.0, x[1], 1e-9)
}

func TestSolveLDLTSingular(t *testing.T) {
	m := mat.NewSymDense(2, []float64{
		1, 1,
		1, 1,
	})
	b := []float64{1, 1}

	_, err := linalg.SolveLDLT(m, b)
	assert.ErrorIs(t, err, linalg.ErrSingular)
}

func TestSolveLDLTDimensionMismatch(t *testing.T) {
	m := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	_, err := linalg.SolveLDLT(m, []float64{1, 2, 3})
	assert.Error(t, err)
}
