// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package statutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shuLhan/grf/statutil"
)

func TestDebiasNeverNegative(t *testing.T) {
	assert.Equal(t, 0.0, statutil.Debias(0.001, 10, 5))
	assert.GreaterOrEqual(t, statutil.Debias(100, 0.5, 5), 0.0)
}

func TestDebiasApproachesVarBetweenWhenNoiseSmall(t *testing.T) {
	d := statutil.Debias(100, 0.001, 50)
	assert.InDelta(t, 100, d, 1)
}

func TestDebiasContinuousNearFloor(t *testing.T) {
	// Just above the noise floor should debias to something small but
	// non-negative, not jump discontinuously.
	floor := 10.0 / 5
	above := statutil.Debias(floor*1.01, 10, 5)
	below := statutil.Debias(floor*0.99, 10, 5)
	assert.Equal(t, 0.0, below)
	assert.Greater(t, above, 0.0)
	assert.Less(t, above, floor*0.1)
}

func TestGroupVarianceEstimateZeroWhenGroupsIdentical(t *testing.T) {
	gv := statutil.NewGroupVariance(3, 2)
	gv.AddGroup(0, []float64{5, 5})
	gv.AddGroup(1, []float64{5, 5})
	gv.AddGroup(2, []float64{5, 5})

	assert.Equal(t, 0.0, gv.Estimate())
}

func TestGroupVarianceEstimatePositiveWhenGroupsDiffer(t *testing.T) {
	gv := statutil.NewGroupVariance(4, 3)
	gv.AddGroup(0, []float64{1, 1.1, 0.9})
	gv.AddGroup(1, []float64{10, 10.1, 9.9})
	gv.AddGroup(2, []float64{1, 0.9, 1.1})
	gv.AddGroup(3, []float64{10, 9.9, 10.1})

	assert.Greater(t, gv.Estimate(), 0.0)
}
