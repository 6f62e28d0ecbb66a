// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package statutil implements the half-sampling variance estimator and its
// Bayes-shrinkage debiaser (spec.md §4.8), shared by every prediction
// strategy's variance output. Grounded in classifier/runtime.go's running
// ComputeStatFromCM accumulator idiom: one pass over per-tree/per-group
// contributions, no buffered matrix of residuals.
package statutil

// GroupVariance accumulates the between-CI-group and within-group
// quantities the half-sampling variance estimator needs (spec.md §4.8): one
// psi_b per group (the group's own mean tree value, since variance is
// shift-invariant and the overall estimate cancels out of every pairwise
// difference) and the per-tree values within each group for the noise term.
type GroupVariance struct {
	groupSize  int
	groupMeans []float64 // one entry per CI group: mean tree value over the group
	groupSpread []float64 // one entry per CI group: sum of squared deviations of the group's own trees around their mean
}

// NewGroupVariance prepares an accumulator for a forest with the given
// number of CI groups and trees per group.
func NewGroupVariance(numGroups, groupSize int) *GroupVariance {
	return &GroupVariance{
		groupSize:   groupSize,
		groupMeans:  make([]float64, numGroups),
		groupSpread: make([]float64, numGroups),
	}
}

// AddGroup records one CI group's per-tree values (psi_{b,1}..psi_{b,g}).
func (gv *GroupVariance) AddGroup(groupIndex int, treeValues []float64) {
	var sum float64
	for _, v := range treeValues {
		sum += v
	}
	mean := sum / float64(len(treeValues))
	gv.groupMeans[groupIndex] = mean

	var spread float64
	for _, v := range treeValues {
		d := v - mean
		spread += d * d
	}
	gv.groupSpread[groupIndex] = spread
}

// Estimate returns the debiased variance of the forest's prediction, per
// spec.md §4.8: the between-group variance of the group means, minus the
// within-group sampling noise it would have even if every group's true
// value were identical, debiased via Debias.
func (gv *GroupVariance) Estimate() float64 {
	m := len(gv.groupMeans)
	if m < 2 {
		return 0
	}

	var sum, sumSq float64
	for _, mean := range gv.groupMeans {
		sum += mean
		sumSq += mean * mean
	}
	mg := float64(m)
	// Uncorrected population variance of the group means, per spec.md
	// §4.7.1 — groupNoise below is derived from this via the law-of-total-
	// variance identity, which only holds exactly without a Bessel
	// correction here.
	varBetween := sumSq/mg - (sum/mg)*(sum/mg)

	var groupNoise float64
	if gv.groupSize > 1 {
		var spreadSum float64
		for _, s := range gv.groupSpread {
			spreadSum += s
		}
		// Average per-group sample variance of its own trees, divided by
		// group size: the noise a single group mean carries, spec.md
		// §4.8's group_noise term.
		avgSpread := spreadSum / mg / float64(gv.groupSize-1)
		groupNoise = avgSpread / float64(gv.groupSize)
	}

	return Debias(varBetween, groupNoise, int(mg))
}

// Debias shrinks a between-group variance estimate toward zero by the
// fraction of it attributable to within-group sampling noise, satisfying
// the three properties spec.md §4.8 requires of any implementation:
//
//  1. when var_between is comfortably larger than the noise floor, the
//     debiased estimate is close to var_between (precision -> 1);
//  2. as var_between shrinks toward the noise floor, the debiased estimate
//     shrinks continuously toward 0 rather than jumping;
//  3. the debiased estimate is never negative, regardless of how noisy the
//     input is.
func Debias(varBetween, groupNoise float64, numGoodGroups int) float64 {
	if numGoodGroups < 2 || varBetween <= 0 {
		return 0
	}
	floor := groupNoise / float64(numGoodGroups)
	if varBetween <= floor {
		return 0
	}
	precision := 1 - floor/varBetween
	debiased := precision * varBetween
	if debiased < 0 {
		return 0
	}
	return debiased
}
