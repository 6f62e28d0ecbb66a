// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package splitting implements per-node best-split search under a
// splitting criterion (spec.md §4.2). The sweep structure — a sorted
// index, a running prefix sum, one pass over candidate thresholds — is
// grounded in gain/gini.Gini.ComputeContinu, with the Gini-impurity
// criterion replaced by the GRF weighted-variance score, since this
// module's scope is regression and local-linear regression rather than
// classification.
package splitting

import (
	"math"
	"sort"

	"github.com/shuLhan/grf/grfdata"
)

// idVal pairs a sample id with its (non-missing) feature value, the unit
// the threshold sweep sorts and walks.
type idVal struct {
	id  int
	val float64
}

// Split describes the accepted split at a node.
type Split struct {
	Var             int
	Value           float64
	SendMissingLeft bool
}

// Rule is the per-node best-split search, a capability set rather than a
// class hierarchy (spec.md §9): SplittingRule, RelabelingStrategy, and
// PredictionStrategy are all small interfaces implemented by plain structs,
// not a polymorphic object graph.
type Rule interface {
	// FindBestSplit searches candidateFeatures for the split of sampleIDs
	// that maximizes the rule's criterion, subject to the min-child-size
	// guard. pseudoOutcomes holds one value per id in sampleIDs, as
	// produced by a relabeling.Strategy. ok is false when no candidate
	// feature yields a legal split with positive gain, in which case the
	// node must become a leaf.
	FindBestSplit(
		data grfdata.Data,
		sampleIDs []int,
		pseudoOutcomes map[int]float64,
		candidateFeatures []int,
		minNodeSize int,
		alpha float64,
		imbalancePenalty float64,
	) (split Split, ok bool)
}

// RegressionRule implements the Δ = ΣL²/|L| + ΣR²/|R| − penalty·(1/|L|+1/|R|)
// criterion of spec.md §4.2 over the pseudo-outcomes produced by a
// relabeling.Strategy (identity, for plain regression).
type RegressionRule struct{}

// FindBestSplit implements Rule.
func (RegressionRule) FindBestSplit(
	data grfdata.Data,
	sampleIDs []int,
	pseudoOutcomes map[int]float64,
	candidateFeatures []int,
	minNodeSize int,
	alpha float64,
	imbalancePenalty float64,
) (Split, bool) {
	n := len(sampleIDs)
	if n == 0 {
		return Split{}, false
	}

	minChild := minNodeSize
	if need := int(math.Ceil(alpha * float64(n))); need > minChild {
		minChild = need
	}

	var (
		best      Split
		bestDelta float64
		found     bool
	)

	for _, feature := range candidateFeatures {
		split, delta, ok := bestSplitForFeature(data, sampleIDs, pseudoOutcomes, feature, minChild, imbalancePenalty)
		if !ok {
			continue
		}
		if !found || delta > bestDelta {
			best = split
			bestDelta = delta
			found = true
		}
	}

	if !found || bestDelta <= 0 {
		return Split{}, false
	}
	return best, true
}

// bestSplitForFeature sweeps the candidate thresholds of one feature,
// trying both missing-value assignments at each threshold and keeping the
// legal split (min(|L|,|R|) >= minChild) with the largest Δ. Ties within a
// feature resolve to the lower threshold because the sweep runs in ascending
// threshold order and only a strictly larger Δ replaces the incumbent; at a
// single threshold the missing-left assignment is tried first, so it keeps
// an exact tie with the missing-right one.
func bestSplitForFeature(
	data grfdata.Data,
	sampleIDs []int,
	pseudoOutcomes map[int]float64,
	feature int,
	minChild int,
	imbalancePenalty float64,
) (Split, float64, bool) {
	present := make([]idVal, 0, len(sampleIDs))
	var missingIDs []int
	var missingSum float64
	var total float64

	for _, id := range sampleIDs {
		rho := pseudoOutcomes[id]
		total += rho
		v := data.Get(id, feature)
		if grfdata.IsMissing(v) {
			missingIDs = append(missingIDs, id)
			missingSum += rho
			continue
		}
		present = append(present, idVal{id: id, val: v})
	}

	if len(present) < 2 {
		return Split{}, 0, false
	}

	sort.Slice(present, func(a, b int) bool { return present[a].val < present[b].val })

	n := len(sampleIDs)
	nm := len(missingIDs)

	var (
		best      Split
		bestDelta float64
		found     bool
		prefixSum float64
	)

	for i := 0; i < len(present)-1; i++ {
		prefixSum += pseudoOutcomes[present[i].id]
		// Only split where the value actually changes; otherwise the
		// threshold doesn't separate any samples.
		if present[i].val == present[i+1].val {
			continue
		}
		nBase := i + 1
		sumBase := prefixSum

		tryAssignment := func(missingLeft bool) {
			nl, sumL := nBase, sumBase
			if missingLeft {
				nl += nm
				sumL += missingSum
			}
			nr := n - nl
			sumR := total - sumL
			if nl < minChild || nr < minChild {
				return
			}
			delta := sumL*sumL/float64(nl) + sumR*sumR/float64(nr) -
				imbalancePenalty*(1/float64(nl)+1/float64(nr))
			if !found || delta > bestDelta {
				threshold := (present[i].val + present[i+1].val) / 2
				best = Split{Var: feature, Value: threshold, SendMissingLeft: missingLeft}
				bestDelta = delta
				found = true
			}
		}

		tryAssignment(true)
		tryAssignment(false)
	}

	return best, bestDelta, found
}
