// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package relabeling maps a node's training set to the pseudo-outcomes the
// splitting rule searches over (spec.md §4.3). Regression uses the
// identity mapping; the interface exists so causal, survival, or quantile
// forests can substitute their own pseudo-outcomes without the splitter
// having to know which kind of forest it is serving — the same capability-
// set seam CART's direct use of the target column is generalized from
// (classifiers/cart/cart.go's GetTargetAttrValues).
package relabeling

import "github.com/shuLhan/grf/grfdata"

// Strategy computes pseudo-outcomes for a node's sample set. ok is false
// when the node should be treated as a leaf outright (the "skip" signal of
// spec.md §4.3) rather than searched for a split.
type Strategy interface {
	Relabel(data grfdata.Data, sampleIDs []int) (pseudoOutcomes map[int]float64, ok bool)
}

// Identity is the regression relabeling strategy: rho_i = y_i.
type Identity struct{}

// Relabel implements Strategy.
func (Identity) Relabel(data grfdata.Data, sampleIDs []int) (map[int]float64, bool) {
	out := make(map[int]float64, len(sampleIDs))
	for _, id := range sampleIDs {
		out[id] = data.Outcome(id)
	}
	return out, true
}
