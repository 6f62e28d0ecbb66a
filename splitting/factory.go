// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import "github.com/pkg/errors"

// Criterion names the splitting criterion a Factory builds a Rule for.
type Criterion string

// Regression is the only criterion this module implements: the weighted-
// variance score of spec.md §4.2. The type exists so causal/survival/
// quantile variants can register additional criteria without changing the
// Rule interface, per spec.md §4.3's relabeling seam.
const Regression Criterion = "regression"

// ErrUnknownCriterion is returned by Factory.New for an unregistered
// criterion name.
var ErrUnknownCriterion = errors.New("splitting: unknown criterion")

// Factory builds a Rule from a criterion name, grounded in the teacher's
// cart.Input.SplitMethod constant-selected-dispatch idiom
// (classifiers/cart/cart.go's SplitMethodGini).
type Factory struct{}

// New returns the Rule for criterion.
func (Factory) New(criterion Criterion) (Rule, error) {
	switch criterion {
	case Regression:
		return RegressionRule{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownCriterion, "criterion %q", criterion)
	}
}
