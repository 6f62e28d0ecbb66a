// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strategy

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/shuLhan/grf/grfdata"
	"github.com/shuLhan/grf/linalg"
)

// llSystem is the unpenalized Gram matrix and RHS a ridge solve is built
// from, shared across every lambda a caller asks for — spec.md §4.7.2 point
// 4 requires the first three assembly steps run once and only the
// regularization/solve step repeat per lambda.
type llSystem struct {
	gram *mat.SymDense
	b    []float64
	dim  int
	p    int
	// trace is the sum of gram's diagonal before any penalty is added,
	// the scale term RidgeUnweighted's penalty is built from.
	trace float64
}

// RidgeType selects how the ridge penalty's scale is chosen, spec.md §4.7.
type RidgeType int

const (
	// RidgeUnweighted penalizes every corrected coefficient equally.
	RidgeUnweighted RidgeType = iota
	// RidgeCovariance scales each coefficient's penalty by its own
	// pre-penalty diagonal entry in the Gram matrix, so differently-scaled
	// covariates are regularized proportionally to their own spread.
	RidgeCovariance
)

// LocalLinear is the local-linear-regression prediction strategy: a ridge-
// regularized linear correction fit on the forest's weight map and
// evaluated at the query point (spec.md §4.7). The correction uses
// CorrectionVars (a subset of the training columns); an empty set reduces
// exactly to plain regression, per spec.md §8's required parity.
type LocalLinear struct {
	CorrectionVars []int
	Lambda         float64
	Ridge          RidgeType
}

// llEstimate holds one fitted ridge correction so TreeValue can build the
// pseudo-residual view for every tree without refitting.
type llEstimate struct {
	data    grfdata.Data
	vars    []int
	coef    []float64 // one entry per CorrectionVars entry, no intercept
	queryX  []float64
}

// Predict implements Strategy.
func (ll LocalLinear) Predict(data grfdata.Data, weights map[int]float64) float64 {
	intercept, _, _ := ll.fit(data, weights, nil)
	return intercept
}

// Estimate implements Strategy: it refits the ridge correction (fit is
// cheap relative to tree growth and keeps this strategy stateless between
// calls) and exposes the per-sample pseudo-residual the variance replay
// needs, centered on query — unlike plain regression, the correction
// depends on the query point, so it cannot be derived from the point
// estimate alone.
func (ll LocalLinear) Estimate(data grfdata.Data, weights map[int]float64, query grfdata.Row) Estimate {
	if len(ll.CorrectionVars) == 0 {
		return RegressionEstimate{Data: data}
	}
	_, coef, queryX := ll.fit(data, weights, &query)
	return llEstimate{data: data, vars: ll.CorrectionVars, coef: coef, queryX: queryX}
}

// PredictMulti is Predict's multi-lambda counterpart: one point estimate per
// entry of lambdas, reusing one unpenalized system across the whole batch
// (spec.md §4.7.2 point 4, §6's "local_linear_predict returns a matrix").
func (ll LocalLinear) PredictMulti(data grfdata.Data, weights map[int]float64, lambdas []float64) []float64 {
	out := make([]float64, len(lambdas))
	if len(ll.CorrectionVars) == 0 {
		reg := Regression{}.Predict(data, weights)
		for i := range out {
			out[i] = reg
		}
		return out
	}
	intercepts, _, _ := ll.fitMulti(data, weights, nil, lambdas)
	copy(out, intercepts)
	return out
}

// EstimateMulti is PredictMulti's variance-replay counterpart: one Estimate
// per lambda, each centered on the same query and sharing the same
// unpenalized system.
func (ll LocalLinear) EstimateMulti(data grfdata.Data, weights map[int]float64, query grfdata.Row, lambdas []float64) []Estimate {
	out := make([]Estimate, len(lambdas))
	if len(ll.CorrectionVars) == 0 {
		reg := RegressionEstimate{Data: data}
		for i := range out {
			out[i] = reg
		}
		return out
	}
	_, coefs, queryX := ll.fitMulti(data, weights, &query, lambdas)
	for i, coef := range coefs {
		out[i] = llEstimate{data: data, vars: ll.CorrectionVars, coef: coef, queryX: queryX}
	}
	return out
}

// TreeValue implements Estimate: the leaf mean of the pseudo-residual
// rho_i = y_i - (x_i - x0)^T coef, the local-linear analogue of the plain-
// regression leaf mean (spec.md §4.7).
func (e llEstimate) TreeValue(leafSamples []int) float64 {
	if len(leafSamples) == 0 {
		return 0
	}
	var sum float64
	for _, id := range leafSamples {
		row := e.data.Row(id)
		correction := 0.0
		for j, v := range e.vars {
			correction += (row.Get(v) - e.queryX[j]) * e.coef[j]
		}
		sum += e.data.Outcome(id) - correction
	}
	return sum / float64(len(leafSamples))
}

// fit solves the weighted ridge regression implied by weights, centered on
// query (or the weighted mean of the training rows, if query is the zero
// value, for the plain Predict path that only needs the intercept).
// Returns the fitted intercept (the prediction), the non-intercept
// coefficients, and the covariate vector the coefficients were centered
// against.
func (ll LocalLinear) fit(data grfdata.Data, weights map[int]float64, query *grfdata.Row) (intercept float64, coef []float64, queryX []float64) {
	sys, queryX := ll.buildSystem(data, weights, query)
	intercept, coef = ll.solve(sys, ll.Lambda, data, weights)
	return intercept, coef, queryX
}

// fitMulti builds the unpenalized system once and solves it once per
// lambda, per spec.md §4.7.2 point 4.
func (ll LocalLinear) fitMulti(data grfdata.Data, weights map[int]float64, query *grfdata.Row, lambdas []float64) (intercepts []float64, coefs [][]float64, queryX []float64) {
	sys, queryX := ll.buildSystem(data, weights, query)
	intercepts = make([]float64, len(lambdas))
	coefs = make([][]float64, len(lambdas))
	for i, lambda := range lambdas {
		intercepts[i], coefs[i] = ll.solve(sys, lambda, data, weights)
	}
	return intercepts, coefs, queryX
}

// buildSystem assembles M = X^T W X and b = X^T W y, centered on query (or
// the weighted mean of the training rows, if query is nil), before any
// ridge penalty is applied.
func (ll LocalLinear) buildSystem(data grfdata.Data, weights map[int]float64, query *grfdata.Row) (llSystem, []float64) {
	p := len(ll.CorrectionVars)
	ids := make([]int, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}

	queryX := make([]float64, p)
	if query != nil {
		for j, v := range ll.CorrectionVars {
			queryX[j] = query.Get(v)
		}
	} else {
		var wsum float64
		for _, id := range ids {
			w := weights[id]
			wsum += w
			row := data.Row(id)
			for j, v := range ll.CorrectionVars {
				queryX[j] += w * row.Get(v)
			}
		}
		if wsum > 0 {
			for j := range queryX {
				queryX[j] /= wsum
			}
		}
	}

	dim := p + 1
	gram := mat.NewSymDense(dim, nil)
	b := make([]float64, dim)

	for _, id := range ids {
		w := weights[id]
		if w <= 0 {
			continue
		}
		row := data.Row(id)
		y := data.Outcome(id)

		x := make([]float64, dim)
		x[0] = 1
		for j, v := range ll.CorrectionVars {
			x[j+1] = row.Get(v) - queryX[j]
		}

		for a := 0; a < dim; a++ {
			b[a] += w * x[a] * y
			for c := a; c < dim; c++ {
				gram.SetSym(a, c, gram.At(a, c)+w*x[a]*x[c])
			}
		}
	}

	var trace float64
	for i := 0; i < dim; i++ {
		trace += gram.At(i, i)
	}

	return llSystem{gram: gram, b: b, dim: dim, p: p, trace: trace}, queryX
}

// solve applies lambda's ridge penalty to a fresh copy of sys.gram — never
// mutating the shared unpenalized system — and solves for the intercept and
// correction coefficients, per spec.md §4.7.2 step 2:
//
//   - RidgeUnweighted: every corrected coefficient gets the same penalty,
//     lambda * trace(M) / (p+1), scaled off the whole system's magnitude.
//   - RidgeCovariance: each coefficient's penalty is lambda times that
//     coefficient's own pre-penalty diagonal entry in M, so differently-
//     scaled covariates are regularized proportionally to their own spread.
func (ll LocalLinear) solve(sys llSystem, lambda float64, data grfdata.Data, weights map[int]float64) (float64, []float64) {
	penalized := mat.NewSymDense(sys.dim, nil)
	penalized.CopySym(sys.gram)

	unweightedPenalty := lambda * sys.trace / float64(sys.p+1)
	for j := 0; j < sys.p; j++ {
		idx := j + 1
		penalty := unweightedPenalty
		if ll.Ridge == RidgeCovariance {
			penalty = lambda * sys.gram.At(idx, idx)
		}
		penalized.SetSym(idx, idx, penalized.At(idx, idx)+penalty)
	}

	theta, err := linalg.SolveLDLT(penalized, sys.b)
	if err != nil {
		// spec.md §7's numerical-error fallback: an unpenalized weighted
		// mean in place of the failed ridge solve, no correction applied.
		return weightedMean(data, weights), make([]float64, sys.p)
	}
	return theta[0], theta[1:]
}

func weightedMean(data grfdata.Data, weights map[int]float64) float64 {
	var sum, wsum float64
	for id, w := range weights {
		sum += w * data.Outcome(id)
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

// ErrEmptyWeights names a weight map with no positive-weight entries, the
// local-linear ridge solve's most common degenerate input. No function in
// this module returns it.
var ErrEmptyWeights = errors.New("strategy: empty weight map")
