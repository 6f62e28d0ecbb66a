// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg provides the ridge-regression solve the local-linear
// prediction strategy needs: a symmetric system M*theta = b, where M is a
// design-matrix Gram product plus a ridge penalty (spec.md §4.7). Solved by
// a hand-rolled LDL^T decomposition over gonum.org/v1/gonum/mat.SymDense
// storage rather than gonum's mat.Cholesky, which requires strict positive
// definiteness and cannot itself distinguish "singular" from "indefinite" —
// spec.md §7 requires the caller be able to tell numerical failure apart
// from a legitimate, well-conditioned solve.
package linalg

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by SolveLDLT when M is numerically singular or
// indefinite (a pivot falls below tol, scaled, including any negative
// pivot): spec.md §7's required fallback path for an ill-conditioned ridge
// system.
var ErrSingular = errors.New("linalg: singular or near-singular matrix")

// tol is the relative pivot-smallness threshold below which M is treated as
// singular, scaled by the matrix's largest diagonal entry so it behaves
// sensibly regardless of M's absolute magnitude.
const tol = 1e-10

// SolveLDLT solves M*x = b for symmetric M via an LDL^T decomposition
// (M = L*D*L^T, L unit lower-triangular, D diagonal), computed in place over
// a copy of M's entries (M itself is left unchanged), with L stored below
// that copy's diagonal and D kept as a vector. Returns ErrSingular rather
// than a NaN-laden solution when a pivot is negative or too small to trust.
func SolveLDLT(m *mat.SymDense, b []float64) ([]float64, error) {
	n := m.SymmetricDim()
	if n != len(b) {
		return nil, errors.Errorf("linalg: dimension mismatch, M is %dx%d, b has %d entries", n, n, len(b))
	}

	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			a[i][j] = m.At(i, j)
		}
	}

	maxDiag := 0.0
	for i := 0; i < n; i++ {
		if d := math.Abs(a[i][i]); d > maxDiag {
			maxDiag = d
		}
	}
	if maxDiag == 0 {
		maxDiag = 1
	}
	threshold := tol * maxDiag

	d := make([]float64, n)
	// In-place LDL^T: column j of L is stored below the diagonal of a.
	for j := 0; j < n; j++ {
		sum := a[j][j]
		for k := 0; k < j; k++ {
			sum -= a[j][k] * a[j][k] * d[k]
		}
		if sum < threshold {
			return nil, ErrSingular
		}
		d[j] = sum

		for i := j + 1; i < n; i++ {
			s := a[i][j]
			for k := 0; k < j; k++ {
				s -= a[i][k] * a[j][k] * d[k]
			}
			a[i][j] = s / d[j]
		}
	}

	// Forward solve L*y = b.
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		s := b[i]
		for k := 0; k < i; k++ {
			s -= a[i][k] * y[k]
		}
		y[i] = s
	}

	// Diagonal solve D*z = y.
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = y[i] / d[i]
	}

	// Back solve L^T*x = z.
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := z[i]
		for k := i + 1; k < n; k++ {
			s -= a[k][i] * x[k]
		}
		x[i] = s
	}

	return x, nil
}
