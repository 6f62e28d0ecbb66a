// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grfdata provides the read-only numeric matrix abstraction that
// backs forest training and prediction. Dense and sparse backings are
// interchangeable behind the Matrix interface; no permutation of the
// underlying storage ever occurs, only row-index bookkeeping.
package grfdata

import "math"

// Matrix is a read-only (n_rows x n_cols) accessor over doubles. A value of
// math.NaN() denotes a missing observation.
type Matrix interface {
	Get(row, col int) float64
	NumRows() int
	NumCols() int
}

// Data wraps a Matrix with the column indices a GRF trainer needs: the
// outcome column, and the optional treatment/instrument columns used by
// causal variants of the splitting rule (unused by the regression and
// local-linear strategies this module implements, but carried so the
// splitting/relabeling seam can support them without a Data change).
type Data struct {
	Matrix

	OutcomeIndex    int
	TreatmentIndex  int
	InstrumentIndex int
}

// NoColumn marks an optional column (treatment, instrument) as absent.
const NoColumn = -1

// New wraps m with the given 0-indexed outcome column and no treatment or
// instrument columns.
func New(m Matrix, outcomeIndex int) Data {
	return Data{
		Matrix:          m,
		OutcomeIndex:    outcomeIndex,
		TreatmentIndex:  NoColumn,
		InstrumentIndex: NoColumn,
	}
}

// Row is a view of a single data row, satisfying the narrow accessor the
// tree traverser and splitting rule need without exposing the rest of the
// matrix.
type Row struct {
	m   Matrix
	idx int
}

// Get returns the value of the row at the given column.
func (r Row) Get(col int) float64 {
	return r.m.Get(r.idx, col)
}

// Index returns the row's index within the backing Matrix.
func (r Row) Index() int {
	return r.idx
}

// Row returns a view over row i of the data.
func (d Data) Row(i int) Row {
	return Row{m: d.Matrix, idx: i}
}

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Outcome returns the outcome value of row i.
func (d Data) Outcome(i int) float64 {
	return d.Matrix.Get(i, d.OutcomeIndex)
}
