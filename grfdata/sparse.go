// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grfdata

import "sort"

// SparseMatrix is a compressed-sparse-column (CSC) backing for Matrix.
// Unset entries read as zero, never as the missing-value sentinel; callers
// that need explicit missingness on a sparse column must still store NaN
// as an explicit value.
type SparseMatrix struct {
	colPtr  []int
	rowIdx  []int
	values  []float64
	numRows int
	numCols int
}

// NewSparseMatrix builds a CSC matrix. colPtr has length numCols+1;
// rowIdx/values (parallel, length colPtr[numCols]) list the non-zero rows
// of each column in ascending row order.
func NewSparseMatrix(colPtr, rowIdx []int, values []float64, numRows, numCols int) *SparseMatrix {
	return &SparseMatrix{
		colPtr:  colPtr,
		rowIdx:  rowIdx,
		values:  values,
		numRows: numRows,
		numCols: numCols,
	}
}

// Get implements Matrix with a binary search within the column's row
// range, since rows within a column are stored in ascending order.
func (m *SparseMatrix) Get(row, col int) float64 {
	start, end := m.colPtr[col], m.colPtr[col+1]
	rows := m.rowIdx[start:end]
	i := sort.SearchInts(rows, row)
	if i < len(rows) && rows[i] == row {
		return m.values[start+i]
	}
	return 0
}

// NumRows implements Matrix.
func (m *SparseMatrix) NumRows() int { return m.numRows }

// NumCols implements Matrix.
func (m *SparseMatrix) NumCols() int { return m.numCols }

// SparseMatrixBuilder accumulates (row, col, value) triplets column by
// column and assembles a SparseMatrix. Triplets must be appended in
// non-decreasing column order; within a column, rows must be appended in
// ascending order.
type SparseMatrixBuilder struct {
	colPtr  []int
	rowIdx  []int
	values  []float64
	numRows int
	numCols int
	curCol  int
}

// NewSparseMatrixBuilder creates a builder for a matrix of the given shape.
func NewSparseMatrixBuilder(numRows, numCols int) *SparseMatrixBuilder {
	return &SparseMatrixBuilder{
		colPtr:  make([]int, 1, numCols+1),
		numRows: numRows,
		numCols: numCols,
	}
}

// Add appends a non-zero entry. col must be >= the column of the previous
// Add call.
func (b *SparseMatrixBuilder) Add(row, col int, value float64) {
	for b.curCol < col {
		b.colPtr = append(b.colPtr, len(b.rowIdx))
		b.curCol++
	}
	b.rowIdx = append(b.rowIdx, row)
	b.values = append(b.values, value)
}

// Build finalizes the matrix.
func (b *SparseMatrixBuilder) Build() *SparseMatrix {
	for b.curCol < b.numCols {
		b.colPtr = append(b.colPtr, len(b.rowIdx))
		b.curCol++
	}
	return NewSparseMatrix(b.colPtr, b.rowIdx, b.values, b.numRows, b.numCols)
}
