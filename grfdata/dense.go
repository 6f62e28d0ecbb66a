// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grfdata

// DenseMatrix is a row-major in-memory backing for Matrix, the dense
// counterpart to SparseMatrix. Grounded in the flat row-oriented storage
// tabula.Dataset uses for its attribute columns, generalized from
// mixed-type attributes to a pure numeric grid.
type DenseMatrix struct {
	values   []float64
	numRows  int
	numCols  int
}

// NewDenseMatrix builds a DenseMatrix from row-major values. len(values)
// must equal numRows*numCols.
func NewDenseMatrix(values []float64, numRows, numCols int) *DenseMatrix {
	return &DenseMatrix{values: values, numRows: numRows, numCols: numCols}
}

// NewDenseMatrixFromRows builds a DenseMatrix from a slice of rows.
func NewDenseMatrixFromRows(rows [][]float64) *DenseMatrix {
	if len(rows) == 0 {
		return &DenseMatrix{}
	}
	numRows := len(rows)
	numCols := len(rows[0])
	values := make([]float64, 0, numRows*numCols)
	for _, row := range rows {
		values = append(values, row...)
	}
	return &DenseMatrix{values: values, numRows: numRows, numCols: numCols}
}

// Get implements Matrix.
func (m *DenseMatrix) Get(row, col int) float64 {
	return m.values[row*m.numCols+col]
}

// NumRows implements Matrix.
func (m *DenseMatrix) NumRows() int { return m.numRows }

// NumCols implements Matrix.
func (m *DenseMatrix) NumCols() int { return m.numCols }
