// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package options holds the immutable configuration bundles that govern a
// forest build: ForestOptions for the trainer as a whole, TreeOptions for
// the subset of it a single tree needs. Struct shape and the "fill in
// defaults, then validate" idiom are grounded in classifier/randomforest.
// Runtime / classifier/rf.Runtime.
package options

import (
	"math"

	"github.com/pkg/errors"
)

// Defaults, grounded in randomforest.DefNumTree / DefPercentBoot.
const (
	DefaultNumTrees       = 2000
	DefaultSampleFraction = 0.5
	DefaultMinNodeSize    = 5
	DefaultAlpha          = 0.05
	DefaultCIGroupSize    = 1
	DefaultNumThreads     = 4
)

// Sentinel configuration errors. Reported before any tree is grown; no
// partial forest is ever returned (spec.md §7).
var (
	ErrEmptyData       = errors.New("options: training data has no rows")
	ErrOutcomeIndex    = errors.New("options: outcome index out of range")
	ErrAlphaRange      = errors.New("options: alpha must be in (0, 0.25]")
	ErrCIGroupDivisor  = errors.New("options: ci_group_size must divide num_trees")
	ErrMtryTooLarge    = errors.New("options: mtry exceeds number of columns")
	ErrImbalancePenalty = errors.New("options: imbalance_penalty must be >= 0")
	ErrSampleFraction  = errors.New("options: sample_fraction must be in (0, 1]")
	ErrNumTrees        = errors.New("options: num_trees must be > 0")
	ErrNumThreads      = errors.New("options: num_threads must be > 0")
)

// ForestOptions is the immutable configuration for one forest build.
type ForestOptions struct {
	NumTrees          int     `json:"NumTrees"`
	CIGroupSize       int     `json:"CIGroupSize"`
	SampleFraction    float64 `json:"SampleFraction"`
	Mtry              int     `json:"Mtry"`
	MinNodeSize       int     `json:"MinNodeSize"`
	Honesty           bool    `json:"Honesty"`
	Alpha             float64 `json:"Alpha"`
	ImbalancePenalty  float64 `json:"ImbalancePenalty"`
	NumThreads        int     `json:"NumThreads"`
	Seed              uint64  `json:"Seed"`
	SamplesPerCluster int     `json:"SamplesPerCluster"`

	// SampleWeights, Clusters are not JSON-roundtripped by default (they
	// are typically as large as the training data itself); callers set
	// them directly on the struct.
	SampleWeights []float64     `json:"-"`
	Clusters      map[int][]int `json:"-"`
}

// TreeOptions is the subset of ForestOptions a single tree grow needs.
type TreeOptions struct {
	Mtry             int
	MinNodeSize      int
	Honesty          bool
	Alpha            float64
	ImbalancePenalty float64
}

// TreeOptions projects the per-tree fields out of a ForestOptions.
func (fo ForestOptions) TreeOptions() TreeOptions {
	return TreeOptions{
		Mtry:             fo.Mtry,
		MinNodeSize:      fo.MinNodeSize,
		Honesty:          fo.Honesty,
		Alpha:            fo.Alpha,
		ImbalancePenalty: fo.ImbalancePenalty,
	}
}

// WithDefaults fills in zero-valued fields with their defaults, mirroring
// Runtime.Initialize's "recheck input value" step. numCols is used to
// derive the default mtry (sqrt of feature count plus one, capped at the
// feature count), matching randomforest.Initialize's NRandomFeature default.
func (fo ForestOptions) WithDefaults(numCols int) ForestOptions {
	if fo.NumTrees <= 0 {
		fo.NumTrees = DefaultNumTrees
	}
	if fo.SampleFraction <= 0 {
		fo.SampleFraction = DefaultSampleFraction
	}
	if fo.MinNodeSize <= 0 {
		fo.MinNodeSize = DefaultMinNodeSize
	}
	if fo.Alpha <= 0 {
		fo.Alpha = DefaultAlpha
	}
	if fo.CIGroupSize <= 0 {
		fo.CIGroupSize = DefaultCIGroupSize
	}
	if fo.NumThreads <= 0 {
		fo.NumThreads = DefaultNumThreads
	}
	if fo.Mtry <= 0 {
		fo.Mtry = int(math.Sqrt(float64(numCols-1))) + 1
		if fo.Mtry > numCols-1 {
			fo.Mtry = numCols - 1
		}
	}
	return fo
}

// Validate checks the options against the shape of the training data and
// the outcome column index, reporting every configuration error spec.md §7
// enumerates. It must be called (directly or via forest.Trainer.Train)
// before any tree is grown.
func (fo ForestOptions) Validate(numRows, numCols, outcomeIndex int) error {
	if numRows <= 0 {
		return ErrEmptyData
	}
	if outcomeIndex < 0 || outcomeIndex >= numCols {
		return ErrOutcomeIndex
	}
	if fo.NumTrees <= 0 {
		return ErrNumTrees
	}
	if fo.NumThreads <= 0 {
		return ErrNumThreads
	}
	if fo.Alpha <= 0 || fo.Alpha > 0.25 {
		return ErrAlphaRange
	}
	if fo.CIGroupSize <= 0 || fo.NumTrees%fo.CIGroupSize != 0 {
		return ErrCIGroupDivisor
	}
	if fo.Mtry > numCols-1 {
		return ErrMtryTooLarge
	}
	if fo.ImbalancePenalty < 0 {
		return ErrImbalancePenalty
	}
	if fo.SampleFraction <= 0 || fo.SampleFraction > 1 {
		return ErrSampleFraction
	}
	return nil
}
