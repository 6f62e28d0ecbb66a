// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampling

// Options are the immutable knobs a Sampler draws under: optional per-row
// weights (empty means uniform), an optional cluster map (empty means no
// clustering), and the number of rows drawn per selected cluster.
type Options struct {
	// Weights holds a draw weight per row. Empty means uniform weights.
	Weights []float64

	// Clusters maps a cluster id to its member row indices. Empty means
	// clustering is disabled and sampling operates directly on rows.
	Clusters map[int][]int

	// SamplesPerCluster is how many rows are subsampled, uniformly,
	// from each selected cluster.
	SamplesPerCluster int
}

// Clustered reports whether cluster sampling is enabled.
func (o Options) Clustered() bool {
	return len(o.Clusters) > 0
}
