// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sampling implements the deterministic pseudo-random sample
// selection described in spec.md §4.1: bootstrap and cluster sampling,
// honest subsample/eval splitting, and weighted draws without replacement.
//
// Every Sampler is seeded explicitly; none share PRNG state, matching the
// "no PRNG is shared" requirement of the concurrency model so that forest
// training is reproducible regardless of worker-pool scheduling.
package sampling

// domain tags keep the pool-level draw (shared by a CI group) and the
// per-tree draw from colliding even when fed the same tree/group index.
const (
	domainPool byte = 1
	domainTree byte = 2
)

// DeriveSeed mixes a forest-level seed with a domain tag and an integer
// index into a new 64-bit seed, deterministically and without any shared
// state between callers. The mixing step is a splitmix64 finalizer.
func DeriveSeed(forestSeed uint64, domain byte, idx int) uint64 {
	x := forestSeed ^ (uint64(domain) << 56) ^ (uint64(uint32(idx)) * 0x9E3779B97F4A7C15)
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x ^= x >> 31
	return x
}

// DerivePoolSeed returns the seed for the pool/group-level sampler that
// draws the shared first-stage subsample for CI group groupIndex.
func DerivePoolSeed(forestSeed uint64, groupIndex int) uint64 {
	return DeriveSeed(forestSeed, domainPool, groupIndex)
}

// DeriveTreeSeed returns the seed for the tree-level sampler of tree
// treeIndex (0-based, across the whole forest).
func DeriveTreeSeed(forestSeed uint64, treeIndex int) uint64 {
	return DeriveSeed(forestSeed, domainTree, treeIndex)
}
