// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sampling

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Sampler draws deterministic pseudo-random samples from a fixed seed.
// Every Sampler owns its generator exclusively; two Samplers built from the
// same seed and Options produce bit-identical output, regardless of which
// goroutine drives them, matching spec.md §4.1's determinism requirement.
type Sampler struct {
	rng  *rand.Rand
	opts Options
}

// NewSampler builds a Sampler seeded deterministically from seed.
func NewSampler(seed uint64, opts Options) *Sampler {
	return &Sampler{rng: rand.New(rand.NewChaCha8(expandSeed(seed))), opts: opts}
}

// expandSeed turns a 64-bit seed into the 32-byte key ChaCha8 requires,
// deterministically (no entropy source, no shared state).
func expandSeed(seed uint64) [32]byte {
	var key [32]byte
	for word := 0; word < 4; word++ {
		x := DeriveSeed(seed, byte(0xA0+word), word)
		for b := 0; b < 8; b++ {
			key[word*8+b] = byte(x >> (8 * b))
		}
	}
	return key
}

// SampleClusters draws the in-bag pool: cluster ids if clustering is
// enabled, row ids otherwise. Weighted draws are used when Options.Weights
// is non-empty.
func (s *Sampler) SampleClusters(numRows int, sampleFraction float64) []int {
	if s.opts.Clustered() {
		ids := clusterIDs(s.opts.Clusters)
		k := int(float64(len(ids)) * sampleFraction)
		return s.drawWeightedWithoutReplacement(ids, s.clusterWeights(ids), k)
	}

	ids := make([]int, numRows)
	for i := range ids {
		ids[i] = i
	}
	k := int(float64(numRows) * sampleFraction)
	return s.drawWeightedWithoutReplacement(ids, s.opts.Weights, k)
}

// SampleFromClusters expands a set of selected cluster ids into rows,
// subsampling SamplesPerCluster rows uniformly from each cluster (or
// taking the whole cluster when it is smaller).
func (s *Sampler) SampleFromClusters(clusterIDs []int) []int {
	var out []int
	n := s.opts.SamplesPerCluster
	for _, cid := range clusterIDs {
		members := s.opts.Clusters[cid]
		if n <= 0 || n >= len(members) {
			out = append(out, members...)
			continue
		}
		out = append(out, s.drawWeightedWithoutReplacement(members, nil, n)...)
	}
	return out
}

// Subsample shuffles pool and splits it into a prefix of size
// ceil(len(pool)*fraction) and the remainder.
func (s *Sampler) Subsample(pool []int, fraction float64) (in, out []int) {
	shuffled := make([]int, len(pool))
	copy(shuffled, pool)
	s.shuffle(shuffled)

	n := int(math.Ceil(float64(len(shuffled)) * fraction))
	if n > len(shuffled) {
		n = len(shuffled)
	}
	in = append([]int(nil), shuffled[:n]...)
	out = append([]int(nil), shuffled[n:]...)
	return in, out
}

func (s *Sampler) shuffle(xs []int) {
	for i := len(xs) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Draw draws n distinct integers from [0, max) \ skip, using draw_simple
// (rejection) when n is small relative to max and draw_knuth (selection
// sampling) otherwise; both are uniform conditional on skip.
func (s *Sampler) Draw(max int, skip map[int]struct{}, n int) []int {
	available := max - len(skip)
	if n > available {
		n = available
	}
	if n <= 0 {
		return nil
	}
	if n < max/2 {
		return s.drawSimple(max, skip, n)
	}
	return s.drawKnuth(max, skip, n)
}

func (s *Sampler) drawSimple(max int, skip map[int]struct{}, n int) []int {
	chosen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for len(out) < n {
		v := s.rng.IntN(max)
		if _, bad := skip[v]; bad {
			continue
		}
		if _, dup := chosen[v]; dup {
			continue
		}
		chosen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *Sampler) drawKnuth(max int, skip map[int]struct{}, n int) []int {
	out := make([]int, 0, n)
	remaining := n
	total := max - len(skip)
	for v := 0; v < max && remaining > 0; v++ {
		if _, bad := skip[v]; bad {
			continue
		}
		if float64(total)*s.rng.Float64() < float64(remaining) {
			out = append(out, v)
			remaining--
		}
		total--
	}
	return out
}

// Poisson draws a Poisson(mean) variate: a direct Knuth-style product-of-
// uniforms transform for small means, and a normal-approximation rejection
// method for large means. The boundary (30) is implementation-defined, as
// allowed by spec.md §4.1.
func (s *Sampler) Poisson(mean float64) int {
	if mean < 30 {
		return s.poissonKnuth(mean)
	}
	return s.poissonNormalApprox(mean)
}

func (s *Sampler) poissonKnuth(mean float64) int {
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		k++
		p *= s.rng.Float64()
		if p <= l {
			break
		}
	}
	return k - 1
}

// poissonNormalApprox draws via the de Moivre-Laplace normal approximation
// to the Poisson distribution, continuity-corrected and resampled until a
// non-negative count is produced. Adequate for the large-mean regime where
// an exact table-based transform would be expensive; documented here per
// spec.md §4.1's allowance for an implementation-defined boundary.
func (s *Sampler) poissonNormalApprox(mean float64) int {
	for {
		z := s.standardNormal()
		x := mean + math.Sqrt(mean)*z
		if x < 0 {
			continue
		}
		return int(math.Floor(x + 0.5))
	}
}

func (s *Sampler) standardNormal() float64 {
	u1 := s.rng.Float64()
	u2 := s.rng.Float64()
	if u1 <= 0 {
		u1 = 1e-300
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// drawWeightedWithoutReplacement selects k of ids without replacement,
// weighted by weights (nil or empty means uniform), via the exponential-
// key method (Efraimidis-Spirakis): each candidate gets an Exponential(w_i)
// key and the k smallest keys are kept. This is a single O(n log n) pass
// rather than the spec's roulette-with-removal description, but it samples
// from the identical weighted-without-replacement distribution.
func (s *Sampler) drawWeightedWithoutReplacement(ids []int, weights []float64, k int) []int {
	if k <= 0 {
		return nil
	}
	if k >= len(ids) {
		out := make([]int, len(ids))
		copy(out, ids)
		return out
	}

	type keyed struct {
		id  int
		key float64
	}
	keys := make([]keyed, len(ids))
	for i, id := range ids {
		w := 1.0
		if len(weights) > 0 {
			w = weights[i]
			if w <= 0 {
				w = 1e-12
			}
		}
		u := s.rng.Float64()
		if u <= 0 {
			u = 1e-300
		}
		keys[i] = keyed{id: id, key: -math.Log(u) / w}
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a].key < keys[b].key })

	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = keys[i].id
	}
	return out
}

func clusterIDs(clusters map[int][]int) []int {
	ids := make([]int, 0, len(clusters))
	for id := range clusters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Sampler) clusterWeights(ids []int) []float64 {
	if len(s.opts.Weights) == 0 {
		return nil
	}
	weights := make([]float64, len(ids))
	for i, id := range ids {
		var sum float64
		for _, row := range s.opts.Clusters[id] {
			sum += s.opts.Weights[row]
		}
		weights[i] = sum
	}
	return weights
}
