// Package randsrc supplies the random primitives the transport workers
// draw from. Each worker owns one RNG seeded from a run-wide seed mixed
// with the worker index, so there is no cross-worker contention and a
// single-threaded run is repeatable.
package randsrc

import (
	"fmt"
	"math"
	"math/rand"
)

// seedMix is the multiplier used to derive per-worker seeds from the run
// seed. Same constant the particle worker pool uses.
const seedMix = 0x9e3779b1

// RNG is a per-worker random stream with the derived samplers the
// transport loop needs.
type RNG struct {
	src *rand.Rand

	// Box-Muller spare value.
	haveSpare bool
	spare     float64
}

// New builds an RNG for the given worker from the run-wide seed.
func New(runSeed int64, workerIndex int) *RNG {
	return &RNG{src: rand.New(rand.NewSource(runSeed + int64(workerIndex+1)*seedMix))}
}

// Uniform returns a uniform real in [0,1).
func (r *RNG) Uniform() float64 { return r.src.Float64() }

// Range returns a uniform real in [lo,hi).
func (r *RNG) Range(lo, hi float64) float64 { return lo + (hi-lo)*r.src.Float64() }

// HenyeyGreenstein draws a deflection angle from the Henyey-Greenstein
// phase function with anisotropy g. Near-zero g falls back to isotropic
// sampling, where the inversion formula degenerates.
func (r *RNG) HenyeyGreenstein(g float64) float64 {
	if math.Abs(g) < 1e-6 {
		return math.Acos(1.0 - 2.0*r.Uniform())
	}

	frac := (1.0 - g*g) / (1.0 - g + 2.0*g*r.Uniform())
	cos := (1.0 + g*g - frac*frac) / (2.0 * g)
	if cos > 1.0 {
		cos = 1.0
	}
	if cos < -1.0 {
		cos = -1.0
	}
	return math.Acos(cos)
}

// Gaussian draws from a normal distribution with the given mean and
// standard deviation using the Box-Muller transform. The spare value is
// kept per-RNG, not process-wide.
func (r *RNG) Gaussian(mu, sigma float64) float64 {
	if r.haveSpare {
		r.haveSpare = false
		return r.spare*sigma + mu
	}

	var u0, u1 float64
	for {
		u0 = r.Uniform()
		u1 = r.Uniform()
		if u0 > math.SmallestNonzeroFloat64 {
			break
		}
	}

	mag := math.Sqrt(-2.0 * math.Log(u0))
	r.spare = mag * math.Sin(2.0*math.Pi*u1)
	r.haveSpare = true

	return mag*math.Cos(2.0*math.Pi*u1)*sigma + mu
}

// Index selects discrete indices weighted by a non-negative vector. The
// normalized CDF is built once at construction.
type Index struct {
	cdf []float64
}

// NewIndex builds a weighted index selector. At least one weight must be
// positive.
func NewIndex(weights []float64) (*Index, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("randsrc: index selector needs at least one weight")
	}

	cdf := make([]float64, len(weights)+1)
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("randsrc: weight %g at index %d is negative", w, i)
		}
		cdf[i+1] = cdf[i] + w
	}
	total := cdf[len(cdf)-1]
	if total <= 0 {
		return nil, fmt.Errorf("randsrc: all index weights are zero")
	}
	for i := range cdf {
		cdf[i] /= total
	}

	return &Index{cdf: cdf}, nil
}

// Sample returns the lowest index whose CDF entry is >= a fresh uniform
// draw from rng.
func (x *Index) Sample(rng *RNG) int {
	xi := rng.Uniform()
	for i := 1; i < len(x.cdf); i++ {
		if x.cdf[i] >= xi {
			return i - 1
		}
	}
	return len(x.cdf) - 2
}
