// Package rng provides the seeded random stream used to synthesize fixtures.
//
// Legacy reproduces the draw semantics of numpy's legacy RandomState
// (np.random.seed / randint / randn / shuffle) on top of a Mersenne Twister
// word stream, so a fixture generated here is bit-identical to one generated
// by the reference Python tooling under the same seed and draw order.
//
// The generator is an explicit handle. Nothing in this package keeps global
// state; callers pass the handle to every generation step.
package rng

import (
	"math"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source32 yields uniformly distributed 32-bit words
type Source32 interface {
	Uint32() uint32
}

// Legacy is a numpy-compatible random stream. It is not safe for concurrent use.
type Legacy struct {
	src Source32

	// second deviate of the last polar-method pair
	hasGauss bool
	gauss    float64

	words uint64
}

// New returns a stream backed by MT19937 seeded with init_genrand(seed),
// the same initialisation numpy applies for an integer seed.
func New(seed uint32) *Legacy {
	mt := prng.NewMT19937()
	mt.Seed(uint64(seed))
	return NewFromSource(mt)
}

// NewFromSource wraps an arbitrary word source
func NewFromSource(src Source32) *Legacy {
	return &Legacy{src: src}
}

// Words returns the number of 32-bit words consumed so far
func (l *Legacy) Words() uint64 {
	return l.words
}

// Uint32 returns the next raw word
func (l *Legacy) Uint32() uint32 {
	l.words++
	return l.src.Uint32()
}

func (l *Legacy) uint64() uint64 {
	hi := uint64(l.Uint32())
	return hi<<32 | uint64(l.Uint32())
}

// Float64 returns a uniform double in [0, 1) with 53 bits of precision
func (l *Legacy) Float64() float64 {
	a := l.Uint32() >> 5
	b := l.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}

// StandardNormal draws from N(0, 1) with the Marsaglia polar method.
// Each accepted pair yields two deviates; the second is cached and returned by
// the next call, across any interleaved draws of other kinds.
func (l *Legacy) StandardNormal() float64 {
	if l.hasGauss {
		g := l.gauss
		l.hasGauss = false
		l.gauss = 0
		return g
	}

	var x1, x2, r2 float64
	for {
		x1 = 2.0*l.Float64() - 1.0
		x2 = 2.0*l.Float64() - 1.0
		// explicit conversions keep the compiler from fusing into an FMA
		r2 = float64(x1*x1) + float64(x2*x2)
		if r2 < 1.0 && r2 != 0.0 {
			break
		}
	}

	f := math.Sqrt(-2.0 * math.Log(r2) / r2)
	l.gauss = f * x1
	l.hasGauss = true
	return f * x2
}

// Randint returns an integer in the half-open range [low, high).
// It panics if high <= low.
func (l *Legacy) Randint(low, high int64) int64 {
	if high <= low {
		panic("rng: Randint called with high <= low")
	}
	return low + int64(l.bounded(uint64(high-1-low)))
}

// Shuffle permutes n elements in place with Fisher-Yates run from the last
// index down, matching numpy's shuffle of a one-dimensional array.
func (l *Legacy) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(l.bounded(uint64(i)))
		swap(i, j)
	}
}

// bounded returns a value in [0, max] by masked rejection sampling
func (l *Legacy) bounded(max uint64) uint64 {
	if max == 0 {
		return 0
	}

	mask := max
	mask |= mask >> 1
	mask |= mask >> 2
	mask |= mask >> 4
	mask |= mask >> 8
	mask |= mask >> 16
	mask |= mask >> 32

	if max <= math.MaxUint32 {
		for {
			if v := uint64(l.Uint32()) & mask; v <= max {
				return v
			}
		}
	}
	for {
		if v := l.uint64() & mask; v <= max {
			return v
		}
	}
}
