// Package randsrc provides the seeded random sources that drive score
// synthesis. Draw order is part of the contract: the same seed and the same
// sequence of calls always yield the same values.
package randsrc

import (
	"math"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source is the random stream consumed by the sampler.
type Source interface {
	// NormFloat64 returns a standard normal draw.
	NormFloat64() float64
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
}

// Legacy is an MT19937 stream using the legacy NumPy RandomState draw
// procedures, so a seed reproduces the values numpy.random.seed(seed) gives.
// It is not safe for concurrent use.
type Legacy struct {
	mt       *prng.MT19937
	hasSpare bool
	spare    float64
}

// NewLegacy returns a Legacy source seeded like RandomState(seed).
func NewLegacy(seed uint64) *Legacy {
	mt := prng.NewMT19937()
	mt.Seed(uint64(uint32(seed)))
	return &Legacy{mt: mt}
}

// NewLegacyStream returns an independent sub-stream for record index i,
// seeded from the key [seed, i]. Streams for different indexes do not
// depend on each other, so they may be drawn from in any order.
func NewLegacyStream(seed uint64, index int) *Legacy {
	mt := prng.NewMT19937()
	mt.SeedFromKeys([]uint32{uint32(seed), uint32(seed >> 32), uint32(index)})
	return &Legacy{mt: mt}
}

// Float64 builds a 53-bit double from two 32-bit words.
func (l *Legacy) Float64() float64 {
	a := l.mt.Uint32() >> 5
	b := l.mt.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}

// NormFloat64 uses the polar Box-Muller method. Each accepted pair yields
// two draws; the second is kept for the next call.
func (l *Legacy) NormFloat64() float64 {
	if l.hasSpare {
		l.hasSpare = false
		v := l.spare
		l.spare = 0
		return v
	}
	var x1, x2, r2 float64
	for {
		x1 = 2.0*l.Float64() - 1.0
		x2 = 2.0*l.Float64() - 1.0
		r2 = x1*x1 + x2*x2
		if r2 < 1.0 && r2 != 0.0 {
			break
		}
	}
	f := math.Sqrt(-2.0 * math.Log(r2) / r2)
	l.spare = f * x1
	l.hasSpare = true
	return f * x2
}
