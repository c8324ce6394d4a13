package insertion

/* This file contains the random number generator used by non-uniform
insertion. */

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/geom"
)

// RNG is a xorshift64* random number generator. Every rank seeds it the same
// way and draws the same sequence, so every rank agrees on the insertion
// candidates without communicating. It is not thread safe.
type RNG struct {
	state uint64
}

// NewRNG creates an RNG with a given seed. Seeds are mixed first, so that
// nearby seeds give unrelated sequences.
func NewRNG(seed uint64) *RNG {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	if z == 0 {
		z = 1
	}
	return &RNG{z}
}

func (gen *RNG) next() uint64 {
	gen.state ^= gen.state >> 12
	gen.state ^= gen.state << 25
	gen.state ^= gen.state >> 27
	return gen.state * 0x2545f4914f6cdd1d
}

// Uniform returns a random number in the range [0, 1).
func (gen *RNG) Uniform() float64 {
	return float64(gen.next()>>11) / (1 << 53)
}

// Point returns a uniformly distributed point inside the box b. dim must be
// 2 or 3. In 2D the z component is zero.
func (gen *RNG) Point(b r3.Box, dim int) r3.Vec {
	p := r3.Vec{
		X: b.Min.X + gen.Uniform()*(b.Max.X-b.Min.X),
		Y: b.Min.Y + gen.Uniform()*(b.Max.Y-b.Min.Y),
	}
	if dim == 3 {
		p.Z = b.Min.Z + gen.Uniform()*(b.Max.Z-b.Min.Z)
	}
	return p
}

// Scatter draws up to n points in b which are at least s apart and for
// which ok returns true. Each point gets at most attempts tries, so fewer
// than n points are returned when the box is crowded.
func (gen *RNG) Scatter(
	b r3.Box, dim, n int, s float64, attempts int, ok func(r3.Vec) bool,
) []r3.Vec {
	if attempts < 1 {
		attempts = 1
	}
	s2 := s * s

	xs := []r3.Vec{}
	for i := 0; i < n; i++ {
	Attempts:
		for a := 0; a < attempts; a++ {
			x := gen.Point(b, dim)
			if !ok(x) {
				continue
			}
			for _, y := range xs {
				if geom.Dist2(x, y) < s2 {
					continue Attempts
				}
			}
			xs = append(xs, x)
			break
		}
	}
	return xs
}
