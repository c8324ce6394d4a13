/*package particles contains the particle container owned by each rank: the
particles in the rank's cells, the read-only ghost copies of particles owned by
neighboring ranks, and the collective operations which move particles between
ranks.*/
package particles

/* This file contains the Particle type and its wire encoding. */

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/compress"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// Particle is a rigid sphere. In 2D simulations, the Z components of X, V and
// Force stay zero and Omega and Torque only have Z components.
type Particle struct {
	ID       uint64
	Type     int
	Diameter float64
	Mass     float64
	Inertia  float64

	X, V, Omega   r3.Vec
	Force, Torque r3.Vec

	// Cell is the mesh cell the particle was last sorted into.
	Cell int
}

// Radius returns half the particle's diameter.
func (p *Particle) Radius() float64 { return p.Diameter / 2 }

// ZeroForces clears the force and torque accumulators.
func (p *Particle) ZeroForces() {
	p.Force, p.Torque = r3.Vec{}, r3.Vec{}
}

// recordWords is the number of 64-bit words in an encoded Particle. Force and
// Torque are not sent: they are rebuilt from scratch every step.
const recordWords = 15

func appendWords(w []uint64, p *Particle) []uint64 {
	return append(w,
		p.ID, uint64(int64(p.Type)), uint64(int64(p.Cell)),
		math.Float64bits(p.Diameter),
		math.Float64bits(p.Mass),
		math.Float64bits(p.Inertia),
		math.Float64bits(p.X.X), math.Float64bits(p.X.Y), math.Float64bits(p.X.Z),
		math.Float64bits(p.V.X), math.Float64bits(p.V.Y), math.Float64bits(p.V.Z),
		math.Float64bits(p.Omega.X), math.Float64bits(p.Omega.Y),
		math.Float64bits(p.Omega.Z),
	)
}

func vec(w []uint64) r3.Vec {
	return r3.Vec{
		X: math.Float64frombits(w[0]),
		Y: math.Float64frombits(w[1]),
		Z: math.Float64frombits(w[2]),
	}
}

func fromWords(w []uint64) *Particle {
	return &Particle{
		ID:       w[0],
		Type:     int(int64(w[1])),
		Cell:     int(int64(w[2])),
		Diameter: math.Float64frombits(w[3]),
		Mass:     math.Float64frombits(w[4]),
		Inertia:  math.Float64frombits(w[5]),
		X:        vec(w[6:9]),
		V:        vec(w[9:12]),
		Omega:    vec(w[12:15]),
	}
}

// Encode packs particles into a compressed blob. A nil slice encodes to a nil
// blob.
func Encode(buf *compress.Buffer, ps []*Particle) ([]byte, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	w := make([]uint64, 0, recordWords*len(ps))
	for _, p := range ps {
		w = appendWords(w, p)
	}
	return buf.Words(w)
}

// Decode unpacks a blob created by Encode.
func Decode(buf *compress.Buffer, b []byte) ([]*Particle, error) {
	if len(b) == 0 {
		return nil, nil
	}
	w, err := buf.Unwords(b)
	if err != nil {
		return nil, err
	} else if len(w)%recordWords != 0 {
		return nil, l_error.Invariant(
			"Particle blob holds %d words, which is not a multiple of %d.",
			len(w), recordWords,
		)
	}

	ps := make([]*Particle, len(w)/recordWords)
	for i := range ps {
		ps[i] = fromWords(w[i*recordWords : (i+1)*recordWords])
	}
	return ps, nil
}
