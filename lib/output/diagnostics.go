package output

/* This file contains the bulk diagnostics written with each snapshot. */

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
	"github.com/lethe-cfd/lethe-dem/lib/search"
)

// Diagnostics summarizes the state of the whole simulation.
type Diagnostics struct {
	Particles int
	// TranslationalEnergy and RotationalEnergy are the total kinetic
	// energies of all particles.
	TranslationalEnergy, RotationalEnergy float64
	// Contacts is the number of particle pairs which overlap.
	Contacts int
	// Coordination is the mean number of overlapping partners per particle.
	Coordination float64
	// Fabric holds the eigenvalues of the contact fabric tensor, the mean of
	// n n^T over contact normals n, in increasing order.
	Fabric [3]float64
}

// KineticEnergy returns the translational and rotational kinetic energy of
// ps.
func KineticEnergy(ps []*particles.Particle) (trans, rot float64) {
	m, v2 := make([]float64, len(ps)), make([]float64, len(ps))
	inertia, w2 := make([]float64, len(ps)), make([]float64, len(ps))
	for i, p := range ps {
		m[i], v2[i] = p.Mass, p.V.Dot(p.V)
		inertia[i], w2[i] = p.Inertia, p.Omega.Dot(p.Omega)
	}
	return floats.Dot(m, v2) / 2, floats.Dot(inertia, w2) / 2
}

// Compute calculates the Diagnostics of the whole simulation. It is
// collective, and every rank gets the same result.
func Compute(
	h *particles.Handler, contacts *search.PPContacts,
) (*Diagnostics, error) {
	c := h.Tria.Comm
	d := &Diagnostics{Particles: h.NGlobalParticles()}

	trans, rot := KineticEnergy(h.Particles())
	d.TranslationalEnergy = comm.AllreduceSumFloat64(c, trans)
	d.RotationalEnergy = comm.AllreduceSumFloat64(c, rot)

	// A contact between ranks is stored on both, so it counts half on each.
	fabric := make([]float64, 9)
	ends, n := 0.0, 0.0
	var err error
	add := func(pc *search.PPContact, weight float64, partner *particles.Particle) {
		p1, ok := h.Particle(pc.ID1)
		if !ok || partner == nil {
			err = l_error.Invariant("Contact %d-%d refers to a missing particle.",
				pc.ID1, pc.ID2)
			return
		}
		dx := partner.X.Sub(p1.X)
		dist := math.Sqrt(dx.Dot(dx))
		if dist == 0 || dist >= p1.Radius()+partner.Radius() {
			return
		}
		addOuter(fabric, dx.Scale(1/dist), weight)
		ends += 2 * weight
		n += weight
	}
	for _, pc := range contacts.LocalList() {
		p2, _ := h.Particle(pc.ID2)
		add(pc, 1, p2)
	}
	for _, pc := range contacts.GhostList() {
		p2, _ := h.Ghost(pc.ID2)
		add(pc, 0.5, p2)
	}
	if err = comm.Agree(c, err); err != nil {
		return nil, err
	}

	n = comm.AllreduceSumFloat64(c, n)
	ends = comm.AllreduceSumFloat64(c, ends)
	for i := range fabric {
		fabric[i] = comm.AllreduceSumFloat64(c, fabric[i])
	}

	d.Contacts = int(math.Round(n))
	if d.Particles > 0 {
		d.Coordination = ends / float64(d.Particles)
	}
	if n > 0 {
		floats.Scale(1/n, fabric)
		d.Fabric, err = eigenvalues(fabric)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func addOuter(s []float64, n r3.Vec, weight float64) {
	v := [3]float64{n.X, n.Y, n.Z}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s[3*i+j] += weight * v[i] * v[j]
		}
	}
}

// eigenvalues returns the eigenvalues of a symmetric 3x3 matrix in
// increasing order.
func eigenvalues(s []float64) ([3]float64, error) {
	eig := &mat.EigenSym{}
	if ok := eig.Factorize(mat.NewSymDense(3, s), false); !ok {
		return [3]float64{}, l_error.Invariant(
			"Eigendecomposition of the fabric tensor %v failed.", s,
		)
	}
	val := eig.Values(make([]float64, 3))
	return [3]float64{val[0], val[1], val[2]}, nil
}
