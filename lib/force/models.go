package force

/* This file contains the force laws and the code which applies them to
contacts. */

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/geom"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
	"github.com/lethe-cfd/lethe-dem/lib/search"
)

// Law selects the normal spring-dashpot.
type Law int

const (
	Linear Law = iota
	NonLinear
)

func (l Law) String() string {
	switch l {
	case Linear:
		return "linear"
	case NonLinear:
		return "nonlinear"
	}
	return "unknown"
}

// ParticleParticleModel is a particle-particle force law. The set of
// implementations is closed: ParticleParticleLinear and
// ParticleParticleNonLinear.
type ParticleParticleModel interface {
	// Pair adds the contact force between pi and pj to both particles,
	// updating the contact's history.
	Pair(pi, pj *particles.Particle, h *search.History, dt float64)
	particleParticle()
}

// ParticleWallModel is a particle-wall force law. The set of
// implementations is closed: ParticleWallLinear and ParticleWallNonLinear.
type ParticleWallModel interface {
	// Wall adds the force between p and a boundary primitive to p, updating
	// the contact's history.
	Wall(p *particles.Particle, c *search.PWContact, dt float64)
	particleWall()
}

type ParticleParticleLinear struct{ Props *Properties }
type ParticleParticleNonLinear struct{ Props *Properties }
type ParticleWallLinear struct{ Props *Properties }
type ParticleWallNonLinear struct{ Props *Properties }

// Type assertions
var (
	_ ParticleParticleModel = &ParticleParticleLinear{}
	_ ParticleParticleModel = &ParticleParticleNonLinear{}
	_ ParticleWallModel     = &ParticleWallLinear{}
	_ ParticleWallModel     = &ParticleWallNonLinear{}
)

// NewParticleParticleModel returns the particle-particle model for a law.
func NewParticleParticleModel(l Law, props *Properties) (ParticleParticleModel, error) {
	switch l {
	case Linear:
		return &ParticleParticleLinear{props}, nil
	case NonLinear:
		return &ParticleParticleNonLinear{props}, nil
	}
	return nil, l_error.Config("Unrecognized particle-particle force law %d.", l)
}

// NewParticleWallModel returns the particle-wall model for a law.
func NewParticleWallModel(l Law, props *Properties) (ParticleWallModel, error) {
	switch l {
	case Linear:
		return &ParticleWallLinear{props}, nil
	case NonLinear:
		return &ParticleWallNonLinear{props}, nil
	}
	return nil, l_error.Config("Unrecognized particle-wall force law %d.", l)
}

func (m *ParticleParticleLinear) particleParticle()    {}
func (m *ParticleParticleNonLinear) particleParticle() {}
func (m *ParticleWallLinear) particleWall()            {}
func (m *ParticleWallNonLinear) particleWall()         {}

func (m *ParticleParticleLinear) Pair(
	pi, pj *particles.Particle, h *search.History, dt float64,
) {
	v := m.Props.CharacteristicVelocity
	pair(m.Props, pi, pj, h, dt, func(e effective, delta float64) coefficients {
		return linear(e, v)
	})
}

func (m *ParticleParticleNonLinear) Pair(
	pi, pj *particles.Particle, h *search.History, dt float64,
) {
	exp := m.Props.Exponent
	pair(m.Props, pi, pj, h, dt, func(e effective, delta float64) coefficients {
		return nonLinear(e, exp, delta)
	})
}

func (m *ParticleWallLinear) Wall(
	p *particles.Particle, c *search.PWContact, dt float64,
) {
	v := m.Props.CharacteristicVelocity
	wall(m.Props, p, c, dt, func(e effective, delta float64) coefficients {
		return linear(e, v)
	})
}

func (m *ParticleWallNonLinear) Wall(
	p *particles.Particle, c *search.PWContact, dt float64,
) {
	exp := m.Props.Exponent
	wall(m.Props, p, c, dt, func(e effective, delta float64) coefficients {
		return nonLinear(e, exp, delta)
	})
}

type lawFunc func(e effective, delta float64) coefficients

// pair applies a force law to two particles. n points from pi to pj.
func pair(
	props *Properties, pi, pj *particles.Particle,
	h *search.History, dt float64, law lawFunc,
) {
	d := pj.X.Sub(pi.X)
	dist := geom.Norm(d)
	ri, rj := pi.Radius(), pj.Radius()
	delta := ri + rj - dist
	if delta <= 0 || dist == 0 {
		h.Reset()
		return
	}
	n := d.Scale(1 / dist)

	e := pairEffective(pi, pj, &props.Materials[pi.Type], &props.Materials[pj.Type])
	vij := pi.V.Sub(pj.V).Add(pi.Omega.Scale(ri).Add(pj.Omega.Scale(rj)).Cross(n))
	f, ft, m := resolve(e, law(e, delta), n, delta, vij, pi.Omega.Sub(pj.Omega), h, dt)

	pi.Force = pi.Force.Add(f)
	pj.Force = pj.Force.Sub(f)

	arm := n.Cross(ft)
	pi.Torque = pi.Torque.Add(arm.Scale(ri)).Add(m)
	pj.Torque = pj.Torque.Add(arm.Scale(rj)).Sub(m)
}

// wall applies a force law to a particle and a rigid primitive. Between
// detection steps the primitive is approximated by the plane through the
// contact point perpendicular to the contact normal.
func wall(
	props *Properties, p *particles.Particle,
	c *search.PWContact, dt float64, law lawFunc,
) {
	r := p.Radius()
	delta := r - geom.PlaneDistance(p.X, c.Point, c.Normal)
	if delta <= 0 {
		c.Reset()
		return
	}
	n := c.Normal.Scale(-1)

	e := wallEffective(p, &props.Materials[p.Type], &props.Wall)
	vij := p.V.Add(p.Omega.Scale(r).Cross(n))
	f, ft, m := resolve(e, law(e, delta), n, delta, vij, p.Omega, &c.History, dt)

	p.Force = p.Force.Add(f)
	p.Torque = p.Torque.Add(n.Cross(ft).Scale(r)).Add(m)
}

// resolve computes the force on the first body of a contact and the rolling
// resistance torque on it. n is the unit normal pointing from the first body
// to the second, vij is the relative velocity of the first body at the
// contact point and wij is the relative angular velocity. It also returns
// the tangential part of the force.
func resolve(
	e effective, c coefficients, n r3.Vec, delta float64,
	vij, wij r3.Vec, h *search.History, dt float64,
) (f, ft, m r3.Vec) {
	h.NormalOverlap = delta

	vn := vij.Dot(n)
	fn := c.kn*delta + c.etaN*vn
	fnAbs := math.Abs(fn)

	// The tangential spring is rotated into the current tangent plane
	// before it is stretched.
	vt := vij.Sub(n.Scale(vn))
	xi := h.TangentialOverlap
	xi = xi.Sub(n.Scale(xi.Dot(n)))
	xi = xi.Add(vt.Scale(dt))

	ft = xi.Scale(-c.kt).Sub(vt.Scale(c.etaT))
	if limit, norm := e.friction*fnAbs, geom.Norm(ft); norm > limit {
		ft = ft.Scale(limit / norm)
		if c.kt > 0 {
			xi = ft.Scale(-1 / c.kt)
		}
	}
	h.TangentialOverlap = xi

	theta := h.RollingOverlap.Add(wij.Scale(dt))
	kr := 2.25 * c.kn * e.rollingFriction * e.rollingFriction *
		e.radius * e.radius
	m = theta.Scale(-kr)
	if limit, norm := e.rollingFriction*e.radius*fnAbs, geom.Norm(m); norm > limit {
		m = m.Scale(limit / norm)
		if kr > 0 {
			theta = m.Scale(-1 / kr)
		}
	}
	h.RollingOverlap = theta

	return n.Scale(-fn).Add(ft), ft, m
}

// checkTypes returns an error if a particle's type has no material.
func checkTypes(props *Properties, p *particles.Particle) error {
	if p.Type < 0 || p.Type >= len(props.Materials) {
		return l_error.Invariant(
			"Particle %d has type %d, but only %d materials exist.",
			p.ID, p.Type, len(props.Materials),
		)
	}
	return nil
}

// ApplyParticleParticle adds the forces of every particle-particle contact
// to the rank's local particles. Ghost particles are given the force on a
// scratch copy, so their stored state is never written.
func ApplyParticleParticle(
	model ParticleParticleModel, props *Properties,
	c *search.PPContacts, h *particles.Handler, dt float64,
) error {
	for _, pc := range c.LocalList() {
		pi, ok1 := h.Particle(pc.ID1)
		pj, ok2 := h.Particle(pc.ID2)
		if !ok1 || !ok2 {
			return l_error.Invariant(
				"Local contact %d-%d refers to a missing particle.", pc.ID1, pc.ID2,
			)
		}
		if err := checkTypes(props, pi); err != nil {
			return err
		} else if err := checkTypes(props, pj); err != nil {
			return err
		}
		model.Pair(pi, pj, &pc.History, dt)
	}

	for _, pc := range c.GhostList() {
		pi, ok1 := h.Particle(pc.ID1)
		g, ok2 := h.Ghost(pc.ID2)
		if !ok1 || !ok2 {
			return l_error.Invariant(
				"Ghost contact %d-%d refers to a missing particle.", pc.ID1, pc.ID2,
			)
		}
		if err := checkTypes(props, pi); err != nil {
			return err
		} else if err := checkTypes(props, g); err != nil {
			return err
		}
		pj := *g
		model.Pair(pi, &pj, &pc.History, dt)
	}

	return nil
}

// ApplyParticleWall adds the forces of every particle-wall, particle-line
// and particle-point contact to the rank's local particles.
func ApplyParticleWall(
	model ParticleWallModel, props *Properties,
	c *search.PWContacts, h *particles.Handler, dt float64,
) error {
	for _, wc := range c.List() {
		p, ok := h.Particle(wc.ID)
		if !ok {
			return l_error.Invariant(
				"%s contact with %d refers to missing particle %d.",
				wc.Kind, wc.Primitive, wc.ID,
			)
		}
		if err := checkTypes(props, p); err != nil {
			return err
		}
		model.Wall(p, wc, dt)
	}
	return nil
}
