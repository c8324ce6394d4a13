/*package integrator advances particles in time. Integrators are stateless:
everything they need is in the particles and the arguments they are called
with.*/
package integrator

import (
	"gonum.org/v1/gonum/spatial/r3"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/geom"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

// Method selects an integration scheme.
type Method int

const (
	VelocityVerlet Method = iota
	ExplicitEuler
)

func (m Method) String() string {
	switch m {
	case VelocityVerlet:
		return "velocity_verlet"
	case ExplicitEuler:
		return "explicit_euler"
	}
	return "unknown"
}

// Integrator advances a set of particles by one step. The set of
// implementations is closed: Verlet and Euler.
type Integrator interface {
	// Integrate advances every particle by dt under its accumulated force
	// and torque plus a uniform body acceleration g. dim is 2 or 3.
	Integrate(ps []*particles.Particle, g r3.Vec, dt float64, dim int)
	integrator()
}

// Verlet is a single-pass velocity-Verlet scheme. Forces are evaluated once
// per step, so both velocity half-steps use the same acceleration.
type Verlet struct{}

// Euler is the explicit (forward) Euler scheme.
type Euler struct{}

// Type assertions
var (
	_ Integrator = Verlet{}
	_ Integrator = Euler{}
)

// New returns the Integrator for a Method.
func New(m Method) (Integrator, error) {
	switch m {
	case VelocityVerlet:
		return Verlet{}, nil
	case ExplicitEuler:
		return Euler{}, nil
	}
	return nil, l_error.Config("Unrecognized integration method %d.", m)
}

func (Verlet) integrator() {}
func (Euler) integrator()  {}

func accelerations(p *particles.Particle, g r3.Vec, dim int) (a, alpha r3.Vec) {
	a = geom.Flatten(g.Add(p.Force.Scale(1/p.Mass)), dim)
	if p.Inertia > 0 {
		alpha = geom.FlattenAxial(p.Torque.Scale(1/p.Inertia), dim)
	}
	return a, alpha
}

func (Verlet) Integrate(ps []*particles.Particle, g r3.Vec, dt float64, dim int) {
	for _, p := range ps {
		a, alpha := accelerations(p, g, dim)
		vHalf := p.V.Add(a.Scale(dt / 2))
		p.X = p.X.Add(vHalf.Scale(dt))
		p.V = vHalf.Add(a.Scale(dt / 2))
		p.Omega = p.Omega.Add(alpha.Scale(dt))
	}
}

func (Euler) Integrate(ps []*particles.Particle, g r3.Vec, dt float64, dim int) {
	for _, p := range ps {
		a, alpha := accelerations(p, g, dim)
		p.X = p.X.Add(p.V.Scale(dt))
		p.V = p.V.Add(a.Scale(dt))
		p.Omega = p.Omega.Add(alpha.Scale(dt))
	}
}
