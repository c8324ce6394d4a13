/*package force contains the contact force laws: linear and non-linear
(Hertz-Mindlin) spring-dashpots with Coulomb friction and an elastic-plastic
rolling resistance spring. Particle-particle forces are applied as exact
opposites to the two particles, so that swapping the order of a pair negates
the force bit-for-bit. Walls are rigid and receive no reaction.*/
package force

/* This file contains material properties and the effective properties of a
contact. */

import (
	"math"

	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

// Material holds the mechanical properties of a particle type or a wall.
type Material struct {
	YoungsModulus   float64
	PoissonRatio    float64
	Restitution     float64
	Friction        float64
	RollingFriction float64
}

// Properties holds everything the force laws need besides the contacts
// themselves.
type Properties struct {
	// Materials is indexed by Particle.Type.
	Materials []Material
	Wall      Material

	// CharacteristicVelocity sets the stiffness of the linear laws.
	CharacteristicVelocity float64
	// Exponent is the power of the overlap in the non-linear normal spring.
	Exponent float64
}

// effective holds the properties of a contact between two bodies.
type effective struct {
	mass, radius    float64
	youngs, shear   float64
	restitution     float64
	friction        float64
	rollingFriction float64
}

func pairEffective(pi, pj *particles.Particle, mi, mj *Material) effective {
	ri, rj := pi.Radius(), pj.Radius()
	return effective{
		mass:            pi.Mass * pj.Mass / (pi.Mass + pj.Mass),
		radius:          ri * rj / (ri + rj),
		youngs:          1 / (youngsTerm(mi) + youngsTerm(mj)),
		shear:           1 / (shearTerm(mi) + shearTerm(mj)),
		restitution:     harmonic(mi.Restitution, mj.Restitution),
		friction:        harmonic(mi.Friction, mj.Friction),
		rollingFriction: harmonic(mi.RollingFriction, mj.RollingFriction),
	}
}

// wallEffective treats the wall as a body of infinite mass and radius.
func wallEffective(p *particles.Particle, mp, mw *Material) effective {
	return effective{
		mass:            p.Mass,
		radius:          p.Radius(),
		youngs:          1 / (youngsTerm(mp) + youngsTerm(mw)),
		shear:           1 / (shearTerm(mp) + shearTerm(mw)),
		restitution:     harmonic(mp.Restitution, mw.Restitution),
		friction:        harmonic(mp.Friction, mw.Friction),
		rollingFriction: harmonic(mp.RollingFriction, mw.RollingFriction),
	}
}

func youngsTerm(m *Material) float64 {
	return (1 - m.PoissonRatio*m.PoissonRatio) / m.YoungsModulus
}

func shearTerm(m *Material) float64 {
	return 2 * (2 - m.PoissonRatio) * (1 + m.PoissonRatio) / m.YoungsModulus
}

func harmonic(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}

// dampingRatio returns ln(e) / sqrt(ln(e)^2 + pi^2), which is -1 for a
// perfectly plastic contact and 0 for a perfectly elastic one.
func dampingRatio(e float64) float64 {
	switch {
	case e <= 0:
		return -1
	case e >= 1:
		return 0
	}
	le := math.Log(e)
	return le / math.Sqrt(le*le+math.Pi*math.Pi)
}

// coefficients are the spring and dashpot constants of a contact.
type coefficients struct {
	kn, etaN, kt, etaT float64
}

// linear returns constants which do not depend on the overlap. The
// stiffness is set so that a head-on collision at the characteristic
// velocity reaches the same overlap as a Hertzian one would.
func linear(e effective, v float64) coefficients {
	sr := math.Sqrt(e.radius)
	kn := 16.0 / 15 * sr * e.youngs *
		math.Pow(15*e.mass*v*v/(16*sr*e.youngs), 0.2)
	kt := 16.0 / 15 * sr * e.shear *
		math.Pow(15*e.mass*v*v/(16*sr*e.shear), 0.2)
	b := dampingRatio(e.restitution)
	return coefficients{
		kn:   kn,
		etaN: -2 * b * math.Sqrt(e.mass*kn),
		kt:   kt,
		etaT: -2 * b * math.Sqrt(e.mass*kt),
	}
}

// nonLinear returns the Hertz-Mindlin constants at overlap delta. kn is
// defined so that kn * delta is the normal spring force.
func nonLinear(e effective, exponent, delta float64) coefficients {
	srd := math.Sqrt(e.radius * delta)
	b := dampingRatio(e.restitution)
	c := -2 * math.Sqrt(5.0/6) * b
	return coefficients{
		kn:   4.0 / 3 * e.youngs * math.Sqrt(e.radius) * math.Pow(delta, exponent-1),
		etaN: c * math.Sqrt(2*e.youngs*srd*e.mass),
		kt:   8 * e.shear * srd,
		etaT: c * math.Sqrt(8*e.shear*srd*e.mass),
	}
}
