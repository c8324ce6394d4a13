package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/eq"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

var gravity = r3.Vec{Y: -9.81}

func particle() *particles.Particle {
	return &particles.Particle{
		ID: 1, Diameter: 0.01, Mass: 2, Inertia: 0.5,
		X: r3.Vec{X: 1, Y: 2}, V: r3.Vec{X: 3},
		Force: r3.Vec{X: 4, Z: 6}, Torque: r3.Vec{X: 1, Z: 1},
	}
}

func TestEuler(t *testing.T) {
	p := particle()
	Euler{}.Integrate([]*particles.Particle{p}, gravity, 0.1, 2)

	assert.InDelta(t, 1.3, p.X.X, 1e-14)
	assert.InDelta(t, 2.0, p.X.Y, 1e-14)
	assert.InDelta(t, 3.2, p.V.X, 1e-14)
	assert.InDelta(t, -0.981, p.V.Y, 1e-14)
	assert.Equal(t, 0.0, p.V.Z)
	assert.Equal(t, r3.Vec{Z: 0.2}, p.Omega)
}

func TestVerlet(t *testing.T) {
	p := particle()
	Verlet{}.Integrate([]*particles.Particle{p}, gravity, 0.1, 3)

	// a = (2, -9.81, 3)
	x := r3.Vec{X: 1 + 0.3 + 0.01, Y: 2 - 0.04905, Z: 0.015}
	v := r3.Vec{X: 3.2, Y: -0.981, Z: 0.3}
	assert.True(t, eq.VecEps(x, p.X, 1e-14), "x = %v", p.X)
	assert.True(t, eq.VecEps(v, p.V, 1e-14), "v = %v", p.V)
	assert.True(t, eq.VecEps(r3.Vec{X: 0.2, Z: 0.2}, p.Omega, 1e-14),
		"omega = %v", p.Omega)
}

// Under constant acceleration Verlet is exact.
func TestVerletFreeFall(t *testing.T) {
	p := &particles.Particle{Mass: 1, Inertia: 1}
	dt, n := 1e-3, 1000
	for i := 0; i < n; i++ {
		Verlet{}.Integrate([]*particles.Particle{p}, gravity, dt, 3)
	}
	tt := dt * float64(n)
	assert.InDelta(t, -0.5*9.81*tt*tt, p.X.Y, 1e-9)
	assert.InDelta(t, -9.81*tt, p.V.Y, 1e-9)
}

func TestNew(t *testing.T) {
	in, err := New(ExplicitEuler)
	require.NoError(t, err)
	assert.IsType(t, Euler{}, in)
	_, err = New(Method(9))
	assert.Error(t, err)
	assert.Equal(t, "velocity_verlet", VelocityVerlet.String())
}
