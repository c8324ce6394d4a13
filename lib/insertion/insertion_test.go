package insertion

import (
	"io/ioutil"
	"math"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/geom"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
	"github.com/lethe-cfd/lethe-dem/lib/neighbors"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
	"github.com/lethe-cfd/lethe-dem/lib/search"
)

const d = 0.01

func params(m Method) Params {
	return Params{
		Method: m, Dim: 2,
		TotalNumber: 100, InsertedNumberAtStep: 100,
		Box:               r3.Box{Max: r3.Vec{X: 0.1, Y: 0.1}},
		DistanceThreshold: 1.0,
		Diameter:          d, Density: 2500,
		RandomSeed: 1337, MaxAttempts: 1000,
	}
}

func handler(t *testing.T, c comm.Comm) *particles.Handler {
	box := r3.Box{Max: r3.Vec{X: 0.1, Y: 0.1, Z: 0.1}}
	g, err := mesh.NewGrid(box, [3]int{5, 5, 1}, 2, 0, nil)
	require.NoError(t, err)
	return particles.NewHandler(mesh.NewTriangulation(g, c))
}

func minSeparation(ps []*particles.Particle) float64 {
	min := math.Inf(1)
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			min = math.Min(min, math.Sqrt(geom.Dist2(ps[i].X, ps[j].X)))
		}
	}
	return min
}

func TestUniform(t *testing.T) {
	h := handler(t, comm.NewWorld(1).Comm(0))
	ins, err := New(params(Uniform))
	require.NoError(t, err)

	ok, err := ins.Insert(h, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, h.NParticles())
	assert.Equal(t, 100, ins.Inserted())

	ps := h.Particles()
	assert.InDelta(t, d, minSeparation(ps), 1e-12)
	for i, p := range ps {
		assert.Equal(t, uint64(i), p.ID)
		assert.InDelta(t, 2500*math.Pi*d*d/4, p.Mass, 1e-15)
		assert.InDelta(t, p.Mass*d*d/10, p.Inertia, 1e-20)
	}

	// Nothing overlaps beyond rounding error.
	_, err = h.SortIntoCells()
	require.NoError(t, err)
	require.NoError(t, h.ExchangeGhostParticles())
	local, ghost := search.ParticleParticleBroad(h, neighbors.Find(h.Tria))
	contacts := search.NewPPContacts()
	cutoff := d * (1 - 1e-9)
	require.NoError(t, search.ParticleParticleFine(
		local, ghost, contacts, h, cutoff*cutoff,
	))
	nLocal, nGhost := contacts.Len()
	assert.Equal(t, 0, nLocal+nGhost)

	ok, err = ins.Insert(h, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 100, h.NParticles())
}

func TestUniformBatches(t *testing.T) {
	p := params(Uniform)
	p.TotalNumber, p.InsertedNumberAtStep = 25, 10
	h := handler(t, comm.NewWorld(1).Comm(0))
	ins, err := New(p)
	require.NoError(t, err)

	counts := []int{}
	for step := int64(1); step <= 4; step++ {
		_, err := ins.Insert(h, step)
		require.NoError(t, err)
		counts = append(counts, h.NParticles())
	}
	assert.Equal(t, []int{10, 20, 25, 25}, counts)
}

func TestLattice(t *testing.T) {
	b := r3.Box{Max: r3.Vec{X: 0.1, Y: 0.05, Z: 0.03}}
	assert.Len(t, Lattice(b, 0.01, 2), 50)
	xs := Lattice(b, 0.01, 3)
	require.Len(t, xs, 150)
	assert.InDelta(t, 0.005, xs[0].X, 1e-15)
	assert.InDelta(t, 0.005, xs[0].Z, 1e-15)
	assert.InDelta(t, 0.015, xs[1].X, 1e-15)
}

func TestUniformRanks(t *testing.T) {
	w := comm.NewWorld(2)
	ids := make([][]uint64, 2)

	err := w.Run(func(c comm.Comm) error {
		h := handler(t, c)
		ins, err := New(params(Uniform))
		if err != nil {
			return err
		}
		if _, err := ins.Insert(h, 1); err != nil {
			return err
		}
		for _, p := range h.Particles() {
			ids[c.Rank()] = append(ids[c.Rank()], p.ID)
		}
		return nil
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ids[0])
	assert.NotEmpty(t, ids[1])
	all := append(append([]uint64{}, ids[0]...), ids[1]...)
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	require.Len(t, all, 100)
	for i := range all {
		assert.Equal(t, uint64(i), all[i])
	}
}

func TestNonUniform(t *testing.T) {
	p := params(NonUniform)
	p.TotalNumber, p.InsertedNumberAtStep = 30, 30

	run := func() []*particles.Particle {
		h := handler(t, comm.NewWorld(1).Comm(0))
		ins, err := New(p)
		require.NoError(t, err)
		_, err = ins.Insert(h, 1)
		require.NoError(t, err)
		return h.Particles()
	}

	ps1, ps2 := run(), run()
	require.Len(t, ps1, 30)
	assert.GreaterOrEqual(t, minSeparation(ps1), d*(1-1e-12))
	for i := range ps1 {
		assert.Equal(t, ps1[i].X, ps2[i].X)
	}
}

func TestRNG(t *testing.T) {
	gen1, gen2, gen3 := NewRNG(1), NewRNG(1), NewRNG(2)
	differ := false
	for i := 0; i < 1000; i++ {
		x := gen1.Uniform()
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 1.0)
		assert.Equal(t, x, gen2.Uniform())
		if x != gen3.Uniform() {
			differ = true
		}
	}
	assert.True(t, differ)

	b := r3.Box{Min: r3.Vec{X: 1, Y: 2, Z: 3}, Max: r3.Vec{X: 2, Y: 3, Z: 4}}
	x := gen1.Point(b, 2)
	assert.Equal(t, 0.0, x.Z)
	assert.True(t, x.X >= 1 && x.X < 2 && x.Y >= 2 && x.Y < 3)

	// A 1x1 box holds at most 4 points which are 0.9 apart.
	xs := NewRNG(7).Scatter(b, 2, 10, 0.9, 100, func(r3.Vec) bool { return true })
	assert.LessOrEqual(t, len(xs), 4)
	assert.GreaterOrEqual(t, len(xs), 1)
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			assert.GreaterOrEqual(t, geom.Dist2(xs[i], xs[j]), 0.81)
		}
	}
	assert.Len(t, NewRNG(7).Scatter(b, 2, 3, 0, 5, func(r3.Vec) bool { return false }), 0)
}

func TestFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "particles.txt")
	text := "0.02 0.02 0.01\n0.05 0.05 0.02\n0.5 0.5 0.01\n0.08 0.02 0.005\n"
	require.NoError(t, ioutil.WriteFile(fname, []byte(text), 0644))

	p := params(File)
	p.TotalNumber, p.InsertedNumberAtStep = 0, 2
	p.FileName, p.FileDiameters = fname, true
	h := handler(t, comm.NewWorld(1).Comm(0))
	ins, err := New(p)
	require.NoError(t, err)

	for step := int64(1); step <= 3; step++ {
		_, err := ins.Insert(h, step)
		require.NoError(t, err)
	}

	ps := h.Particles()
	require.Len(t, ps, 3)
	assert.Equal(t, []float64{0.01, 0.02, 0.005},
		[]float64{ps[0].Diameter, ps[1].Diameter, ps[2].Diameter})
	assert.Equal(t, 4, ins.Inserted())

	p.FileName = filepath.Join(t.TempDir(), "missing.txt")
	ins, err = New(p)
	require.NoError(t, err)
	_, err = ins.Insert(h, 1)
	assert.True(t, l_error.IsConfig(err))
}

func TestNewErrors(t *testing.T) {
	p := params(Uniform)
	p.Box.Max.X = 0
	_, err := New(p)
	assert.True(t, l_error.IsConfig(err))

	p = params(Uniform)
	p.Dim = 4
	_, err = New(p)
	assert.True(t, l_error.IsConfig(err))

	p = params(File)
	_, err = New(p)
	assert.True(t, l_error.IsConfig(err))

	p = params(Method(7))
	_, err = New(p)
	assert.True(t, l_error.IsConfig(err))
}
