package output

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
	"github.com/lethe-cfd/lethe-dem/lib/neighbors"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
	"github.com/lethe-cfd/lethe-dem/lib/search"
)

const diameter = 0.04

func handler(c comm.Comm) (*particles.Handler, error) {
	box := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	g, err := mesh.NewGrid(box, [3]int{4, 4, 1}, 2, 0, nil)
	if err != nil {
		return nil, err
	}
	return particles.NewHandler(mesh.NewTriangulation(g, c)), nil
}

// contacts inserts the particles at xs which this rank owns and runs a full
// contact search.
func contacts(
	h *particles.Handler, xs []r3.Vec,
) (*search.PPContacts, error) {
	for i, x := range xs {
		if h.Tria.OwnerOf(x) != h.Tria.Rank() {
			continue
		}
		p := &particles.Particle{
			ID: uint64(i), Diameter: diameter, Mass: 2, Inertia: 0.5,
			X: x, V: r3.Vec{X: 1}, Omega: r3.Vec{Z: 2},
		}
		if err := h.Insert(p); err != nil {
			return nil, err
		}
	}
	if err := h.ExchangeGhostParticles(); err != nil {
		return nil, err
	}

	local, ghost := search.ParticleParticleBroad(h, neighbors.Find(h.Tria))
	pc := search.NewPPContacts()
	cutoff := 1.5 * diameter
	err := search.ParticleParticleFine(local, ghost, pc, h, cutoff*cutoff)
	return pc, err
}

func TestWriteParticles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "", "")
	require.NoError(t, err)

	h, err := handler(comm.NewWorld(1).Comm(0))
	require.NoError(t, err)
	_, err = contacts(h, []r3.Vec{{X: 0.1, Y: 0.1}, {X: 0.7, Y: 0.2}})
	require.NoError(t, err)

	fname, err := w.WriteParticles(0, 42, 0.5, h.Particles())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "particles.00042.0.txt"), fname)

	b, err := ioutil.ReadFile(fname)
	require.NoError(t, err)
	rows := []string{}
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if !strings.HasPrefix(line, "#") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	assert.Len(t, strings.Fields(rows[0]), 15)
	assert.True(t, strings.HasPrefix(rows[1], "1 0 0.04 0.7 0.2 0 "))

	fname, err = w.WriteGrid(h.Tria, 42)
	require.NoError(t, err)
	b, err = ioutil.ReadFile(fname)
	require.NoError(t, err)
	assert.Equal(t, 4+16, strings.Count(string(b), "\n"))
}

func TestNewErrors(t *testing.T) {
	_, err := New("", "p.{%d,snapshot}", "")
	assert.True(t, l_error.IsConfig(err))
	_, err = New("", "", "g.{%d,step")
	assert.True(t, l_error.IsConfig(err))
}

func TestKineticEnergy(t *testing.T) {
	ps := []*particles.Particle{
		{Mass: 2, Inertia: 0.5, V: r3.Vec{X: 1, Y: 1}, Omega: r3.Vec{Z: 2}},
		{Mass: 1, Inertia: 1, V: r3.Vec{Z: 3}},
	}
	trans, rot := KineticEnergy(ps)
	assert.InDelta(t, 2+4.5, trans, 1e-12)
	assert.InDelta(t, 1, rot, 1e-12)
}

func TestComputeGhostContact(t *testing.T) {
	xs := []r3.Vec{{X: 0.5, Y: 0.49}, {X: 0.5, Y: 0.52}, {X: 0.1, Y: 0.9}}
	w := comm.NewWorld(2)
	out := make([]*Diagnostics, 2)

	err := w.Run(func(c comm.Comm) error {
		h, err := handler(c)
		if err != nil {
			return err
		}
		pc, err := contacts(h, xs)
		if err != nil {
			return err
		}
		out[c.Rank()], err = Compute(h, pc)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, out[0], out[1])
	d := out[0]
	assert.Equal(t, 3, d.Particles)
	assert.Equal(t, 1, d.Contacts)
	assert.InDelta(t, 2.0/3, d.Coordination, 1e-12)
	assert.InDelta(t, 0, d.Fabric[0], 1e-12)
	assert.InDelta(t, 0, d.Fabric[1], 1e-12)
	assert.InDelta(t, 1, d.Fabric[2], 1e-12)
	assert.InDelta(t, 6, d.TranslationalEnergy+d.RotationalEnergy, 1e-12)
}

func TestPrintTestMode(t *testing.T) {
	w := comm.NewWorld(3)
	buf := &bytes.Buffer{}
	err := w.Run(func(c comm.Comm) error {
		x := float64(c.Rank())
		ps := []*particles.Particle{{X: r3.Vec{X: x, Y: x}}}
		PrintTestMode(c, buf, ps)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "0.000000 0.000000 0.000000\n"+
		"1.000000 1.000000 0.000000\n2.000000 2.000000 0.000000\n",
		buf.String())
}
