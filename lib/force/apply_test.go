package force

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/boundary"
	"github.com/lethe-cfd/lethe-dem/lib/comm"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
	"github.com/lethe-cfd/lethe-dem/lib/search"
)

type ApplySuite struct {
	suite.Suite
	props  *Properties
	h      *particles.Handler
	pp     *search.PPContacts
	pw     *search.PWContacts
	a, b   *particles.Particle
	linear *ParticleParticleLinear
}

func (s *ApplySuite) SetupTest() {
	box := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	g, err := mesh.NewGrid(box, [3]int{4, 4, 1}, 2, 0, nil)
	require.NoError(s.T(), err)
	w := comm.NewWorld(1)
	s.h = particles.NewHandler(mesh.NewTriangulation(g, w.Comm(0)))

	s.props = testProps()
	s.linear = &ParticleParticleLinear{s.props}
	s.a = &particles.Particle{
		ID: 3, Type: 0, Diameter: 0.01, Mass: 1e-3, Inertia: 1e-8,
		X: r3.Vec{X: 0.5, Y: 0.5},
	}
	s.b = &particles.Particle{
		ID: 8, Type: 1, Diameter: 0.01, Mass: 1e-3, Inertia: 1e-8,
		X: r3.Vec{X: 0.509, Y: 0.5},
	}
	require.NoError(s.T(), s.h.Insert(s.a))
	require.NoError(s.T(), s.h.Insert(s.b))

	s.pp = search.NewPPContacts()
	s.pw = search.NewPWContacts()
}

func (s *ApplySuite) addLocal(id1, id2 uint64) *search.PPContact {
	pc := &search.PPContact{ID1: id1, ID2: id2}
	if s.pp.Local[id1] == nil {
		s.pp.Local[id1] = map[uint64]*search.PPContact{}
	}
	s.pp.Local[id1][id2] = pc
	return pc
}

func (s *ApplySuite) TestLocalPair() {
	require := require.New(s.T())
	pc := s.addLocal(3, 8)

	require.NoError(ApplyParticleParticle(s.linear, s.props, s.pp, s.h, 1e-5))
	require.InDelta(0.001, pc.NormalOverlap, 1e-12)
	require.Less(s.a.Force.X, 0.0)
	require.Equal(s.a.Force.Scale(-1), s.b.Force)
}

func (s *ApplySuite) TestMissingParticle() {
	require := require.New(s.T())
	s.addLocal(3, 9)

	err := ApplyParticleParticle(s.linear, s.props, s.pp, s.h, 1e-5)
	require.Error(err)
	require.False(l_error.IsConfig(err))
	require.Equal(r3.Vec{}, s.a.Force)
}

func (s *ApplySuite) TestMissingGhost() {
	require := require.New(s.T())
	s.pp.Ghost[3] = map[uint64]*search.PPContact{
		12: {ID1: 3, ID2: 12},
	}

	err := ApplyParticleParticle(s.linear, s.props, s.pp, s.h, 1e-5)
	require.Error(err)
	require.False(l_error.IsConfig(err))
}

func (s *ApplySuite) TestUnknownType() {
	require := require.New(s.T())
	s.b.Type = 2
	s.addLocal(3, 8)

	require.Error(ApplyParticleParticle(s.linear, s.props, s.pp, s.h, 1e-5))
}

func (s *ApplySuite) TestWall() {
	require := require.New(s.T())
	s.a.X.Y = 0.004
	s.pw.Faces[3] = map[int]*search.PWContact{
		0: {
			ID: 3, Kind: boundary.FaceKind,
			Normal: r3.Vec{Y: 1}, Point: r3.Vec{X: 0.5},
		},
	}

	model := &ParticleWallLinear{s.props}
	require.NoError(ApplyParticleWall(model, s.props, s.pw, s.h, 1e-5))
	require.Greater(s.a.Force.Y, 0.0)
	require.Equal(r3.Vec{}, s.b.Force)

	s.pw.Clear()
	s.pw.Faces[7] = map[int]*search.PWContact{0: {ID: 7}}
	require.Error(ApplyParticleWall(model, s.props, s.pw, s.h, 1e-5))
}

func TestApplySuite(t *testing.T) {
	suite.Run(t, new(ApplySuite))
}
