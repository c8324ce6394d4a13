/*package dem runs the DEM engine: one Solver per rank, each stepping the
particles in its own part of the mesh and exchanging particles with the other
ranks through collectives.*/
package dem

import (
	"log"

	"github.com/lethe-cfd/lethe-dem/lib/boundary"
	"github.com/lethe-cfd/lethe-dem/lib/comm"
	"github.com/lethe-cfd/lethe-dem/lib/config"
	"github.com/lethe-cfd/lethe-dem/lib/control"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/force"
	"github.com/lethe-cfd/lethe-dem/lib/insertion"
	"github.com/lethe-cfd/lethe-dem/lib/integrator"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
	"github.com/lethe-cfd/lethe-dem/lib/neighbors"
	"github.com/lethe-cfd/lethe-dem/lib/output"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
	"github.com/lethe-cfd/lethe-dem/lib/schedule"
	"github.com/lethe-cfd/lethe-dem/lib/search"
	"github.com/lethe-cfd/lethe-dem/lib/timer"
)

// State is the life cycle stage of a Solver.
type State int

const (
	Initializing State = iota
	Stepping
	Finished
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Stepping:
		return "stepping"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Solver is the engine of a single rank.
type Solver struct {
	Args  *config.Args
	State State

	Comm      comm.Comm
	Tria      *mesh.Triangulation
	Handler   *particles.Handler
	Neighbors *neighbors.List
	Boundary  *boundary.Index

	PP *search.PPContacts
	PW *search.PWContacts

	Control    *control.Control
	Schedule   schedule.Schedule
	Inserter   insertion.Inserter
	Integrator integrator.Integrator
	PPModel    force.ParticleParticleModel
	PWModel    force.ParticleWallModel
	Props      *force.Properties

	Timer  *timer.Timer
	Writer *output.Writer
	// Log writes progress messages. It only prints on rank 0.
	Log *log.Logger

	// Repartitions counts the load balancing passes so far.
	Repartitions int
	// threshold is the squared neighborhood cutoff distance.
	threshold float64
}

// NewSolver sets up the engine of the rank c. args must already have passed
// config.Check.
func NewSolver(args *config.Args, c comm.Comm, pcout *log.Logger) (*Solver, error) {
	s := &Solver{
		Args: args, State: Initializing, Comm: c, Log: pcout,
		PP: search.NewPPContacts(), PW: search.NewPWContacts(),
		Schedule: schedule.New(
			args.RepartitionFrequency, args.DetectionFrequency,
			args.InsertionFrequency, args.OutputFrequency,
		),
		Timer: timer.New(args.Timer),
	}

	g, err := mesh.NewGrid(
		args.Box, args.Cells, args.Dim, args.Refinement, args.Obstacles,
	)
	if err != nil {
		return nil, err
	}
	s.Tria = mesh.NewTriangulation(g, c)
	s.Handler = particles.NewHandler(s.Tria)
	s.Neighbors = neighbors.Find(s.Tria)
	s.Boundary = boundary.Find(s.Tria)

	if s.Control, err = control.New(
		args.TimeStep, args.TimeEnd, args.MaxSteps,
		args.LogFrequency, args.OutputFrequency, args.OutputSteps,
	); err != nil {
		return nil, err
	}
	if args.Inserts() {
		if s.Inserter, err = insertion.New(args.Insertion); err != nil {
			return nil, err
		}
	}
	if s.Integrator, err = integrator.New(args.Integration); err != nil {
		return nil, err
	}

	props := args.Properties
	s.Props = &props
	if s.PPModel, err = force.NewParticleParticleModel(
		args.ParticleParticle, s.Props,
	); err != nil {
		return nil, err
	}
	if s.PWModel, err = force.NewParticleWallModel(
		args.ParticleWall, s.Props,
	); err != nil {
		return nil, err
	}

	if s.Writer, err = output.New(
		args.OutputDir, args.ParticleFormat, args.GridFormat,
	); err != nil {
		return nil, err
	}

	cutoff := args.NeighborhoodThreshold * args.MaxDiameter()
	s.threshold = cutoff * cutoff
	return s, nil
}

// CellWeight is the load balancing weight of a cell: the number of particles
// in it times the particle weight. Cells owned by other ranks weigh nothing.
func (s *Solver) CellWeight(cell int, status mesh.CellStatus) (int64, error) {
	if !s.Tria.IsLocallyOwned(cell) {
		return 0, nil
	}

	w := s.Args.ParticleWeight
	switch status {
	case mesh.CellPersist, mesh.CellRefine:
		return int64(s.Handler.NParticlesInCell(cell)) * w, nil
	case mesh.CellCoarsen:
		n := 0
		for _, child := range s.Tria.Children(cell) {
			n += s.Handler.NParticlesInCell(child)
		}
		return int64(n) * w, nil
	}
	return 0, l_error.Invariant("Unrecognized status %s of cell %d.",
		status, cell)
}

// Solve steps until the simulation is over. It is collective.
func (s *Solver) Solve() error {
	s.State = Stepping
	s.Log.Printf("Starting on %d ranks with %d active cells.",
		s.Comm.Size(), s.Tria.ActiveCells())

	for s.Control.Integrate() {
		if err := s.Step(); err != nil {
			return err
		}
		s.Control.PrintProgression(s.Log)
		s.Timer.EndIteration(s.Log, s.Control.Step)
	}

	s.State = Finished
	s.Log.Printf("Finished after %d steps, t = %g s.",
		s.Control.Step, s.Control.Time)
	s.Timer.Summary(s.Log)
	return nil
}

// Step runs the current step of s.Control. It is collective.
func (s *Solver) Step() error {
	step := s.Control.Step
	due := s.Schedule.At(step)
	c := s.Comm

	s.Handler.ZeroForces()

	if due.Repartition {
		s.Timer.Enter("repartition")
		err := s.repartition()
		s.Timer.Exit("repartition")
		if err != nil {
			return err
		}
	}

	inserted := false
	if due.Insertion && s.Inserter != nil {
		s.Timer.Enter("insertion")
		var err error
		inserted, err = s.Inserter.Insert(s.Handler, step)
		s.Timer.Exit("insertion")
		if err = comm.Agree(c, err); err != nil {
			return err
		}
	}

	detect := inserted || due.Detection
	s.Timer.Enter("particle exchange")
	if detect {
		removed, err := s.Handler.SortIntoCells()
		if err != nil {
			return err
		}
		if n := comm.AllreduceSumInt64(c, int64(removed)); n > 0 {
			s.Log.Printf("Step %d: %d particles left the domain.", step, n)
		}
		if err = s.Handler.ExchangeGhostParticles(); err != nil {
			return err
		}
	} else if err := s.Handler.UpdateGhostParticles(); err != nil {
		return err
	}
	s.Timer.Exit("particle exchange")

	if detect {
		if err := s.search(); err != nil {
			return err
		}
	}

	s.Timer.Enter("forces")
	dt := s.Control.TimeStep
	err := force.ApplyParticleParticle(s.PPModel, s.Props, s.PP, s.Handler, dt)
	if err == nil {
		err = force.ApplyParticleWall(s.PWModel, s.Props, s.PW, s.Handler, dt)
	}
	s.Timer.Exit("forces")
	if err = comm.Agree(c, err); err != nil {
		return err
	}

	s.Timer.Enter("integration")
	s.Integrator.Integrate(s.Handler.Particles(), s.Args.Gravity, dt, s.Args.Dim)
	s.Timer.Exit("integration")

	if s.Control.IsOutputIteration() {
		s.Timer.Enter("output")
		err := s.write()
		s.Timer.Exit("output")
		return err
	}
	return nil
}

// search rebuilds every contact list. Its only communication is the
// hand-off of histories for pairs which were split between ranks.
func (s *Solver) search() error {
	s.Timer.Enter("broad search")
	local, ghost := search.ParticleParticleBroad(s.Handler, s.Neighbors)
	faces := search.ParticleWallBroad(s.Handler, s.Boundary)
	lines := search.ParticleLineBroad(s.Handler, s.Boundary)
	points := search.ParticlePointBroad(s.Handler, s.Boundary)
	s.Timer.Exit("broad search")

	s.Timer.Enter("fine search")
	err := search.ParticleParticleFine(local, ghost, s.PP, s.Handler, s.threshold)
	if err == nil {
		err = search.ParticleWallFine(faces, s.PW, s.Handler, s.Boundary)
	}
	if err == nil {
		err = search.ParticleLineFine(lines, s.PW, s.Handler, s.Boundary)
	}
	if err == nil {
		err = search.ParticlePointFine(points, s.PW, s.Handler, s.Boundary)
	}
	s.Timer.Exit("fine search")

	if err = comm.Agree(s.Comm, err); err != nil {
		return err
	}
	return search.ShareGhostHistories(s.PP, s.Handler)
}

// repartition balances the particle load between ranks and rebuilds the
// indices which depend on cell ownership.
func (s *Solver) repartition() error {
	blob, err := s.Handler.BeforeRepartition()
	if err = comm.Agree(s.Comm, err); err != nil {
		return err
	}
	changed, err := s.Tria.Repartition(s.CellWeight)
	if err != nil {
		return err
	}
	if err = s.Handler.AfterRepartition(blob); err != nil {
		return err
	}

	s.Neighbors = neighbors.Find(s.Tria)
	s.Boundary = boundary.Find(s.Tria)
	s.Repartitions++
	if changed {
		s.Log.Printf("Step %d: repartitioned the mesh.", s.Control.Step)
	}
	return nil
}

// write writes the snapshot files of the rank and logs diagnostics. It is
// collective.
func (s *Solver) write() error {
	step, ps := s.Control.Step, s.Handler.Particles()
	_, err := s.Writer.WriteParticles(s.Comm.Rank(), step, s.Control.Time, ps)
	if err == nil {
		_, err = s.Writer.WriteGrid(s.Tria, step)
	}
	if err = comm.Agree(s.Comm, err); err != nil {
		return err
	}

	d, err := output.Compute(s.Handler, s.PP)
	if err != nil {
		return err
	}
	s.Log.Printf("Step %d: N = %d, E_kin = %.6g J, E_rot = %.6g J, "+
		"contacts = %d, Z = %.4g, fabric = %.4g",
		step, d.Particles, d.TranslationalEnergy, d.RotationalEnergy,
		d.Contacts, d.Coordination, d.Fabric)
	return nil
}
