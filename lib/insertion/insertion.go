/*package insertion adds new particles to the simulation.

Every rank generates the same list of candidate particles, so each rank keeps
the candidates which fall inside its own cells and particle IDs stay globally
unique without any communication.
*/
package insertion

import (
	"math"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/spatial/r3"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

// Method identifies an insertion strategy.
type Method int

const (
	Uniform Method = iota
	NonUniform
	File
)

func (m Method) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case NonUniform:
		return "non_uniform"
	case File:
		return "file"
	}
	return "unknown"
}

// Params describes what gets inserted and where.
type Params struct {
	Method Method
	Dim    int

	// TotalNumber is the number of particles inserted over the whole run.
	// For File insertion a value of zero means every row of the file.
	TotalNumber          int
	InsertedNumberAtStep int
	Box                  r3.Box
	// DistanceThreshold is the spacing between inserted particles in units
	// of their diameter.
	DistanceThreshold float64

	Type            int
	Diameter        float64
	Density         float64
	InitialVelocity r3.Vec
	InitialOmega    r3.Vec

	RandomSeed  uint64
	MaxAttempts int

	FileName string
	// FileDiameters reads particle diameters from the column after the
	// coordinates.
	FileDiameters bool
}

// Inserter is an insertion strategy. Insert is collective in the sense that
// every rank must call it on the same steps, but it never communicates. It
// returns true if any particle was inserted on any rank.
type Inserter interface {
	Insert(h *particles.Handler, step int64) (bool, error)
	Inserted() int
	isInserter()
}

// Type assertions
var (
	_ Inserter = &UniformInserter{}
	_ Inserter = &NonUniformInserter{}
	_ Inserter = &FileInserter{}
)

// New creates the Inserter for p.Method.
func New(p Params) (Inserter, error) {
	if p.Dim != 2 && p.Dim != 3 {
		return nil, l_error.Config("Insertion dimension must be 2 or 3, not %d.", p.Dim)
	}

	base := inserter{p: p}
	switch p.Method {
	case Uniform:
		if err := base.checkBox(); err != nil {
			return nil, err
		}
		return &UniformInserter{base}, nil
	case NonUniform:
		if err := base.checkBox(); err != nil {
			return nil, err
		}
		return &NonUniformInserter{base, NewRNG(p.RandomSeed)}, nil
	case File:
		if p.FileName == "" {
			return nil, l_error.Config("File insertion requires a FileName.")
		}
		return &FileInserter{inserter: base}, nil
	}
	return nil, l_error.Config("Unrecognized insertion method %d.", p.Method)
}

// inserter holds the state every strategy shares.
type inserter struct {
	p        Params
	inserted int
	nextID   uint64
}

func (ins *inserter) isInserter() {}

// Inserted returns the number of candidates inserted so far on all ranks.
func (ins *inserter) Inserted() int { return ins.inserted }

func (ins *inserter) spacing() float64 {
	return ins.p.DistanceThreshold * ins.p.Diameter
}

func (ins *inserter) checkBox() error {
	b := ins.p.Box
	if b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y ||
		(ins.p.Dim == 3 && b.Max.Z <= b.Min.Z) {
		return l_error.Config("The insertion box %v is empty.", b)
	}
	if ins.p.Diameter <= 0 || ins.p.Density <= 0 {
		return l_error.Config("Inserted particles need a positive " +
			"diameter and density.")
	}
	if ins.spacing() <= 0 {
		return l_error.Config("DistanceThreshold must be positive.")
	}
	return nil
}

// remaining returns how many particles may be inserted on this step.
func (ins *inserter) remaining(total int) int {
	n := total - ins.inserted
	if ins.p.InsertedNumberAtStep < n {
		n = ins.p.InsertedNumberAtStep
	}
	if n < 0 {
		return 0
	}
	return n
}

// valid returns true if x lies inside an active cell of the grid and false
// otherwise.
func valid(h *particles.Handler, x r3.Vec) bool {
	_, ok := h.Tria.FindCell(x)
	return ok
}

// Mass returns the mass of a particle. In 2D this is the mass per unit
// depth of a disk.
func Mass(d, density float64, dim int) float64 {
	if dim == 2 {
		return density * math.Pi * d * d / 4
	}
	return density * math.Pi * d * d * d / 6
}

// Inertia returns the moment of inertia of a particle with mass m.
func Inertia(m, d float64) float64 { return m * d * d / 10 }

// commit assigns IDs to the candidates and inserts the ones inside this
// rank's cells.
func (ins *inserter) commit(
	h *particles.Handler, xs []r3.Vec, ds []float64,
) (bool, error) {
	for i, x := range xs {
		id := ins.nextID + uint64(i)
		cell, _ := h.Tria.FindCell(x)
		if !h.Tria.IsLocallyOwned(cell) {
			continue
		}

		d := ins.p.Diameter
		if ds != nil {
			d = ds[i]
		}
		m := Mass(d, ins.p.Density, ins.p.Dim)
		p := &particles.Particle{
			ID: id, Type: ins.p.Type, Diameter: d,
			Mass: m, Inertia: Inertia(m, d),
			X: x, V: ins.p.InitialVelocity, Omega: ins.p.InitialOmega,
		}
		if err := h.Insert(p); err != nil {
			return false, err
		}
	}

	ins.nextID += uint64(len(xs))
	ins.inserted += len(xs)
	return len(xs) > 0, nil
}

// UniformInserter places particles on a regular lattice inside the
// insertion box.
type UniformInserter struct {
	inserter
}

// Lattice returns the lattice points of the insertion box in x-fastest
// order, with a spacing of s and a margin of s/2 from the box edges.
func Lattice(b r3.Box, s float64, dim int) []r3.Vec {
	n := [3]int{
		int(math.Floor((b.Max.X-b.Min.X)/s + 1e-9)),
		int(math.Floor((b.Max.Y-b.Min.Y)/s + 1e-9)),
		1,
	}
	z0 := 0.0
	if dim == 3 {
		n[2] = int(math.Floor((b.Max.Z-b.Min.Z)/s + 1e-9))
		z0 = b.Min.Z + s/2
	}

	out := make([]r3.Vec, 0, n[0]*n[1]*n[2])
	for k := 0; k < n[2]; k++ {
		for j := 0; j < n[1]; j++ {
			for i := 0; i < n[0]; i++ {
				out = append(out, r3.Vec{
					X: b.Min.X + s/2 + float64(i)*s,
					Y: b.Min.Y + s/2 + float64(j)*s,
					Z: z0 + float64(k)*s,
				})
			}
		}
	}
	return out
}

func (ins *UniformInserter) Insert(
	h *particles.Handler, step int64,
) (bool, error) {
	n := ins.remaining(ins.p.TotalNumber)
	if n == 0 {
		return false, nil
	}

	xs := []r3.Vec{}
	for _, x := range Lattice(ins.p.Box, ins.spacing(), ins.p.Dim) {
		if len(xs) == n {
			break
		}
		if valid(h, x) {
			xs = append(xs, x)
		}
	}
	return ins.commit(h, xs, nil)
}

// NonUniformInserter places particles at random positions in the insertion
// box, keeping them at least one spacing apart.
type NonUniformInserter struct {
	inserter
	rng *RNG
}

func (ins *NonUniformInserter) Insert(
	h *particles.Handler, step int64,
) (bool, error) {
	n := ins.remaining(ins.p.TotalNumber)
	if n == 0 {
		return false, nil
	}

	xs := ins.rng.Scatter(
		ins.p.Box, ins.p.Dim, n, ins.spacing(), ins.p.MaxAttempts,
		func(x r3.Vec) bool { return valid(h, x) },
	)
	return ins.commit(h, xs, nil)
}

// FileInserter inserts particles listed in a whitespace-separated text
// table, one particle per row, in row order.
type FileInserter struct {
	inserter
	xs []r3.Vec
	ds []float64
}

func (ins *FileInserter) read() error {
	idx := []int{0, 1}
	if ins.p.Dim == 3 {
		idx = append(idx, 2)
	}
	if ins.p.FileDiameters {
		idx = append(idx, ins.p.Dim)
	}

	cols, err := table.ReadTable(ins.p.FileName, idx, nil)
	if err != nil {
		return l_error.Config("Could not read insertion file %s: %s",
			ins.p.FileName, err.Error())
	}

	ins.xs = make([]r3.Vec, len(cols[0]))
	for i := range ins.xs {
		ins.xs[i] = r3.Vec{X: cols[0][i], Y: cols[1][i]}
		if ins.p.Dim == 3 {
			ins.xs[i].Z = cols[2][i]
		}
	}
	if ins.p.FileDiameters {
		ins.ds = cols[ins.p.Dim]
	}
	return nil
}

func (ins *FileInserter) Insert(
	h *particles.Handler, step int64,
) (bool, error) {
	if ins.xs == nil {
		if err := ins.read(); err != nil {
			return false, err
		}
	}

	total := len(ins.xs)
	if ins.p.TotalNumber > 0 && ins.p.TotalNumber < total {
		total = ins.p.TotalNumber
	}
	n := ins.remaining(total)
	if n == 0 {
		return false, nil
	}

	xs := []r3.Vec{}
	var ds []float64
	start := ins.inserted
	for i := start; i < start+n; i++ {
		if !valid(h, ins.xs[i]) {
			continue
		}
		xs = append(xs, ins.xs[i])
		if ins.ds != nil {
			ds = append(ds, ins.ds[i])
		}
	}

	ok, err := ins.commit(h, xs, ds)
	// Rows outside the domain are consumed without being inserted.
	ins.inserted = start + n
	return ok, err
}
