/*package mesh contains the background mesh that particles are bucketed into
and the per-rank view of how that mesh is partitioned.

The mesh is a structured box grid. Individual blocks of cells can be
deactivated to carve obstacles out of the domain, and the faces between
active and inactive (or missing) cells are the walls particles collide with.
Cells are identified by their linear index into the grid, with x varying
fastest.
*/
package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// Grid is a structured grid of cells covering a box. In 2D, N[2] is 1 and
// the z extent of the box only sets the depth of the cells.
type Grid struct {
	Box   r3.Box
	Dim   int
	N     [3]int
	Width r3.Vec

	active  []bool
	nActive int
}

// NewGrid creates a grid over box with n cells on each side. Each level of
// refinement doubles the number of cells along every axis. Cells whose
// centers lie inside any of the obstacle boxes are inactive.
func NewGrid(
	box r3.Box, n [3]int, dim, refinement int, obstacles []r3.Box,
) (*Grid, error) {
	if dim != 2 && dim != 3 {
		return nil, l_error.Config("Dimension must be 2 or 3, not %d.", dim)
	} else if refinement < 0 {
		return nil, l_error.Config(
			"InitialRefinement must be non-negative, not %d.", refinement,
		)
	}

	if dim == 2 {
		n[2] = 1
	}
	for k := 0; k < dim; k++ {
		if n[k] < 1 {
			return nil, l_error.Config("Mesh has %d cells along axis %d.", n[k], k)
		}
		n[k] <<= uint(refinement)
	}

	size := box.Max.Sub(box.Min)
	if size.X <= 0 || size.Y <= 0 || (dim == 3 && size.Z <= 0) {
		return nil, l_error.Config("Mesh box %v has no volume.", box)
	}

	g := &Grid{
		Box: box, Dim: dim, N: n,
		Width: r3.Vec{
			X: size.X / float64(n[0]),
			Y: size.Y / float64(n[1]),
			Z: size.Z / float64(n[2]),
		},
	}

	g.active = make([]bool, g.Cells())
	for id := range g.active {
		c := g.Center(id)
		g.active[id] = true
		for _, ob := range obstacles {
			if inside(c, ob, dim) {
				g.active[id] = false
				break
			}
		}
		if g.active[id] {
			g.nActive++
		}
	}

	if g.nActive == 0 {
		return nil, l_error.Config("Obstacles deactivate every cell in the mesh.")
	}

	return g, nil
}

func inside(x r3.Vec, b r3.Box, dim int) bool {
	if x.X < b.Min.X || x.X > b.Max.X || x.Y < b.Min.Y || x.Y > b.Max.Y {
		return false
	}
	return dim == 2 || (x.Z >= b.Min.Z && x.Z <= b.Max.Z)
}

// Cells returns the total number of cells, active or not.
func (g *Grid) Cells() int { return g.N[0] * g.N[1] * g.N[2] }

// ActiveCells returns the number of active cells.
func (g *Grid) ActiveCells() int { return g.nActive }

// Active returns true if the cell exists and has not been removed by an
// obstacle and false otherwise.
func (g *Grid) Active(id int) bool {
	return id >= 0 && id < len(g.active) && g.active[id]
}

// Index converts a 3-index to a cell ID. It returns -1 if the index is
// outside the grid.
func (g *Grid) Index(c [3]int) int {
	for k := 0; k < 3; k++ {
		if c[k] < 0 || c[k] >= g.N[k] {
			return -1
		}
	}
	return c[0] + c[1]*g.N[0] + c[2]*g.N[0]*g.N[1]
}

// Coords converts a cell ID to its 3-index.
func (g *Grid) Coords(id int) [3]int {
	nxy := g.N[0] * g.N[1]
	return [3]int{id % g.N[0], (id % nxy) / g.N[0], id / nxy}
}

// Vertex returns the position of the grid vertex with the given 3-index.
// Vertex indices run from 0 to N[k] inclusive.
func (g *Grid) Vertex(v [3]int) r3.Vec {
	return r3.Vec{
		X: g.Box.Min.X + float64(v[0])*g.Width.X,
		Y: g.Box.Min.Y + float64(v[1])*g.Width.Y,
		Z: g.Box.Min.Z + float64(v[2])*g.Width.Z,
	}
}

// VertexID returns a unique ID for the grid vertex with the given 3-index.
func (g *Grid) VertexID(v [3]int) int {
	return v[0] + v[1]*(g.N[0]+1) + v[2]*(g.N[0]+1)*(g.N[1]+1)
}

// CellBox returns the bounding box of a cell.
func (g *Grid) CellBox(id int) r3.Box {
	c := g.Coords(id)
	return r3.Box{
		Min: g.Vertex(c),
		Max: g.Vertex([3]int{c[0] + 1, c[1] + 1, c[2] + 1}),
	}
}

// Center returns the center of a cell.
func (g *Grid) Center(id int) r3.Vec {
	b := g.CellBox(id)
	return b.Min.Add(b.Max).Scale(0.5)
}

// FindCell returns the active cell containing x. It returns -1 and false if
// x lies outside the grid or inside an inactive cell.
func (g *Grid) FindCell(x r3.Vec) (int, bool) {
	d := x.Sub(g.Box.Min)
	c := [3]int{
		int(math.Floor(d.X / g.Width.X)),
		int(math.Floor(d.Y / g.Width.Y)),
		0,
	}
	if g.Dim == 3 {
		c[2] = int(math.Floor(d.Z / g.Width.Z))
	}

	id := g.Index(c)
	if id < 0 || !g.active[id] {
		return -1, false
	}
	return id, true
}

// Adjacent returns the active cells which share at least one vertex with
// cell id, in increasing ID order. The cell itself is not included.
func (g *Grid) Adjacent(id int) []int {
	c := g.Coords(id)
	dz := 0
	if g.Dim == 3 {
		dz = 1
	}

	out := []int{}
	for k := -dz; k <= dz; k++ {
		for j := -1; j <= 1; j++ {
			for i := -1; i <= 1; i++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				nb := g.Index([3]int{c[0] + i, c[1] + j, c[2] + k})
				if nb >= 0 && g.active[nb] {
					out = append(out, nb)
				}
			}
		}
	}
	return out
}

// MinWidth returns the smallest cell width along any of the grid's axes.
func (g *Grid) MinWidth() float64 {
	w := math.Min(g.Width.X, g.Width.Y)
	if g.Dim == 3 {
		w = math.Min(w, g.Width.Z)
	}
	return w
}

// mortonKey interleaves the bits of a 3-index so that sorting by key orders
// cells along a Z-order curve.
func mortonKey(c [3]int) uint64 {
	key := uint64(0)
	for b := uint(0); b < 21; b++ {
		for k := uint(0); k < 3; k++ {
			key |= ((uint64(c[k]) >> b) & 1) << (3*b + k)
		}
	}
	return key
}
