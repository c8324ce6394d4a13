/*package boundary finds the walls of the simulation domain: the faces, edges
and corners of the active region of the mesh which particles can collide
with. The faces of a cell are walls if the cell on their far side is missing
or inactive. Lines and points are only tracked in 3D. A line is an edge of a
wall face and a point is a vertex of one; they are recorded for the cells
which touch them but have no wall faces of their own, which is where
particles can hit a convex corner of the domain without touching any face.*/
package boundary

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/mesh"
)

// Kind is the type of a boundary primitive.
type Kind int

const (
	FaceKind Kind = iota
	LineKind
	PointKind
)

func (k Kind) String() string {
	switch k {
	case FaceKind:
		return "face"
	case LineKind:
		return "line"
	case PointKind:
		return "point"
	}
	return "unknown"
}

// Face is a wall face of a cell.
type Face struct {
	ID   int
	Cell int
	// Normal is the unit normal pointing into the domain.
	Normal r3.Vec
	// Point is a point on the face.
	Point    r3.Vec
	Vertices []r3.Vec
	// Bounds is the bounding box of the face's vertices.
	Bounds r3.Box
}

// Line is an edge of a wall face, as seen by a cell without wall faces.
type Line struct {
	ID   int
	Cell int
	A, B r3.Vec
}

// Point is a vertex of a wall face, as seen by a cell without wall faces or
// lines.
type Point struct {
	ID   int
	Cell int
	X    r3.Vec
}

// Index holds the boundary primitives of every locally owned cell. It is
// only valid until the next repartition.
type Index struct {
	Dim    int
	Faces  map[int][]Face
	Lines  map[int][]Line
	Points map[int][]Point

	// FaceCells, LineCells and PointCells are the cells with at least one
	// primitive of each kind, in increasing order.
	FaceCells, LineCells, PointCells []int

	faceByID  map[int]*Face
	lineByID  map[int]*Line
	pointByID map[int]*Point
}

// Face returns the face with the given ID.
func (idx *Index) Face(id int) (*Face, bool) {
	f, ok := idx.faceByID[id]
	return f, ok
}

// Line returns the line with the given ID.
func (idx *Index) Line(id int) (*Line, bool) {
	l, ok := idx.lineByID[id]
	return l, ok
}

// Point returns the point with the given ID.
func (idx *Index) Point(id int) (*Point, bool) {
	p, ok := idx.pointByID[id]
	return p, ok
}

// Find builds the Index for a rank's Triangulation.
func Find(t *mesh.Triangulation) *Index {
	idx := &Index{
		Dim:       t.Dim,
		Faces:     map[int][]Face{},
		Lines:     map[int][]Line{},
		Points:    map[int][]Point{},
		faceByID:  map[int]*Face{},
		lineByID:  map[int]*Line{},
		pointByID: map[int]*Point{},
	}

	for _, cell := range t.LocallyOwnedCells() {
		if fs := cellFaces(t.Grid, cell); len(fs) > 0 {
			idx.Faces[cell] = fs
			idx.FaceCells = append(idx.FaceCells, cell)
		}
	}

	if t.Dim == 3 {
		findLinesAndPoints(t, idx)
	}

	for cell := range idx.Faces {
		fs := idx.Faces[cell]
		for i := range fs {
			idx.faceByID[fs[i].ID] = &fs[i]
		}
	}
	for cell := range idx.Lines {
		ls := idx.Lines[cell]
		for i := range ls {
			idx.lineByID[ls[i].ID] = &ls[i]
		}
	}
	for cell := range idx.Points {
		ps := idx.Points[cell]
		for i := range ps {
			idx.pointByID[ps[i].ID] = &ps[i]
		}
	}

	return idx
}

// cellFaces returns the wall faces of a cell. Face IDs are
// 6*cell + 2*axis + side, where side is 0 for the low face along the axis
// and 1 for the high one.
func cellFaces(g *mesh.Grid, cell int) []Face {
	c := g.Coords(cell)
	out := []Face{}
	for axis := 0; axis < g.Dim; axis++ {
		for side := 0; side < 2; side++ {
			nc := c
			nc[axis] += 2*side - 1
			if g.Active(g.Index(nc)) {
				continue
			}

			f := Face{ID: 6*cell + 2*axis + side, Cell: cell}
			f.Normal = axisVec(axis, float64(1-2*side))
			f.Vertices = faceVertices(g, c, axis, side)
			f.Point = f.Vertices[0]
			f.Bounds = r3.Box{Min: f.Vertices[0], Max: f.Vertices[0]}
			for _, v := range f.Vertices[1:] {
				f.Bounds.Min = minVec(f.Bounds.Min, v)
				f.Bounds.Max = maxVec(f.Bounds.Max, v)
			}
			out = append(out, f)
		}
	}
	return out
}

// faceVertexIndices returns the vertex indices of a face of the cell at c.
func faceVertexIndices(g *mesh.Grid, c [3]int, axis, side int) [][3]int {
	others := []int{}
	for k := 0; k < g.Dim; k++ {
		if k != axis {
			others = append(others, k)
		}
	}

	out := [][3]int{}
	for corner := 0; corner < 1<<uint(len(others)); corner++ {
		v := c
		v[axis] += side
		for i, k := range others {
			v[k] += (corner >> uint(i)) & 1
		}
		out = append(out, v)
	}
	return out
}

func faceVertices(g *mesh.Grid, c [3]int, axis, side int) []r3.Vec {
	vi := faceVertexIndices(g, c, axis, side)
	out := make([]r3.Vec, len(vi))
	for i := range vi {
		out[i] = g.Vertex(vi[i])
	}
	return out
}

// edge is a grid edge: the vertex with the lowest indices and the axis the
// edge runs along.
type edge struct {
	v    [3]int
	axis int
}

func (e edge) id(g *mesh.Grid) int { return 3*g.VertexID(e.v) + e.axis }

// cellEdges returns the 12 edges of a 3D cell.
func cellEdges(c [3]int) []edge {
	out := make([]edge, 0, 12)
	for axis := 0; axis < 3; axis++ {
		a, b := (axis+1)%3, (axis+2)%3
		for corner := 0; corner < 4; corner++ {
			v := c
			v[a] += corner & 1
			v[b] += corner >> 1
			out = append(out, edge{v, axis})
		}
	}
	return out
}

// findLinesAndPoints collects the edges and vertices of every wall face in
// the grid and assigns them to the owned cells without wall faces.
func findLinesAndPoints(t *mesh.Triangulation, idx *Index) {
	g := t.Grid
	wallEdges := map[edge]bool{}
	wallVerts := map[[3]int]bool{}

	// Faces of non-owned cells bound owned cells too, so the whole grid is
	// scanned.
	for cell := 0; cell < g.Cells(); cell++ {
		if !g.Active(cell) {
			continue
		}
		c := g.Coords(cell)
		for _, f := range cellFaces(g, cell) {
			axis, side := (f.ID%6)/2, f.ID%2
			for _, v := range faceVertexIndices(g, c, axis, side) {
				wallVerts[v] = true
			}
			for _, e := range cellEdges(c) {
				if e.axis != axis && e.v[axis] == c[axis]+side {
					wallEdges[e] = true
				}
			}
		}
	}

	for _, cell := range t.LocallyOwnedCells() {
		if _, ok := idx.Faces[cell]; ok {
			continue
		}
		c := g.Coords(cell)

		for _, e := range cellEdges(c) {
			if !wallEdges[e] {
				continue
			}
			end := e.v
			end[e.axis]++
			idx.Lines[cell] = append(idx.Lines[cell], Line{
				ID: e.id(g), Cell: cell, A: g.Vertex(e.v), B: g.Vertex(end),
			})
		}
		if _, ok := idx.Lines[cell]; ok {
			idx.LineCells = append(idx.LineCells, cell)
			continue
		}

		for corner := 0; corner < 8; corner++ {
			v := [3]int{c[0] + corner&1, c[1] + (corner>>1)&1, c[2] + corner>>2}
			if wallVerts[v] {
				idx.Points[cell] = append(idx.Points[cell], Point{
					ID: g.VertexID(v), Cell: cell, X: g.Vertex(v),
				})
			}
		}
		if _, ok := idx.Points[cell]; ok {
			idx.PointCells = append(idx.PointCells, cell)
		}
	}

	sort.Ints(idx.LineCells)
	sort.Ints(idx.PointCells)
}

func axisVec(axis int, x float64) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: x}
	case 1:
		return r3.Vec{Y: x}
	}
	return r3.Vec{Z: x}
}

func minVec(a, b r3.Vec) r3.Vec {
	if b.X < a.X {
		a.X = b.X
	}
	if b.Y < a.Y {
		a.Y = b.Y
	}
	if b.Z < a.Z {
		a.Z = b.Z
	}
	return a
}

func maxVec(a, b r3.Vec) r3.Vec {
	if b.X > a.X {
		a.X = b.X
	}
	if b.Y > a.Y {
		a.Y = b.Y
	}
	if b.Z > a.Z {
		a.Z = b.Z
	}
	return a
}
