package search

/* This file contains the particle-wall, particle-line and particle-point
searches. */

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/boundary"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/geom"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

// ParticleWallBroad pairs every local particle in a cell with wall faces
// with those faces and with the faces of adjacent locally owned cells.
func ParticleWallBroad(h *particles.Handler, idx *boundary.Index) WallCandidates {
	out := WallCandidates{}
	for _, cell := range idx.FaceCells {
		ps := h.InCell(cell)
		if len(ps) == 0 {
			continue
		}

		faces := []int{}
		for _, f := range idx.Faces[cell] {
			faces = append(faces, f.ID)
		}
		for _, nb := range h.Tria.Adjacent(cell) {
			if !h.Tria.IsLocallyOwned(nb) {
				continue
			}
			for _, f := range idx.Faces[nb] {
				faces = append(faces, f.ID)
			}
		}

		for _, p := range ps {
			out[p.ID] = append(out[p.ID], faces...)
		}
	}
	return out
}

// ParticleLineBroad pairs every local particle in a line cell with the
// cell's lines. It returns nothing in 2D.
func ParticleLineBroad(h *particles.Handler, idx *boundary.Index) WallCandidates {
	out := WallCandidates{}
	if idx.Dim != 3 {
		return out
	}
	for _, cell := range idx.LineCells {
		for _, p := range h.InCell(cell) {
			for _, l := range idx.Lines[cell] {
				out[p.ID] = append(out[p.ID], l.ID)
			}
		}
	}
	return out
}

// ParticlePointBroad pairs every local particle in a point cell with the
// cell's points. It returns nothing in 2D.
func ParticlePointBroad(h *particles.Handler, idx *boundary.Index) WallCandidates {
	out := WallCandidates{}
	if idx.Dim != 3 {
		return out
	}
	for _, cell := range idx.PointCells {
		for _, p := range h.InCell(cell) {
			for _, pt := range idx.Points[cell] {
				out[p.ID] = append(out[p.ID], pt.ID)
			}
		}
	}
	return out
}

// planeKey identifies the plane a face lies in.
type planeKey struct {
	normal r3.Vec
	offset float64
}

// ParticleWallFine replaces the face contacts with the candidates that
// overlap their face: the particle's center lies on the inner side of the
// face plane, closer than its radius, and its projection onto the plane
// falls within a radius of the face. An existing contact is also kept while
// the center lies less than a radius beyond the plane. Of several faces in the same plane,
// only the one nearest to the particle is kept.
func ParticleWallFine(
	cand WallCandidates, contacts *PWContacts,
	h *particles.Handler, idx *boundary.Index,
) error {
	out := map[uint64]map[int]*PWContact{}

	for id, faces := range cand {
		p, ok := h.Particle(id)
		if !ok {
			return l_error.Invariant("Wall candidate particle %d is not local.", id)
		}
		r := p.Radius()

		best := map[planeKey]*boundary.Face{}
		bestDist := map[planeKey]float64{}
		for _, fid := range faces {
			f, ok := idx.Face(fid)
			if !ok {
				return l_error.Invariant("Face %d is not in the boundary index.", fid)
			}

			// A contact which already exists survives the particle's
			// center crossing the plane, so that its force pushes the
			// particle back.
			d := geom.PlaneDistance(p.X, f.Point, f.Normal)
			_, existing := contacts.Faces[id][fid]
			if d >= r || d <= -r || (d < 0 && !existing) {
				continue
			}
			proj := p.X.Sub(f.Normal.Scale(d))
			dist := geom.BoxDistance(proj, f.Bounds, idx.Dim)
			if dist > r {
				continue
			}

			key := planeKey{f.Normal, f.Point.Dot(f.Normal)}
			if prev, ok := best[key]; !ok || dist < bestDist[key] ||
				(dist == bestDist[key] && f.ID < prev.ID) {
				best[key], bestDist[key] = f, dist
			}
		}

		for _, f := range best {
			d := geom.PlaneDistance(p.X, f.Point, f.Normal)
			wc := keep(contacts.Faces, id, f.ID, boundary.FaceKind)
			wc.Normal = f.Normal
			wc.Point = p.X.Sub(f.Normal.Scale(d))
			store(out, wc)
		}
	}

	contacts.Faces = out
	contacts.list = nil
	return nil
}

// ParticleLineFine replaces the line contacts with the candidates closer to
// their segment than the particle's radius.
func ParticleLineFine(
	cand WallCandidates, contacts *PWContacts,
	h *particles.Handler, idx *boundary.Index,
) error {
	out := map[uint64]map[int]*PWContact{}
	for id, lines := range cand {
		p, ok := h.Particle(id)
		if !ok {
			return l_error.Invariant("Line candidate particle %d is not local.", id)
		}
		for _, lid := range lines {
			l, ok := idx.Line(lid)
			if !ok {
				return l_error.Invariant("Line %d is not in the boundary index.", lid)
			}
			x := geom.ClosestOnSegment(p.X, l.A, l.B)
			pointContact(out, contacts.Lines, p, lid, x, boundary.LineKind)
		}
	}

	contacts.Lines = out
	contacts.list = nil
	return nil
}

// ParticlePointFine replaces the point contacts with the candidates closer
// to their point than the particle's radius.
func ParticlePointFine(
	cand WallCandidates, contacts *PWContacts,
	h *particles.Handler, idx *boundary.Index,
) error {
	out := map[uint64]map[int]*PWContact{}
	for id, points := range cand {
		p, ok := h.Particle(id)
		if !ok {
			return l_error.Invariant("Point candidate particle %d is not local.", id)
		}
		for _, pid := range points {
			pt, ok := idx.Point(pid)
			if !ok {
				return l_error.Invariant("Point %d is not in the boundary index.", pid)
			}
			pointContact(out, contacts.Points, p, pid, pt.X, boundary.PointKind)
		}
	}

	contacts.Points = out
	contacts.list = nil
	return nil
}

// pointContact records a contact between p and the primitive whose closest
// point to p is x, if they overlap.
func pointContact(
	out, old map[uint64]map[int]*PWContact, p *particles.Particle,
	prim int, x r3.Vec, kind boundary.Kind,
) {
	dx := p.X.Sub(x)
	if geom.Norm2(dx) >= p.Radius()*p.Radius() {
		return
	}
	wc := keep(old, p.ID, prim, kind)
	wc.Normal = geom.Unit(dx)
	wc.Point = x
	store(out, wc)
}

// keep returns the existing contact between a particle and a primitive, or
// a new one with no history.
func keep(
	old map[uint64]map[int]*PWContact, id uint64, prim int, kind boundary.Kind,
) *PWContact {
	if wc, ok := old[id][prim]; ok {
		return wc
	}
	return &PWContact{ID: id, Primitive: prim, Kind: kind}
}

func store(m map[uint64]map[int]*PWContact, wc *PWContact) {
	if m[wc.ID] == nil {
		m[wc.ID] = map[int]*PWContact{}
	}
	m[wc.ID][wc.Primitive] = wc
}
