package particles

/* This file contains Handler, the particle container. */

import (
	"sort"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	"github.com/lethe-cfd/lethe-dem/lib/compress"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/geom"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
)

// Handler owns the particles of a single rank. Local particles are mutable
// and bucketed by cell. Ghost particles are read-only copies of particles
// owned by other ranks, bucketed by the ghost cell they were in when they
// were sent.
type Handler struct {
	Tria *mesh.Triangulation

	local      map[uint64]*Particle
	cells      map[int][]*Particle
	ghosts     map[uint64]*Particle
	ghostCells map[int][]*Particle

	// ghostSend[r] lists the local particles sent to rank r during the last
	// ghost exchange.
	ghostSend [][]*Particle

	sorted []*Particle
	buf    compress.Buffer
}

// NewHandler creates an empty Handler for the given rank's Triangulation.
func NewHandler(tria *mesh.Triangulation) *Handler {
	h := &Handler{Tria: tria}
	h.local = map[uint64]*Particle{}
	h.clearBuckets()
	h.clearGhosts()
	return h
}

func (h *Handler) clearBuckets() {
	h.cells = map[int][]*Particle{}
	h.sorted = nil
}

func (h *Handler) clearGhosts() {
	h.ghosts = map[uint64]*Particle{}
	h.ghostCells = map[int][]*Particle{}
	h.ghostSend = make([][]*Particle, h.Tria.Comm.Size())
}

// Insert adds a particle to the rank. The particle must lie inside a locally
// owned cell. An ID that already exists on this rank is an invariant
// violation.
func (h *Handler) Insert(p *Particle) error {
	if _, ok := h.local[p.ID]; ok {
		return l_error.Invariant("Particle ID %d was inserted twice.", p.ID)
	}

	cell, ok := h.Tria.FindCell(p.X)
	if !ok || !h.Tria.IsLocallyOwned(cell) {
		return l_error.Invariant(
			"Particle %d at %v was inserted on rank %d, which does not own "+
				"its cell.", p.ID, p.X, h.Tria.Rank(),
		)
	}

	p.Cell = cell
	h.local[p.ID] = p
	h.cells[cell] = append(h.cells[cell], p)
	h.sorted = nil
	return nil
}

// Particle returns the local particle with the given ID.
func (h *Handler) Particle(id uint64) (*Particle, bool) {
	p, ok := h.local[id]
	return p, ok
}

// Ghost returns the ghost particle with the given ID.
func (h *Handler) Ghost(id uint64) (*Particle, bool) {
	p, ok := h.ghosts[id]
	return p, ok
}

// Particles returns every local particle in increasing ID order. The slice
// is shared between calls and must not be modified.
func (h *Handler) Particles() []*Particle {
	if h.sorted == nil {
		h.sorted = make([]*Particle, 0, len(h.local))
		for _, p := range h.local {
			h.sorted = append(h.sorted, p)
		}
		sortByID(h.sorted)
	}
	return h.sorted
}

// InCell returns the local particles in a cell in increasing ID order.
func (h *Handler) InCell(cell int) []*Particle { return h.cells[cell] }

// GhostsInCell returns the ghost particles in a cell in increasing ID order.
func (h *Handler) GhostsInCell(cell int) []*Particle { return h.ghostCells[cell] }

// NParticles returns the number of local particles.
func (h *Handler) NParticles() int { return len(h.local) }

// NGhosts returns the number of ghost particles.
func (h *Handler) NGhosts() int { return len(h.ghosts) }

// NParticlesInCell returns the number of local particles in a cell.
func (h *Handler) NParticlesInCell(cell int) int { return len(h.cells[cell]) }

// NGlobalParticles returns the number of particles on all ranks. It is
// collective.
func (h *Handler) NGlobalParticles() int {
	return int(comm.AllreduceSumInt64(h.Tria.Comm, int64(len(h.local))))
}

// ZeroForces clears the force and torque of every local particle.
func (h *Handler) ZeroForces() {
	for _, p := range h.local {
		p.ZeroForces()
	}
}

// rebucket rebuilds the cell buckets from the local store.
func (h *Handler) rebucket() {
	h.clearBuckets()
	for _, p := range h.Particles() {
		h.cells[p.Cell] = append(h.cells[p.Cell], p)
	}
}

// SortIntoCells relocates every local particle after motion. Particles which
// moved into another rank's cell migrate there. A particle whose center
// left every active cell stays in its old cell while it still overlaps it,
// and is removed otherwise. It is collective and returns the number of
// particles this rank removed.
func (h *Handler) SortIntoCells() (int, error) {
	rank := h.Tria.Rank()
	removed := 0

	send := Split(h.Particles(), h.Tria.Comm.Size(), func(p *Particle) int {
		cell, ok := h.Tria.FindCell(p.X)
		if !ok && p.Cell >= 0 && h.Tria.Owner(p.Cell) >= 0 &&
			geom.BoxDistance(p.X, h.Tria.CellBox(p.Cell), h.Tria.Dim) < p.Radius() {
			cell, ok = p.Cell, true
		}
		if !ok {
			delete(h.local, p.ID)
			removed++
			return -1
		}
		p.Cell = cell
		if owner := h.Tria.Owner(cell); owner != rank {
			delete(h.local, p.ID)
			return owner
		}
		return -1
	})
	h.sorted = nil

	recv, err := exchange(h.Tria.Comm, &h.buf, send)
	if err == nil {
		err = h.adopt(recv)
	}
	h.rebucket()

	return removed, comm.Agree(h.Tria.Comm, err)
}

// adopt adds received particles to the local store.
func (h *Handler) adopt(ps []*Particle) error {
	rank := h.Tria.Rank()
	for _, p := range ps {
		if _, ok := h.local[p.ID]; ok {
			return l_error.Invariant(
				"Particle ID %d arrived on rank %d, which already has it.",
				p.ID, rank,
			)
		} else if h.Tria.Owner(p.Cell) != rank {
			return l_error.Invariant(
				"Particle %d in cell %d was sent to rank %d, but cell is "+
					"owned by %d.", p.ID, p.Cell, rank, h.Tria.Owner(p.Cell),
			)
		}
		h.local[p.ID] = p
	}
	h.sorted = nil
	return nil
}

// ExchangeGhostParticles replaces the ghost store. Every local particle in a
// cell adjacent to another rank's cells is copied to that rank. It is
// collective.
func (h *Handler) ExchangeGhostParticles() error {
	h.clearGhosts()
	rank, size := h.Tria.Rank(), h.Tria.Comm.Size()

	for _, cell := range h.Tria.LocallyOwnedCells() {
		ps := h.cells[cell]
		if len(ps) == 0 {
			continue
		}

		to := make([]bool, size)
		for _, nb := range h.Tria.Adjacent(cell) {
			if owner := h.Tria.Owner(nb); owner != rank {
				to[owner] = true
			}
		}
		for r := range to {
			if to[r] {
				h.ghostSend[r] = append(h.ghostSend[r], ps...)
			}
		}
	}

	recv, err := exchange(h.Tria.Comm, &h.buf, h.ghostSend)
	if err == nil {
		sortByID(recv)
		for _, g := range recv {
			if _, ok := h.local[g.ID]; ok {
				err = l_error.Invariant(
					"Ghost particle %d is also local on rank %d.", g.ID, rank,
				)
				break
			}
			h.ghosts[g.ID] = g
			h.ghostCells[g.Cell] = append(h.ghostCells[g.Cell], g)
		}
	}

	return comm.Agree(h.Tria.Comm, err)
}

// UpdateGhostParticles refreshes the kinematics of the ghosts received during
// the last ExchangeGhostParticles, without changing which particles are
// ghosts. It is collective. It is used between contact detection steps, when
// particles have not been re-sorted.
func (h *Handler) UpdateGhostParticles() error {
	recv, err := exchange(h.Tria.Comm, &h.buf, h.ghostSend)
	if err == nil {
		for _, g := range recv {
			old, ok := h.ghosts[g.ID]
			if !ok {
				err = l_error.Invariant(
					"Rank %d received an update for unknown ghost %d.",
					h.Tria.Rank(), g.ID,
				)
				break
			}
			old.X, old.V, old.Omega = g.X, g.V, g.Omega
		}
	}

	return comm.Agree(h.Tria.Comm, err)
}

// BeforeRepartition packs every local particle into a blob. The local store
// stays readable, so cell weights can still be computed from it, until the
// blob is passed to AfterRepartition once the Triangulation has been
// repartitioned.
func (h *Handler) BeforeRepartition() ([]byte, error) {
	return Encode(&h.buf, h.Particles())
}

// AfterRepartition replaces the local store with the particles packed by
// BeforeRepartition, after sending each to the new owner of its cell. Ghosts
// are dropped. It is collective.
func (h *Handler) AfterRepartition(blob []byte) error {
	h.local = map[uint64]*Particle{}
	h.clearBuckets()
	h.clearGhosts()

	ps, err := Decode(&h.buf, blob)
	if err = comm.Agree(h.Tria.Comm, err); err != nil {
		return err
	}

	send := Split(ps, h.Tria.Comm.Size(), func(p *Particle) int {
		return h.Tria.Owner(p.Cell)
	})
	recv, err := exchange(h.Tria.Comm, &h.buf, send)
	if err == nil {
		err = h.adopt(recv)
	}
	h.rebucket()

	return comm.Agree(h.Tria.Comm, err)
}

func sortByID(ps []*Particle) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}
