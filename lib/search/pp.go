package search

/* This file contains the particle-particle searches. */

import (
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/geom"
	"github.com/lethe-cfd/lethe-dem/lib/neighbors"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

// ParticleParticleBroad lists every pair of particles which share a cell or
// sit in adjacent cells. Local candidates are keyed by the lower ID and
// ghost candidates by the local ID. No pair appears twice and no particle is
// paired with itself. The result only depends on the handler's buckets.
func ParticleParticleBroad(
	h *particles.Handler, l *neighbors.List,
) (local, ghost Candidates) {
	local, ghost = Candidates{}, Candidates{}

	for _, cell := range l.Cells {
		ps := h.InCell(cell)
		if len(ps) == 0 {
			continue
		}

		for i := range ps {
			for j := i + 1; j < len(ps); j++ {
				local.add(ps[i].ID, ps[j].ID)
			}
		}

		for _, nb := range l.Local[cell] {
			for _, q := range h.InCell(nb) {
				for _, p := range ps {
					local.add(p.ID, q.ID)
				}
			}
		}

		for _, nb := range l.Ghost[cell] {
			for _, q := range h.GhostsInCell(nb) {
				for _, p := range ps {
					ghost[p.ID] = append(ghost[p.ID], q.ID)
				}
			}
		}
	}

	return local, ghost
}

// add records a local pair under its lower ID.
func (c Candidates) add(id1, id2 uint64) {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	c[id1] = append(c[id1], id2)
}

// Len returns the number of pairs in c.
func (c Candidates) Len() int {
	n := 0
	for _, partners := range c {
		n += len(partners)
	}
	return n
}

// ParticleParticleFine replaces the contacts with the candidate pairs whose
// squared center distance is below threshold. Pairs which were already in
// contact keep their history, new pairs start with none, and everything else
// is dropped. A pair which moves between the local and ghost contacts keeps
// its history too.
func ParticleParticleFine(
	local, ghost Candidates, contacts *PPContacts,
	h *particles.Handler, threshold float64,
) error {
	oldLocal, oldGhost := contacts.Local, contacts.Ghost

	var err error
	contacts.Local, _, _, err = reconcile(
		local, oldLocal, oldGhost, h, threshold, h.Particle,
	)
	if err != nil {
		return err
	}
	contacts.Ghost, contacts.carried, contacts.fresh, err = reconcile(
		ghost, oldGhost, oldLocal, h, threshold, h.Ghost,
	)
	if err != nil {
		return err
	}
	contacts.localList, contacts.ghostList = nil, nil
	return nil
}

// carriedHistory returns the history of the pair (id1, id2) if it is recorded in
// other. A pair recorded in the opposite order has its history flipped so
// that it is seen from id1.
func carriedHistory(
	other map[uint64]map[uint64]*PPContact, id1, id2 uint64,
) (History, bool) {
	if pc, ok := other[id1][id2]; ok {
		return pc.History, true
	}
	if pc, ok := other[id2][id1]; ok {
		return pc.History.Flipped(), true
	}
	return History{}, false
}

// reconcile builds the new contact map for one container. It also returns
// the new contacts whose history was carried from other and the new contacts
// which start without any history.
func reconcile(
	cand Candidates, old, other map[uint64]map[uint64]*PPContact,
	h *particles.Handler, threshold float64,
	partner func(uint64) (*particles.Particle, bool),
) (
	out map[uint64]map[uint64]*PPContact,
	carriedOver []*PPContact, fresh map[*PPContact]bool, err error,
) {
	out = map[uint64]map[uint64]*PPContact{}
	fresh = map[*PPContact]bool{}

	for id1, partners := range cand {
		p1, ok := h.Particle(id1)
		if !ok {
			return nil, nil, nil, l_error.Invariant(
				"Candidate particle %d is not local.", id1,
			)
		}

		for _, id2 := range partners {
			p2, ok := partner(id2)
			if !ok {
				return nil, nil, nil, l_error.Invariant(
					"Candidate partner %d of particle %d does not exist.",
					id2, id1,
				)
			}
			if geom.Dist2(p1.X, p2.X) >= threshold {
				continue
			}

			pc, ok := old[id1][id2]
			if !ok {
				pc = &PPContact{ID1: id1, ID2: id2}
				if pc.History, ok = carriedHistory(other, id1, id2); ok {
					carriedOver = append(carriedOver, pc)
				} else {
					fresh[pc] = true
				}
			}
			if out[id1] == nil {
				out[id1] = map[uint64]*PPContact{}
			}
			out[id1][id2] = pc
		}
	}

	return out, carriedOver, fresh, nil
}
