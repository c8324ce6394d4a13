package search

/* This file contains the hand-off of contact histories between ranks. */

import (
	"math"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	"github.com/lethe-cfd/lethe-dem/lib/compress"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/particles"
)

// historyWords is the length of a shared history record: two IDs, the
// normal overlap and two vectors.
const historyWords = 9

// ShareGhostHistories sends the history of every ghost contact which the last
// ParticleParticleFine carried over from a local contact to the rank which
// owns the ghost. That rank adopts the flipped history if its own record of
// the pair is new, so both sides of a pair which has just been split between
// ranks continue from the same history. It is collective.
func ShareGhostHistories(contacts *PPContacts, h *particles.Handler) error {
	c := h.Tria.Comm
	send := make([][]uint64, c.Size())

	var err error
	for _, pc := range contacts.carried {
		g, ok := h.Ghost(pc.ID2)
		if !ok {
			err = l_error.Invariant(
				"Ghost contact %d-%d refers to a missing ghost.", pc.ID1, pc.ID2,
			)
			break
		}
		r := h.Tria.Owner(g.Cell)
		if r < 0 {
			err = l_error.Invariant(
				"Ghost %d sits in inactive cell %d.", g.ID, g.Cell,
			)
			break
		}
		send[r] = append(send[r],
			pc.ID1, pc.ID2, math.Float64bits(pc.NormalOverlap),
			math.Float64bits(pc.TangentialOverlap.X),
			math.Float64bits(pc.TangentialOverlap.Y),
			math.Float64bits(pc.TangentialOverlap.Z),
			math.Float64bits(pc.RollingOverlap.X),
			math.Float64bits(pc.RollingOverlap.Y),
			math.Float64bits(pc.RollingOverlap.Z),
		)
	}

	buf := &compress.Buffer{}
	blobs := make([][]byte, c.Size())
	for r := range send {
		if err != nil {
			break
		}
		if len(send[r]) > 0 {
			blobs[r], err = buf.Words(send[r])
		}
	}
	if err = comm.Agree(c, err); err != nil {
		return err
	}

	for _, b := range c.Alltoallv(blobs) {
		if len(b) == 0 {
			continue
		}
		var w []uint64
		if w, err = buf.Unwords(b); err != nil {
			break
		} else if len(w)%historyWords != 0 {
			err = l_error.Invariant(
				"History blob holds %d words, which is not a multiple of %d.",
				len(w), historyWords,
			)
			break
		}
		for i := 0; i < len(w); i += historyWords {
			adopt(contacts, w[i:i+historyWords])
		}
	}

	return comm.Agree(c, err)
}

// adopt copies a received history record onto this rank's record of the same
// pair, if that record is new. The sender's ghost is local here.
func adopt(contacts *PPContacts, w []uint64) {
	ghostID, localID := w[0], w[1]
	pc, ok := contacts.Ghost[localID][ghostID]
	if !ok || !contacts.fresh[pc] {
		return
	}

	f := make([]float64, historyWords-2)
	for i := range f {
		f[i] = math.Float64frombits(w[i+2])
	}
	sent := History{NormalOverlap: f[0]}
	sent.TangentialOverlap.X, sent.TangentialOverlap.Y = f[1], f[2]
	sent.TangentialOverlap.Z = f[3]
	sent.RollingOverlap.X, sent.RollingOverlap.Y = f[4], f[5]
	sent.RollingOverlap.Z = f[6]

	pc.History = sent.Flipped()
	delete(contacts.fresh, pc)
}
