/*package search finds contacts. The broad searches list candidate pairs from
cell adjacency alone; the fine searches filter candidates geometrically and
reconcile the survivors with the persistent contacts of the previous
detection step, so that contacts which persist keep their history.*/
package search

/* This file contains the contact record types. */

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/boundary"
)

// Candidates maps a particle ID to the IDs of the particles it might be in
// contact with. Candidates are only valid until the fine search which
// consumes them.
type Candidates map[uint64][]uint64

// WallCandidates maps a particle ID to the IDs of the boundary primitives it
// might be in contact with.
type WallCandidates map[uint64][]int

// History is the state a contact carries between steps.
type History struct {
	NormalOverlap float64
	// TangentialOverlap is the accumulated tangential displacement since the
	// contact began.
	TangentialOverlap r3.Vec
	// RollingOverlap is the accumulated relative rotation since the contact
	// began.
	RollingOverlap r3.Vec
}

// Reset zeroes the history.
func (h *History) Reset() { *h = History{} }

// Flipped returns the history as seen from the other body of the contact.
func (h History) Flipped() History {
	return History{
		NormalOverlap:     h.NormalOverlap,
		TangentialOverlap: h.TangentialOverlap.Scale(-1),
		RollingOverlap:    h.RollingOverlap.Scale(-1),
	}
}

// PPContact is a persistent contact between two particles.
type PPContact struct {
	ID1, ID2 uint64
	History
}

// PPContacts holds a rank's particle-particle contacts. Local contacts are
// between two local particles and are keyed by the lower ID first. Ghost
// contacts are between a local and a ghost particle and are keyed by the
// local ID first. There is at most one contact per pair.
type PPContacts struct {
	Local map[uint64]map[uint64]*PPContact
	Ghost map[uint64]map[uint64]*PPContact

	localList, ghostList []*PPContact
	// carried holds the ghost contacts of the last fine search which took
	// their history from a local contact, and fresh those which started
	// without one.
	carried []*PPContact
	fresh   map[*PPContact]bool
}

// NewPPContacts returns an empty set of contacts.
func NewPPContacts() *PPContacts {
	return &PPContacts{
		Local: map[uint64]map[uint64]*PPContact{},
		Ghost: map[uint64]map[uint64]*PPContact{},
	}
}

// LocalList returns the local contacts ordered by ID1, then ID2. It must not
// be modified.
func (c *PPContacts) LocalList() []*PPContact {
	if c.localList == nil {
		c.localList = sortedPP(c.Local)
	}
	return c.localList
}

// GhostList returns the ghost contacts ordered by ID1, then ID2. It must not
// be modified.
func (c *PPContacts) GhostList() []*PPContact {
	if c.ghostList == nil {
		c.ghostList = sortedPP(c.Ghost)
	}
	return c.ghostList
}

// Len returns the number of local and ghost contacts.
func (c *PPContacts) Len() (local, ghost int) {
	return len(c.LocalList()), len(c.GhostList())
}

// Find returns the contact between two particles in either container.
func (c *PPContacts) Find(id1, id2 uint64) (*PPContact, bool) {
	for _, m := range []map[uint64]map[uint64]*PPContact{c.Local, c.Ghost} {
		if pc, ok := m[id1][id2]; ok {
			return pc, true
		}
		if pc, ok := m[id2][id1]; ok {
			return pc, true
		}
	}
	return nil, false
}

// Clear removes every contact.
func (c *PPContacts) Clear() { *c = *NewPPContacts() }

func sortedPP(m map[uint64]map[uint64]*PPContact) []*PPContact {
	out := []*PPContact{}
	for _, row := range m {
		for _, pc := range row {
			out = append(out, pc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID1 != out[j].ID1 {
			return out[i].ID1 < out[j].ID1
		}
		return out[i].ID2 < out[j].ID2
	})
	return out
}

// PWContact is a persistent contact between a particle and a boundary
// primitive.
type PWContact struct {
	ID        uint64
	Primitive int
	Kind      boundary.Kind
	// Normal is the unit vector from the contact point to the particle's
	// center.
	Normal r3.Vec
	// Point is the contact point on the primitive.
	Point r3.Vec
	History
}

// PWContacts holds a rank's particle-boundary contacts, keyed by particle ID
// and then primitive ID.
type PWContacts struct {
	Faces, Lines, Points map[uint64]map[int]*PWContact

	list []*PWContact
}

// NewPWContacts returns an empty set of contacts.
func NewPWContacts() *PWContacts {
	return &PWContacts{
		Faces:  map[uint64]map[int]*PWContact{},
		Lines:  map[uint64]map[int]*PWContact{},
		Points: map[uint64]map[int]*PWContact{},
	}
}

// List returns every contact ordered by kind, particle ID and primitive ID.
// It must not be modified.
func (c *PWContacts) List() []*PWContact {
	if c.list == nil {
		c.list = []*PWContact{}
		for _, m := range []map[uint64]map[int]*PWContact{
			c.Faces, c.Lines, c.Points,
		} {
			start := len(c.list)
			for _, row := range m {
				for _, wc := range row {
					c.list = append(c.list, wc)
				}
			}
			part := c.list[start:]
			sort.Slice(part, func(i, j int) bool {
				if part[i].ID != part[j].ID {
					return part[i].ID < part[j].ID
				}
				return part[i].Primitive < part[j].Primitive
			})
		}
	}
	return c.list
}

// Clear removes every contact.
func (c *PWContacts) Clear() { *c = *NewPWContacts() }
