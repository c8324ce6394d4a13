package mesh

/* This file contains the per-rank view of the partitioned grid. */

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// CellBaseWeight is the cost every active cell carries during
// repartitioning, on top of whatever its WeightFunc returns.
const CellBaseWeight = 1000

// CellStatus describes what will happen to a cell during a repartition.
type CellStatus int

const (
	CellPersist CellStatus = iota
	CellRefine
	CellCoarsen
	CellInvalid
)

func (s CellStatus) String() string {
	switch s {
	case CellPersist:
		return "persist"
	case CellRefine:
		return "refine"
	case CellCoarsen:
		return "coarsen"
	case CellInvalid:
		return "invalid"
	}
	return "unknown"
}

// WeightFunc returns the load-balancing weight of a cell.
type WeightFunc func(cell int, status CellStatus) (int64, error)

// Triangulation is a single rank's view of how the grid is divided between
// ranks. Every rank holds the full ownership table, but only reads particle
// data for its own cells and the ghost cells adjacent to them.
type Triangulation struct {
	*Grid
	Comm comm.Comm

	owner  []int // -1 for inactive cells
	morton []int // active cells in Z-order

	local, ghost []int
}

// NewTriangulation partitions g between the ranks of c. Each rank receives a
// contiguous run of the Z-ordered active cells, with equal cell counts.
func NewTriangulation(g *Grid, c comm.Comm) *Triangulation {
	t := &Triangulation{Grid: g, Comm: c}

	t.morton = make([]int, 0, g.ActiveCells())
	for id := 0; id < g.Cells(); id++ {
		if g.Active(id) {
			t.morton = append(t.morton, id)
		}
	}
	sort.SliceStable(t.morton, func(i, j int) bool {
		return mortonKey(g.Coords(t.morton[i])) <
			mortonKey(g.Coords(t.morton[j]))
	})

	cost := make([]int64, len(t.morton))
	for i := range cost {
		cost[i] = 1
	}

	t.owner = make([]int, g.Cells())
	for i := range t.owner {
		t.owner[i] = -1
	}
	t.assign(cost)

	return t
}

// assign splits the Z-ordered cells into Size() contiguous chunks of
// near-equal cumulative cost and rebuilds the local and ghost cell lists.
// Each chunk closes once it holds its share of the cost that was left when it
// opened, so one very heavy cell does not starve the ranks after it. It
// returns true if any cell changed owner.
func (t *Triangulation) assign(cost []int64) bool {
	remaining := int64(0)
	for _, c := range cost {
		remaining += c
	}

	size := t.Comm.Size()
	changed := false
	rank, chunk := 0, int64(0)
	for i, id := range t.morton {
		if t.owner[id] != rank {
			changed = true
			t.owner[id] = rank
		}

		chunk += cost[i]
		if rank < size-1 && chunk*int64(size-rank) >= remaining {
			remaining -= chunk
			rank, chunk = rank+1, 0
		}
	}

	t.buildCellLists()
	return changed
}

func (t *Triangulation) buildCellLists() {
	rank := t.Comm.Rank()
	t.local, t.ghost = []int{}, []int{}
	isGhost := map[int]bool{}

	for id := 0; id < t.Cells(); id++ {
		if t.owner[id] != rank {
			continue
		}
		t.local = append(t.local, id)
		for _, nb := range t.Adjacent(id) {
			if t.owner[nb] != rank {
				isGhost[nb] = true
			}
		}
	}

	for id := range isGhost {
		t.ghost = append(t.ghost, id)
	}
	sort.Ints(t.ghost)
}

// Rank returns the rank of this Triangulation.
func (t *Triangulation) Rank() int { return t.Comm.Rank() }

// Owner returns the rank which owns a cell, or -1 if the cell is inactive.
func (t *Triangulation) Owner(id int) int {
	if id < 0 || id >= len(t.owner) {
		return -1
	}
	return t.owner[id]
}

// IsLocallyOwned returns true if this rank owns the cell and false
// otherwise.
func (t *Triangulation) IsLocallyOwned(id int) bool {
	return t.Owner(id) == t.Comm.Rank()
}

// IsGhost returns true if the cell is owned by another rank and is adjacent
// to a cell owned by this one and false otherwise.
func (t *Triangulation) IsGhost(id int) bool {
	i := sort.SearchInts(t.ghost, id)
	return i < len(t.ghost) && t.ghost[i] == id
}

// LocallyOwnedCells returns the cells owned by this rank in increasing
// order. The slice must not be modified.
func (t *Triangulation) LocallyOwnedCells() []int { return t.local }

// GhostCells returns the cells which are owned by other ranks but are
// adjacent to this rank's cells, in increasing order. The slice must not be
// modified.
func (t *Triangulation) GhostCells() []int { return t.ghost }

// Children returns the cells a cell would be coarsened from. The structured
// grid is never adaptively refined, so this is always empty.
func (t *Triangulation) Children(id int) []int { return nil }

// Subdomain returns the owning rank of every cell (-1 for inactive cells).
// It is used to color output by partition.
func (t *Triangulation) Subdomain() []int {
	out := make([]int, len(t.owner))
	copy(out, t.owner)
	return out
}

// OwnerOf returns the rank owning the cell that contains x, or -1 if x
// is not in any active cell.
func (t *Triangulation) OwnerOf(x r3.Vec) int {
	id, ok := t.FindCell(x)
	if !ok {
		return -1
	}
	return t.owner[id]
}

// Repartition redistributes cells between ranks so that every rank carries
// about the same cumulative cost, where each cell costs CellBaseWeight plus
// its weight. weight is only called for locally owned cells. Repartition is
// collective and returns true if any cell changed owner. Indices built on
// top of the Triangulation are stale afterwards.
func (t *Triangulation) Repartition(weight WeightFunc) (bool, error) {
	w := make([]int64, 0, len(t.local))
	var werr error
	for _, id := range t.morton {
		if !t.IsLocallyOwned(id) {
			continue
		}
		x, err := weight(id, CellPersist)
		if err != nil && werr == nil {
			werr = err
		}
		w = append(w, x)
	}

	ws := comm.AllgatherInt64s(t.Comm, w)
	if err := comm.Agree(t.Comm, werr); err != nil {
		return false, err
	}

	next := make([]int, len(ws))
	cost := make([]int64, len(t.morton))
	for i, id := range t.morton {
		r := t.owner[id]
		if next[r] >= len(ws[r]) {
			return false, l_error.Invariant(
				"Rank %d sent %d cell weights, but owns more cells.",
				r, len(ws[r]),
			)
		}
		cost[i] = CellBaseWeight + ws[r][next[r]]
		next[r]++
	}

	return t.assign(cost), nil
}
