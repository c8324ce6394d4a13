/*package neighbors finds the pairs of cells whose particles could be in
contact with one another.*/
package neighbors

import (
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
)

// List holds the neighboring cells of every locally owned cell. It is only
// valid until the next repartition.
type List struct {
	// Cells is every locally owned cell, in increasing order.
	Cells []int
	// Local maps a cell to the adjacent local cells with larger IDs, so each
	// pair of local cells appears exactly once. A cell is never listed as its
	// own neighbor.
	Local map[int][]int
	// Ghost maps a cell to the adjacent cells owned by other ranks.
	Ghost map[int][]int
}

// Find builds the List for a rank's Triangulation.
func Find(t *mesh.Triangulation) *List {
	l := &List{
		Cells: t.LocallyOwnedCells(),
		Local: map[int][]int{},
		Ghost: map[int][]int{},
	}

	for _, cell := range l.Cells {
		for _, nb := range t.Adjacent(cell) {
			switch {
			case !t.IsLocallyOwned(nb):
				l.Ghost[cell] = append(l.Ghost[cell], nb)
			case nb > cell:
				l.Local[cell] = append(l.Local[cell], nb)
			}
		}
	}

	return l
}

// Pairs returns the number of local-local and local-ghost cell pairs.
func (l *List) Pairs() (local, ghost int) {
	for _, nbs := range l.Local {
		local += len(nbs)
	}
	for _, nbs := range l.Ghost {
		ghost += len(nbs)
	}
	return local, ghost
}
