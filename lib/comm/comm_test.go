package comm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

func TestAlltoallv(t *testing.T) {
	w := NewWorld(3)
	recvs := make([][][]byte, 3)

	err := w.Run(func(c Comm) error {
		send := make([][]byte, c.Size())
		for to := range send {
			send[to] = []byte(fmt.Sprintf("%d->%d", c.Rank(), to))
		}
		// Several rounds in a row to make sure messages keep their order.
		for round := 0; round < 5; round++ {
			recvs[c.Rank()] = c.Alltoallv(send)
		}
		return nil
	})
	require.NoError(t, err)

	for rank := range recvs {
		for from := range recvs[rank] {
			require.Equal(t, fmt.Sprintf("%d->%d", from, rank),
				string(recvs[rank][from]))
		}
	}
}

func TestCollectives(t *testing.T) {
	w := NewWorld(4)
	sums := make([]int64, 4)
	fsums := make([]float64, 4)
	gathers := make([][][]int64, 4)
	bcasts := make([][]int64, 4)

	err := w.Run(func(c Comm) error {
		r := int64(c.Rank())
		sums[r] = AllreduceSumInt64(c, r+1)
		fsums[r] = AllreduceSumFloat64(c, 0.5*float64(r))
		gathers[r] = AllgatherInt64s(c, []int64{r, 10 * r})

		buf := []int64{-1, -1}
		if c.Rank() == 2 {
			buf = []int64{7, 11}
		}
		BcastInt64(c, buf, 2)
		bcasts[r] = buf
		Barrier(c)
		return nil
	})
	require.NoError(t, err)

	for r := 0; r < 4; r++ {
		require.Equal(t, int64(10), sums[r])
		require.Equal(t, 3.0, fsums[r])
		require.Equal(t, [][]int64{{0, 0}, {1, 10}, {2, 20}, {3, 30}}, gathers[r])
		require.Equal(t, []int64{7, 11}, bcasts[r])
	}
}

func TestRunError(t *testing.T) {
	w := NewWorld(2)
	err := w.Run(func(c Comm) error {
		Barrier(c)
		if c.Rank() == 1 {
			return fmt.Errorf("rank 1 failed")
		}
		return nil
	})
	require.EqualError(t, err, "rank 1 failed")
}

func TestAgree(t *testing.T) {
	w := NewWorld(3)
	errs := make([]error, 3)
	err := w.Run(func(c Comm) error {
		var mine error
		if c.Rank() == 2 {
			mine = l_error.Invariant("bad cell")
		}
		errs[c.Rank()] = Agree(c, mine)
		return nil
	})
	require.NoError(t, err)
	require.EqualError(t, errs[2], "bad cell")
	require.EqualError(t, errs[0], "Rank 2 failed during a collective step.")
	require.Error(t, errs[1])

	err = w.Run(func(c Comm) error { return Agree(c, nil) })
	require.NoError(t, err)
}
