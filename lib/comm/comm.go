/*package comm contains the message-passing layer used by the DEM ranks. Its
shape follows the MPI calls Lethe makes: a rank/size query and an Alltoallv
exchange of variable-length buffers, from which every other collective
(Barrier, Allgather, Allreduce) is built.

Ranks never share memory. Everything that crosses a rank boundary is encoded
into a []byte first, so the ownership discipline is the same as it would be
with separate processes.
*/
package comm

import (
	"encoding/binary"
	"math"
	"sync"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// Comm is a communicator for a single rank.
type Comm interface {
	// Rank returns the index of this rank in [0, Size()).
	Rank() int
	// Size returns the number of ranks in the communicator.
	Size() int
	// Alltoallv sends send[i] to rank i and returns recv, where recv[i] is
	// the buffer rank i sent to this rank. len(send) must equal Size(). It is
	// a collective call: every rank must call it the same number of times.
	Alltoallv(send [][]byte) (recv [][]byte)
}

// World is a set of in-process ranks connected by FIFO channels. Each
// ordered pair of ranks has its own channel.
type World struct {
	n     int
	chans [][]chan []byte
}

// Local is the Comm of a single rank within a World.
type Local struct {
	rank  int
	world *World
}

// NewWorld creates a World with n ranks.
func NewWorld(n int) *World {
	if n <= 0 {
		l_error.Internal("A World needs at least one rank, but %d were requested.", n)
	}

	w := &World{n: n, chans: make([][]chan []byte, n)}
	for from := range w.chans {
		w.chans[from] = make([]chan []byte, n)
		for to := range w.chans[from] {
			// A capacity of one is enough: a rank can only run one
			// collective ahead of the slowest rank.
			w.chans[from][to] = make(chan []byte, 1)
		}
	}
	return w
}

// Size returns the number of ranks in the World.
func (w *World) Size() int { return w.n }

// Comm returns the communicator of the given rank.
func (w *World) Comm(rank int) *Local {
	if rank < 0 || rank >= w.n {
		l_error.Internal("Rank %d requested from a World of size %d.", rank, w.n)
	}
	return &Local{rank, w}
}

// Run calls f once per rank, each on its own goroutine, and waits for all
// of them. The first non-nil error (by rank order) is returned.
func (w *World) Run(f func(c Comm) error) error {
	errs := make([]error, w.n)
	wg := &sync.WaitGroup{}
	wg.Add(w.n)
	for rank := 0; rank < w.n; rank++ {
		go func(rank int) {
			defer wg.Done()
			errs[rank] = f(w.Comm(rank))
		}(rank)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Local) Rank() int { return c.rank }
func (c *Local) Size() int { return c.world.n }

func (c *Local) Alltoallv(send [][]byte) [][]byte {
	if len(send) != c.world.n {
		l_error.Internal("Alltoallv on rank %d was given %d buffers for %d ranks.",
			c.rank, len(send), c.world.n)
	}

	for to := range send {
		c.world.chans[c.rank][to] <- send[to]
	}
	recv := make([][]byte, c.world.n)
	for from := range recv {
		recv[from] = <-c.world.chans[from][c.rank]
	}
	return recv
}

// Barrier blocks until every rank in c has called Barrier.
func Barrier(c Comm) {
	c.Alltoallv(make([][]byte, c.Size()))
}

// BcastInt64 broadcasts the contents of buf on root to buf on every other
// rank.
func BcastInt64(c Comm, buf []int64, root int) {
	send := make([][]byte, c.Size())
	if c.Rank() == root {
		b := encodeInt64s(buf)
		for i := range send {
			send[i] = b
		}
	}
	recv := c.Alltoallv(send)
	copy(buf, decodeInt64s(recv[root]))
}

// AllgatherInt64s returns the x given by every rank, indexed by rank.
func AllgatherInt64s(c Comm, x []int64) [][]int64 {
	b := encodeInt64s(x)
	send := make([][]byte, c.Size())
	for i := range send {
		send[i] = b
	}

	recv := c.Alltoallv(send)
	out := make([][]int64, len(recv))
	for i := range recv {
		out[i] = decodeInt64s(recv[i])
	}
	return out
}

// AllreduceSumInt64 returns the sum of x over all ranks.
func AllreduceSumInt64(c Comm, x int64) int64 {
	sum := int64(0)
	for _, xs := range AllgatherInt64s(c, []int64{x}) {
		sum += xs[0]
	}
	return sum
}

// AllreduceSumFloat64 returns the sum of x over all ranks. Summation is done
// in rank order, so every rank gets a bit-identical result.
func AllreduceSumFloat64(c Comm, x float64) float64 {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(x))
	send := make([][]byte, c.Size())
	for i := range send {
		send[i] = b
	}

	sum := 0.0
	for _, r := range c.Alltoallv(send) {
		sum += math.Float64frombits(binary.LittleEndian.Uint64(r))
	}
	return sum
}

// Agree is called collectively after each rank has finished a fallible step.
// If any rank failed, every rank returns a non-nil error, so that no rank
// goes on to a collective that the failed ranks will never join. A rank which
// did not fail itself gets an InvariantError naming the first failed rank.
func Agree(c Comm, err error) error {
	failed := int64(0)
	if err != nil {
		failed = 1
	}
	flags := AllgatherInt64s(c, []int64{failed})
	if err != nil {
		return err
	}
	for r := range flags {
		if flags[r][0] != 0 {
			return l_error.Invariant("Rank %d failed during a collective step.", r)
		}
	}
	return nil
}

func encodeInt64s(x []int64) []byte {
	b := make([]byte, 8*len(x))
	for i := range x {
		binary.LittleEndian.PutUint64(b[8*i:], uint64(x[i]))
	}
	return b
}

func decodeInt64s(b []byte) []int64 {
	x := make([]int64, len(b)/8)
	for i := range x {
		x[i] = int64(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return x
}
