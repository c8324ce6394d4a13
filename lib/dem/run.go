package dem

/* run.go starts one Solver per rank and waits for all of them. */

import (
	"io"
	"io/ioutil"
	"log"
	"runtime"

	"github.com/lethe-cfd/lethe-dem/lib/comm"
	"github.com/lethe-cfd/lethe-dem/lib/config"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/output"
)

// SetThreads sets the number of OS threads the ranks share. n <= 0 uses
// every core.
func SetThreads(n int) error {
	if n > runtime.NumCPU() {
		return l_error.Config("%d threads requested, but your system only "+
			"has %d cores. If you want to use every core, set Threads = 0.",
			n, runtime.NumCPU())
	} else if n <= 0 {
		n = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(n)
	return nil
}

// Run runs the simulation described by args on args.Ranks ranks. Progress is
// logged to out by rank 0. It returns the Solver of every rank, indexed by
// rank.
func Run(args *config.Args, out io.Writer) ([]*Solver, error) {
	if err := config.Check(args); err != nil {
		return nil, err
	}
	if err := SetThreads(args.Threads); err != nil {
		return nil, err
	}

	w := comm.NewWorld(args.Ranks)
	solvers := make([]*Solver, args.Ranks)

	err := w.Run(func(c comm.Comm) error {
		pcout := log.New(ioutil.Discard, "", 0)
		if c.Rank() == 0 {
			pcout = log.New(out, "", log.LstdFlags)
		}

		s, err := NewSolver(args, c, pcout)
		if err != nil {
			return err
		}
		solvers[c.Rank()] = s

		if err := s.Solve(); err != nil {
			return err
		}
		if args.TestMode {
			output.PrintTestMode(c, out, s.Handler.Particles())
		}
		return nil
	})

	return solvers, err
}
