package config

/* check.go contains the validation done by the "check" mode. */

import (
	"github.com/lethe-cfd/lethe-dem/lib/control"
	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/insertion"
	"github.com/lethe-cfd/lethe-dem/lib/mesh"
	"github.com/lethe-cfd/lethe-dem/lib/output"
)

// Check validates the combinations of arguments which Process cannot check
// one at a time. Every error it returns is a ConfigError. Check does not
// read insertion files.
func Check(args *Args) error {
	if _, err := control.New(
		args.TimeStep, args.TimeEnd, args.MaxSteps,
		args.LogFrequency, args.OutputFrequency, args.OutputSteps,
	); err != nil {
		return err
	}

	if args.DetectionFrequency < 0 || args.RepartitionFrequency < 0 ||
		args.InsertionFrequency < 0 {
		return l_error.Config("Step frequencies cannot be negative.")
	}
	if args.RepartitionFrequency%args.DetectionFrequency != 0 {
		return l_error.Config("RepartitionFrequency (%d) must be a multiple "+
			"of ContactDetectionFrequency (%d).",
			args.RepartitionFrequency, args.DetectionFrequency)
	}
	if args.Ranks < 1 {
		return l_error.Config("Parallel.Ranks must be positive, not %d.",
			args.Ranks)
	}

	g, err := mesh.NewGrid(
		args.Box, args.Cells, args.Dim, args.Refinement, args.Obstacles,
	)
	if err != nil {
		return err
	}

	if args.NeighborhoodThreshold < 1 {
		return l_error.Config("NeighborhoodThreshold is %g, but it must be "+
			"at least 1, or overlapping particles would be missed.",
			args.NeighborhoodThreshold)
	}
	cutoff := args.NeighborhoodThreshold * args.MaxDiameter()
	if g.MinWidth() < cutoff {
		return l_error.Config("The smallest cell width, %g, is smaller than "+
			"the neighborhood cutoff distance NeighborhoodThreshold * "+
			"Diameter = %g. Use fewer cells.", g.MinWidth(), cutoff)
	}

	if args.Inserts() {
		if args.Insertion.Method != insertion.File &&
			args.Insertion.DistanceThreshold < 1 {
			return l_error.Config("InsertionInfo.DistanceThreshold is %g, but "+
				"it must be at least 1, or inserted particles would overlap.",
				args.Insertion.DistanceThreshold)
		}
		if _, err := insertion.New(args.Insertion); err != nil {
			return err
		}
	}

	if _, err := output.New(
		args.OutputDir, args.ParticleFormat, args.GridFormat,
	); err != nil {
		return err
	}
	return nil
}
