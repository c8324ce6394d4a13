/*package control keeps track of simulation time and decides when the
simulation ends and when it writes output.*/
package control

import (
	"log"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
	"github.com/lethe-cfd/lethe-dem/lib/schedule"
)

// Control holds the authoritative step counter and simulation time.
type Control struct {
	TimeStep, TimeEnd float64
	// MaxSteps ends the simulation early if it is positive.
	MaxSteps int64
	// LogFrequency is the number of steps between progress messages. Zero
	// turns them off.
	LogFrequency int64

	Step int64
	Time float64

	output      schedule.Cadence
	outputSteps map[int64]bool
}

// New creates a Control at step 0. Output is written every outputFrequency
// steps and on each of the explicit outputSteps.
func New(
	dt, end float64, maxSteps, logFrequency, outputFrequency int64,
	outputSteps []int,
) (*Control, error) {
	if dt <= 0 {
		return nil, l_error.Config("TimeStep must be positive, not %g.", dt)
	} else if end <= 0 && maxSteps <= 0 {
		return nil, l_error.Config("Either TimeEnd or MaxSteps must be positive.")
	}

	c := &Control{
		TimeStep: dt, TimeEnd: end,
		MaxSteps: maxSteps, LogFrequency: logFrequency,
		output:      schedule.Every(outputFrequency),
		outputSteps: map[int64]bool{},
	}
	for _, s := range outputSteps {
		c.outputSteps[int64(s)] = true
	}
	return c, nil
}

// Integrate advances to the next step and returns true, or returns false
// without advancing if the simulation is over. The first step is step 1.
func (c *Control) Integrate() bool {
	if c.MaxSteps > 0 && c.Step >= c.MaxSteps {
		return false
	}
	// Half a step of slack keeps rounding in Time from adding a step.
	if c.TimeEnd > 0 && c.Time+c.TimeStep/2 >= c.TimeEnd {
		return false
	}
	c.Step++
	c.Time = float64(c.Step) * c.TimeStep
	return true
}

// IsOutputIteration returns true if output should be written on the current
// step and false otherwise.
func (c *Control) IsOutputIteration() bool {
	return c.output.Due(c.Step) || c.outputSteps[c.Step]
}

// PrintProgression logs the current step and time every LogFrequency steps.
func (c *Control) PrintProgression(pcout *log.Logger) {
	if c.LogFrequency > 0 && c.Step%c.LogFrequency == 0 {
		pcout.Printf("Step %d, t = %.6g s", c.Step, c.Time)
	}
}
