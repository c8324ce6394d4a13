/*package schedule decides which periodic activities run on a given step.*/
package schedule

// Cadence is an activity which runs on steps where
// step mod Period == Phase mod Period. A Period of zero means never.
type Cadence struct {
	Period, Phase int64
}

// Every returns a Cadence which runs on multiples of period.
func Every(period int64) Cadence { return Cadence{period, 0} }

// Due returns true if the activity runs on step and false otherwise.
func (c Cadence) Due(step int64) bool {
	if c.Period <= 0 {
		return false
	}
	return mod(step, c.Period) == mod(c.Phase, c.Period)
}

func mod(x, n int64) int64 {
	m := x % n
	if m < 0 {
		m += n
	}
	return m
}

// Schedule holds the cadences of the engine's periodic activities.
type Schedule struct {
	Repartition Cadence
	Detection   Cadence
	Insertion   Cadence
	Output      Cadence
}

// New creates the engine's Schedule. Insertion runs on steps one past a
// multiple of its period, so with a period of 1 it runs on every step.
func New(repartition, detection, insertion, output int64) Schedule {
	return Schedule{
		Repartition: Every(repartition),
		Detection:   Every(detection),
		Insertion:   Cadence{insertion, 1},
		Output:      Every(output),
	}
}

// Step holds the activities due on a single step.
type Step struct {
	Repartition, Detection, Insertion, Output bool
}

// At evaluates every cadence at step.
func (s Schedule) At(step int64) Step {
	return Step{
		Repartition: s.Repartition.Due(step),
		Detection:   s.Detection.Due(step),
		Insertion:   s.Insertion.Due(step),
		Output:      s.Output.Due(step),
	}
}
