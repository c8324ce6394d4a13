/*package timer measures the wall-clock time spent in each section of a
simulation step.*/
package timer

import (
	"log"
	"time"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// Type controls when timings are reported.
type Type int

const (
	None Type = iota
	Iteration
	End
)

// ParseType converts a configuration string into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "none", "":
		return None, nil
	case "iteration":
		return Iteration, nil
	case "end":
		return End, nil
	}
	return None, l_error.Config("Unrecognized Timer.Type '%s'. "+
		"Must be one of 'none', 'iteration', or 'end'.", s)
}

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Iteration:
		return "iteration"
	case End:
		return "end"
	}
	return "unknown"
}

// Timer accumulates time per named section. Sections are reported in the
// order they were first entered. A Timer is not thread safe.
type Timer struct {
	Type Type

	names []string
	total map[string]time.Duration
	iter  map[string]time.Duration
	start map[string]time.Time

	now func() time.Time
}

// New creates a Timer which reports according to typ.
func New(typ Type) *Timer {
	return &Timer{
		Type:  typ,
		total: map[string]time.Duration{},
		iter:  map[string]time.Duration{},
		start: map[string]time.Time{},
		now:   time.Now,
	}
}

// Enter starts timing a section.
func (t *Timer) Enter(section string) {
	if _, ok := t.total[section]; !ok {
		t.names = append(t.names, section)
		t.total[section] = 0
	}
	t.start[section] = t.now()
}

// Exit stops timing a section. Exiting a section which was never entered
// does nothing.
func (t *Timer) Exit(section string) {
	start, ok := t.start[section]
	if !ok {
		return
	}
	dt := t.now().Sub(start)
	t.total[section] += dt
	t.iter[section] += dt
	delete(t.start, section)
}

// Total returns the time spent in a section so far.
func (t *Timer) Total(section string) time.Duration { return t.total[section] }

// EndIteration reports the sections of the finished step if the Timer is
// of type Iteration.
func (t *Timer) EndIteration(pcout *log.Logger, step int64) {
	if t.Type == Iteration {
		for _, name := range t.names {
			if dt, ok := t.iter[name]; ok {
				pcout.Printf("Step %d: %-24s %v", step, name, dt)
			}
		}
	}
	t.iter = map[string]time.Duration{}
}

// Summary reports the total time spent in every section unless the Timer
// is of type None.
func (t *Timer) Summary(pcout *log.Logger) {
	if t.Type == None {
		return
	}
	var sum time.Duration
	for _, name := range t.names {
		sum += t.total[name]
	}
	pcout.Printf("%-24s %12s %8s", "Section", "Wall time", "Fraction")
	for _, name := range t.names {
		frac := 0.0
		if sum > 0 {
			frac = float64(t.total[name]) / float64(sum)
		}
		pcout.Printf("%-24s %12v %7.2f%%", name, t.total[name], 100*frac)
	}
}
