package timeline

import (
	"fmt"
	"time"
)

// Step is one suspension point of a sequence: Run issues a command, then
// the sequence waits Wait before the next step starts.
type Step struct {
	Name string
	Run  func() error
	Wait time.Duration
}

// Wait is a step that only waits.
func Wait(d time.Duration) Step { return Step{Name: "wait", Wait: d} }

// Do is a step that runs fn and moves on immediately.
func Do(name string, fn func() error) Step { return Step{Name: name, Run: fn} }

// Run executes steps in order. The first step runs synchronously; every
// following step runs once the previous step's Wait has elapsed. done is
// called exactly once, after the last step's wait, or as soon as a step
// returns an error (remaining steps are skipped).
func (s *Scheduler) Run(steps []Step, done func(error)) {
	s.runFrom(steps, 0, done)
}

func (s *Scheduler) runFrom(steps []Step, i int, done func(error)) {
	for ; i < len(steps); i++ {
		st := steps[i]
		if st.Run != nil {
			if err := st.Run(); err != nil {
				if done != nil {
					done(fmt.Errorf("step %q: %w", st.Name, err))
				}
				return
			}
		}
		if st.Wait > 0 {
			next := i + 1
			s.After(st.Wait, func() { s.runFrom(steps, next, done) })
			return
		}
	}
	if done != nil {
		done(nil)
	}
}

// Total sums the waits of a step list.
func Total(steps []Step) time.Duration {
	var d time.Duration
	for _, st := range steps {
		d += st.Wait
	}
	return d
}
