// internal/timeline/scheduler.go
//
// Virtual-time scheduler used to sequence multi-step game transitions.
// Responsibilities:
//   - Keep a single ordered queue of pending callbacks keyed by due time.
//   - Fire callbacks in (due, insertion) order when time is advanced.
//   - Run ordered (command, wait) step lists, the building block of every
//     cover/uncover/reel sequence.
//
// Notes:
//   - Nothing here starts goroutines. Hosts advance time explicitly:
//     the HTTP server catches a session up to wall-clock on each request,
//     the terminal client advances on a frame ticker, tests advance by hand.
//   - Callbacks may schedule further callbacks; those fire in the same
//     Advance call if they fall inside the window.

package timeline

import (
	"container/heap"
	"time"
)

// Scheduler is a single-threaded timer queue over virtual time.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue timerHeap
}

// Timer is a handle to a pending callback.
type Timer struct {
	due   time.Duration
	seq   uint64
	fn    func()
	index int // position in heap, -1 once fired or stopped
}

// New returns a scheduler positioned at time zero.
func New() *Scheduler { return &Scheduler{} }

// Now reports the current virtual time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Pending reports how many callbacks are waiting to fire.
func (s *Scheduler) Pending() int { return len(s.queue) }

// After schedules fn to run once d has elapsed. A non-positive d runs
// fn on the next Advance, after anything already due.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{due: s.now + d, seq: s.seq, fn: fn}
	heap.Push(&s.queue, t)
	return t
}

// Stop cancels a pending timer. It reports false if the timer already
// fired or was stopped.
func (s *Scheduler) Stop(t *Timer) bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&s.queue, t.index)
	return true
}

// Advance moves time forward by d and fires everything that became due.
// Returns the number of callbacks fired.
func (s *Scheduler) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	return s.AdvanceTo(s.now + d)
}

// AdvanceTo moves time forward to the absolute instant t. Moving
// backwards is a no-op.
func (s *Scheduler) AdvanceTo(t time.Duration) int {
	fired := 0
	for len(s.queue) > 0 && s.queue[0].due <= t {
		next := heap.Pop(&s.queue).(*Timer)
		if next.due > s.now {
			s.now = next.due
		}
		next.fn()
		fired++
	}
	if t > s.now {
		s.now = t
	}
	return fired
}

// Drain fires every pending callback, advancing time as far as needed.
// limit bounds the number of callbacks so a self-rescheduling callback
// cannot spin forever; it returns the number fired.
func (s *Scheduler) Drain(limit int) int {
	fired := 0
	for len(s.queue) > 0 && fired < limit {
		fired += s.AdvanceTo(s.queue[0].due)
	}
	return fired
}

// timerHeap orders timers by due time, then by insertion.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due == h[j].due {
		return h[i].seq < h[j].seq
	}
	return h[i].due < h[j].due
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
