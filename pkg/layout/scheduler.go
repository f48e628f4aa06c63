package layout

import (
	"sync"
	"time"
)

// Scheduler runs at most one deferred task. Scheduling a task cancels the
// pending one, so only the latest request ever runs.
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewScheduler returns an idle scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule arranges for fn to run after delay, replacing any pending task
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen

	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// a newer Schedule or Cancel happened after this timer fired
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending task, if any
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

// Pending reports whether a task is waiting to run
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
