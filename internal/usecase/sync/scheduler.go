package sync

import (
	"sync"
	"time"
)

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scheduler defers a job by a fixed delay and coalesces repeated requests
// for the same key into one run: rapid successive configuration edits
// trigger a single backfill.
type Scheduler struct {
	delay time.Duration
	clock Clock
	run   func(key string)

	mu      sync.Mutex
	pending map[string]bool
}

// NewScheduler creates a coalescing scheduler. A nil clock uses real time.
func NewScheduler(delay time.Duration, clock Clock, run func(key string)) *Scheduler {
	if clock == nil {
		clock = realClock{}
	}
	return &Scheduler{
		delay:   delay,
		clock:   clock,
		run:     run,
		pending: make(map[string]bool),
	}
}

// Schedule arms the delayed job for key unless one is already pending.
func (s *Scheduler) Schedule(key string) {
	s.mu.Lock()
	if s.pending[key] {
		s.mu.Unlock()
		return
	}
	s.pending[key] = true
	timer := s.clock.After(s.delay)
	s.mu.Unlock()

	go func() {
		<-timer
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
		s.run(key)
	}()
}
