package sync

import (
	"sync"
	"testing"
	"time"
)

// fakeClock hands out timer channels that fire only when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	timers []chan time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{} }

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.timers = append(c.timers, ch)
	return ch
}

func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		t.Fatal("no pending timer to fire")
	}
	c.timers[0] <- time.Now()
	c.timers = c.timers[1:]
}

func (c *fakeClock) armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func TestSchedulerCoalesces(t *testing.T) {
	clock := newFakeClock()
	runs := make(chan string, 4)
	s := NewScheduler(5*time.Second, clock, func(key string) { runs <- key })

	// Burst of requests within the window collapses into one timer.
	s.Schedule("resync")
	s.Schedule("resync")
	s.Schedule("resync")
	if got := clock.armed(); got != 1 {
		t.Fatalf("expected 1 armed timer, got %d", got)
	}

	clock.fire(t)
	select {
	case key := <-runs:
		if key != "resync" {
			t.Errorf("unexpected key %q", key)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduled run never happened")
	}
	select {
	case key := <-runs:
		t.Fatalf("run fired more than once: %q", key)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSchedulerRearmsAfterRun(t *testing.T) {
	clock := newFakeClock()
	runs := make(chan string, 2)
	s := NewScheduler(5*time.Second, clock, func(key string) { runs <- key })

	s.Schedule("resync")
	clock.fire(t)
	<-runs

	s.Schedule("resync")
	if got := clock.armed(); got != 1 {
		t.Fatalf("expected timer re-armed, got %d", got)
	}
	clock.fire(t)
	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("second run never happened")
	}
}

func TestSchedulerKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	runs := make(chan string, 2)
	s := NewScheduler(5*time.Second, clock, func(key string) { runs <- key })

	s.Schedule("a")
	s.Schedule("b")
	if got := clock.armed(); got != 2 {
		t.Fatalf("expected 2 armed timers, got %d", got)
	}
}
