package easel

import (
	"sync"
	"time"
)

// Handle refers to a scheduled callback. Stop cancels the callback and
// reports whether it was still pending; stopping an already-fired or
// already-stopped handle returns false. Every timer the core arms is
// kept as a Handle and stopped on teardown so no callback outlives its
// owner.
type Handle interface {
	Stop() bool
}

// Scheduler arms one-shot timers. The core never calls time.AfterFunc
// directly; everything that waits (debounce windows, polling intervals)
// goes through a Scheduler so tests can drive time by hand.
type Scheduler interface {
	// After runs fn once after d elapses. The returned Handle cancels it.
	After(d time.Duration, fn func()) Handle
}

// TimerScheduler is the real-time Scheduler backed by time.AfterFunc.
// Callbacks run on the timer goroutine; owners that need loop ordering
// re-enter through Session.Post.
type TimerScheduler struct{}

// After implements Scheduler.
func (TimerScheduler) After(d time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(d, fn)}
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Stop() bool {
	return h.t.Stop()
}

// ManualScheduler is a deterministic Scheduler for tests. Time stands
// still until Advance moves it; due callbacks fire synchronously inside
// Advance, in due order, with ties broken by scheduling order. Callbacks
// may schedule further timers; those fire in the same Advance call if
// they fall inside the advanced window.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	id      int
	due     time.Duration
	fn      func()
	fired   bool
	stopped bool
}

// NewManualScheduler creates a ManualScheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After implements Scheduler.
func (s *ManualScheduler) After(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{id: s.nextID, due: s.now + d, fn: fn}
	s.nextID++
	s.timers = append(s.timers, t)
	return manualHandle{s: s, t: t}
}

// Advance moves the clock forward by d, firing every callback that
// becomes due.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		var next *manualTimer
		for _, t := range s.timers {
			if t.fired || t.stopped || t.due > target {
				continue
			}
			if next == nil || t.due < next.due || (t.due == next.due && t.id < next.id) {
				next = t
			}
		}
		if next == nil {
			break
		}
		if next.due > s.now {
			s.now = next.due
		}
		next.fired = true
		fn := next.fn
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}
	s.now = target
	s.compact()
	s.mu.Unlock()
}

// Pending returns the number of timers still waiting to fire.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// Now returns the scheduler's current time offset.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// compact drops finished timers. Called with mu held.
func (s *ManualScheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
}

type manualHandle struct {
	s *ManualScheduler
	t *manualTimer
}

func (h manualHandle) Stop() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.t.fired || h.t.stopped {
		return false
	}
	h.t.stopped = true
	return true
}
