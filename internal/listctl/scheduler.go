package listctl

import (
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after delay. The controller uses it for debounced
// and coalesced fetches.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Timer
}

// ClockScheduler schedules on the wall clock.
type ClockScheduler struct{}

func (ClockScheduler) Schedule(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

// ManualScheduler only runs work when Advance moves its clock forward. Due
// work runs synchronously on the caller's goroutine in due order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	at      time.Duration
	order   int
	fn      func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &manualTask{s: s, at: s.now + delay, order: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.compactLocked()
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()
		next.fn()
	}
}

// Pending reports how many scheduled tasks have neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	var next *manualTask
	for _, t := range s.tasks {
		if t.fired || t.stopped || t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.order < next.order) {
			next = t
		}
	}
	return next
}

func (s *ManualScheduler) compactLocked() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	s.tasks = live
}
