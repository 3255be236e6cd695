// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/model"
)

type timer struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

// ManualScheduler is an overdue.Scheduler whose ticks are fired by the test.
type ManualScheduler struct {
	mu     sync.Mutex
	timers []*timer
}

func (s *ManualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{interval: interval, fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
	}
}

// Tick fires every live timer once.
func (s *ManualScheduler) Tick() {
	for _, fn := range s.live() {
		fn()
	}
}

// TickAll fires every timer ever armed, including cancelled ones, to
// simulate callbacks that were already in flight when cancelled.
func (s *ManualScheduler) TickAll() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.timers))
	for _, t := range s.timers {
		fns = append(fns, t.fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Active is the number of armed, uncancelled timers.
func (s *ManualScheduler) Active() int {
	return len(s.live())
}

// Armed is the number of timers ever armed.
func (s *ManualScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// LastInterval is the interval of the most recently armed timer.
func (s *ManualScheduler) LastInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].interval
}

func (s *ManualScheduler) live() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fns []func()
	for _, t := range s.timers {
		if !t.cancelled {
			fns = append(fns, t.fn)
		}
	}
	return fns
}

// RecordingPresenter captures every presented batch.
type RecordingPresenter struct {
	mu      sync.Mutex
	Batches [][]model.Task
}

func (p *RecordingPresenter) Present(_ context.Context, batch []model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Batches = append(p.Batches, append([]model.Task(nil), batch...))
}

// BatchIDs returns the task ids of each presented batch.
func (p *RecordingPresenter) BatchIDs() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]string, 0, len(p.Batches))
	for _, b := range p.Batches {
		ids := make([]string, 0, len(b))
		for _, t := range b {
			ids = append(ids, t.ID)
		}
		out = append(out, ids)
	}
	return out
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
