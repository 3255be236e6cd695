package overdue

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives callbacks from a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// Watcher keeps a recurring check armed exactly while the task collection
// is non-empty. It is not safe for concurrent use; the owner serialises calls.
//
// Every arming gets a new generation. A tick carries the generation it was
// armed with, and owners drop ticks for which Current reports false, so a
// callback already in flight when the timer is cancelled has no effect.
type Watcher struct {
	sched    Scheduler
	interval time.Duration
	tick     func(gen uint64)

	gen    uint64
	cancel func()
}

func NewWatcher(sched Scheduler, interval time.Duration, tick func(gen uint64)) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{sched: sched, interval: interval, tick: tick}
}

// Sync reconciles the timer with the collection size. It returns true when
// the collection has just become non-empty; the owner then runs a check
// immediately instead of waiting a full interval.
func (w *Watcher) Sync(size int) bool {
	switch {
	case size > 0 && w.cancel == nil:
		w.gen++
		gen := w.gen
		w.cancel = w.sched.Every(w.interval, func() { w.tick(gen) })
		return true
	case size == 0 && w.cancel != nil:
		w.Stop()
	}
	return false
}

// Stop cancels the timer if armed.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
	w.gen++
}

func (w *Watcher) Armed() bool {
	return w.cancel != nil
}

// Current reports whether gen belongs to the live arming.
func (w *Watcher) Current(gen uint64) bool {
	return w.cancel != nil && gen == w.gen
}
