package overdue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/ledger"
	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/harrisonrobin/duewatch/pkg/testutil"
	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}

func TestDetectScenario(t *testing.T) {
	tasks := []model.Task{{ID: "a", DueDate: mustTime(t, "2020-01-01T00:00:00Z")}}
	now := mustTime(t, "2024-01-01T00:00:00Z")

	first := Detect(tasks, now, ledger.Ledger{})
	assert.Equal(t, []string{"a"}, IDs(first))

	notified := ledger.Ledger{}.AddAll(IDs(first))
	assert.Equal(t, []string{"a"}, notified.IDs())

	assert.Empty(t, Detect(tasks, now, notified))
}

func TestDetectFilters(t *testing.T) {
	now := mustTime(t, "2024-06-01T12:00:00Z")
	past := now.Add(-time.Hour)
	tasks := []model.Task{
		{ID: "open-past", DueDate: past},
		{ID: "done-past", DueDate: past, Completed: true},
		{ID: "open-future", DueDate: now.Add(time.Hour)},
		{ID: "no-due"},
		{ID: "notified", DueDate: past},
		{ID: "open-past-2", DueDate: past.Add(-time.Hour)},
	}

	got := Detect(tasks, now, ledger.New("notified"))
	assert.Equal(t, []string{"open-past", "open-past-2"}, IDs(got))
}

func TestDetectBoundaryIsStrict(t *testing.T) {
	now := mustTime(t, "2024-06-01T12:00:00.123Z")
	tasks := []model.Task{{ID: "exact", DueDate: now}}

	assert.Empty(t, Detect(tasks, now, ledger.Ledger{}))
	assert.Len(t, Detect(tasks, now.Add(time.Millisecond), ledger.Ledger{}), 1)
}

func TestDetectComparesInstantsAcrossZones(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2024, 1, 1, 9, 0, 1, 0, loc)
	tasks := []model.Task{{ID: "a", DueDate: mustTime(t, "2024-01-01T00:00:00Z")}}

	assert.Len(t, Detect(tasks, now, ledger.Ledger{}), 1)
}

func TestWatcherArmsOnlyWhileNonEmpty(t *testing.T) {
	sched := &testutil.ManualScheduler{}
	var ticks []uint64
	w := NewWatcher(sched, 0, func(gen uint64) { ticks = append(ticks, gen) })

	assert.False(t, w.Sync(0))
	assert.Equal(t, 0, sched.Armed())

	assert.True(t, w.Sync(1), "first non-empty sync asks for an immediate check")
	assert.Equal(t, 1, sched.Active())
	assert.Equal(t, DefaultInterval, sched.LastInterval())

	assert.False(t, w.Sync(3), "already armed")
	assert.Equal(t, 1, sched.Armed())

	sched.Tick()
	assert.Len(t, ticks, 1)
	assert.True(t, w.Current(ticks[0]))

	assert.False(t, w.Sync(0))
	assert.Equal(t, 0, sched.Active())
	assert.False(t, w.Armed())
	assert.False(t, w.Current(ticks[0]))

	assert.True(t, w.Sync(2), "re-armed after becoming non-empty again")
	assert.Equal(t, 1, sched.Active())
	assert.Equal(t, 2, sched.Armed())
}

func TestWatcherStaleGenerations(t *testing.T) {
	sched := &testutil.ManualScheduler{}
	var ticks []uint64
	w := NewWatcher(sched, time.Second, func(gen uint64) { ticks = append(ticks, gen) })

	w.Sync(1)
	w.Stop()
	w.Sync(1)

	sched.TickAll()
	assert.Len(t, ticks, 2)
	assert.False(t, w.Current(ticks[0]))
	assert.True(t, w.Current(ticks[1]))

	w.Stop()
	w.Stop()
	assert.False(t, w.Current(ticks[1]))
}

func TestTickerSchedulerStops(t *testing.T) {
	var n atomic.Int32
	cancel := TickerScheduler{}.Every(5*time.Millisecond, func() { n.Add(1) })

	assert.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, n.Load(), stopped+1)
}
