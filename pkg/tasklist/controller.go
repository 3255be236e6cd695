// Package tasklist owns a user's loaded task collection and the overdue
// notification cycle that runs over it.
//
// All collection, ledger and timer state sits behind one mutex, so a detection
// cycle (detect, record in the ledger, persist) never interleaves with another
// cycle or with an edit. Backend calls run outside the lock and their results
// are applied under it.
package tasklist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/kv"
	"github.com/harrisonrobin/duewatch/pkg/ledger"
	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/harrisonrobin/duewatch/pkg/notify"
	"github.com/harrisonrobin/duewatch/pkg/overdue"
	"github.com/sirupsen/logrus"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskAPI is the backend the controller reads and writes tasks through.
type TaskAPI interface {
	List(ctx context.Context, userID string) []model.Task
	Create(ctx context.Context, userID string, req model.CreateRequest) (*model.Task, error)
	Update(ctx context.Context, userID, id string, req model.UpdateRequest) (*model.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type Options struct {
	UserID    string
	API       TaskAPI
	Store     kv.Store
	Presenter notify.Presenter
	Scheduler overdue.Scheduler
	Interval  time.Duration
	Now       func() time.Time
	Log       logrus.FieldLogger
}

type Controller struct {
	userID    string
	api       TaskAPI
	store     kv.Store
	presenter notify.Presenter
	now       func() time.Time
	log       logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	tasks    []model.Task
	notified ledger.Ledger
	watcher  *overdue.Watcher
	closed   bool
	outbox   [][]model.Task

	presentMu sync.Mutex
}

// New builds a controller and loads the user's notification ledger. No tasks
// are loaded and no timer is armed until Load or Create.
func New(opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = overdue.TickerScheduler{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Store == nil {
		opts.Store = kv.NewMemoryStore()
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	log := opts.Log.WithFields(logrus.Fields{"component": "tasklist", "user_id": opts.UserID})

	c := &Controller{
		userID:    opts.UserID,
		api:       opts.API,
		store:     opts.Store,
		presenter: opts.Presenter,
		now:       opts.Now,
		log:       log,
		notified:  ledger.Load(opts.Store, opts.UserID, log),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.watcher = overdue.NewWatcher(opts.Scheduler, opts.Interval, c.tick)
	return c
}

// Load replaces the collection with the backend's current tasks.
func (c *Controller) Load(ctx context.Context) []model.Task {
	tasks := c.api.List(ctx, c.userID)

	c.mu.Lock()
	c.tasks = append([]model.Task(nil), tasks...)
	c.syncLocked()
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.flush()
	return out
}

// Tasks returns a copy of the loaded collection.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Find returns the loaded task with id.
func (c *Controller) Find(id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return c.tasks[i], true
}

// Search returns tasks whose title or description contains query, ignoring case.
func (c *Controller) Search(query string) []model.Task {
	tasks := c.Tasks()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return tasks
	}
	var out []model.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.DescriptionText()), q) {
			out = append(out, t)
		}
	}
	return out
}

// Notified reports whether id has already raised an overdue notification.
func (c *Controller) Notified(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notified.Has(id)
}

func (c *Controller) Create(ctx context.Context, req model.CreateRequest) (*model.Task, error) {
	task, err := c.api.Create(ctx, c.userID, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, *task)
	c.syncLocked()
	c.mu.Unlock()

	c.flush()
	return task, nil
}

// Update applies a partial edit. Editing the due date clears the task's
// ledger entry so it can be flagged again in a later overdue window, and a
// Completed flag is handled as SetCompleted handles it.
func (c *Controller) Update(ctx context.Context, id string, req model.UpdateRequest) (*model.Task, error) {
	current, known := c.Find(id)

	task, err := c.api.Update(ctx, c.userID, id, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.replaceLocked(id, *task)
	completing := known && !current.Completed && req.Completed != nil && *req.Completed
	if req.DueDate != nil || completing {
		c.forgetLocked(id)
	}
	c.mu.Unlock()
	return task, nil
}

// SetCompleted marks a loaded task complete or open. Completing an open task
// clears its ledger entry; reopening a task leaves the ledger alone.
func (c *Controller) SetCompleted(ctx context.Context, id string, completed bool) (*model.Task, error) {
	current, ok := c.Find(id)
	if !ok {
		return nil, ErrTaskNotFound
	}

	task, err := c.api.Update(ctx, c.userID, id, model.UpdateRequest{Completed: &completed})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.replaceLocked(id, *task)
	if !current.Completed && completed {
		c.forgetLocked(id)
	}
	c.mu.Unlock()
	return task, nil
}

// ToggleComplete flips the completion flag of a loaded task.
func (c *Controller) ToggleComplete(ctx context.Context, id string) (*model.Task, error) {
	current, ok := c.Find(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return c.SetCompleted(ctx, id, !current.Completed)
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, c.userID, id); err != nil {
		return err
	}

	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	c.syncLocked()
	c.mu.Unlock()

	c.flush()
	return nil
}

// Check runs one detection cycle now and returns the newly overdue tasks,
// which have also been handed to the presenter.
func (c *Controller) Check() []model.Task {
	c.mu.Lock()
	batch := c.checkLocked()
	c.mu.Unlock()

	c.flush()
	return batch
}

// Close stops the recurring check and abandons in-flight presentation work.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.watcher.Stop()
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if c.closed || !c.watcher.Current(gen) {
		c.mu.Unlock()
		return
	}
	c.checkLocked()
	c.mu.Unlock()

	c.flush()
}

// syncLocked re-arms or tears down the timer after the collection changed and
// runs an immediate check when the collection just became non-empty.
func (c *Controller) syncLocked() {
	if c.closed {
		return
	}
	if c.watcher.Sync(len(c.tasks)) {
		c.checkLocked()
	}
}

func (c *Controller) checkLocked() []model.Task {
	batch := overdue.Detect(c.tasks, c.now(), c.notified)
	if len(batch) == 0 {
		return nil
	}
	c.notified = c.notified.AddAll(overdue.IDs(batch))
	c.persistLocked()
	c.outbox = append(c.outbox, batch)
	c.log.WithField("count", len(batch)).Info("tasks overdue")
	return batch
}

func (c *Controller) forgetLocked(id string) {
	if !c.notified.Has(id) {
		return
	}
	c.notified = c.notified.Remove(id)
	c.persistLocked()
}

func (c *Controller) persistLocked() {
	if err := ledger.Persist(c.store, c.userID, c.notified); err != nil {
		c.log.WithError(err).Warn("failed to persist notification ledger")
	}
}

// flush presents queued batches in detection order. Batches are queued under
// mu by checkLocked; whichever caller holds presentMu drains them all.
func (c *Controller) flush() {
	c.presentMu.Lock()
	defer c.presentMu.Unlock()
	for {
		c.mu.Lock()
		if len(c.outbox) == 0 {
			c.mu.Unlock()
			return
		}
		batch := c.outbox[0]
		c.outbox = c.outbox[1:]
		c.mu.Unlock()

		if c.presenter != nil {
			c.presenter.Present(c.ctx, batch)
		}
	}
}

func (c *Controller) replaceLocked(id string, task model.Task) {
	if i := c.indexLocked(id); i >= 0 {
		c.tasks[i] = task
	}
}

func (c *Controller) indexLocked(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) snapshotLocked() []model.Task {
	return append([]model.Task(nil), c.tasks...)
}
