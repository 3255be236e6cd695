package overdue

import (
	"time"

	"github.com/harrisonrobin/duewatch/pkg/ledger"
	"github.com/harrisonrobin/duewatch/pkg/model"
)

// DefaultInterval is how often the recurring check runs while tasks are loaded.
const DefaultInterval = time.Minute

// Detect returns the tasks that are overdue at now and have not been
// notified yet, in collection order. A task due exactly at now is not overdue.
func Detect(tasks []model.Task, now time.Time, notified ledger.Ledger) []model.Task {
	var due []model.Task
	for _, t := range tasks {
		if t.IsOverdue(now) && !notified.Has(t.ID) {
			due = append(due, t)
		}
	}
	return due
}

// IDs extracts task ids in order.
func IDs(tasks []model.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
