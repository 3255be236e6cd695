package google

import (
	"context"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// OverdueMirror marks every presented overdue task on the calendar. Calls are
// paced by a token bucket so large batches stay inside the API quota.
type OverdueMirror struct {
	client  *CalendarClient
	limiter *rate.Limiter
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewOverdueMirror(client *CalendarClient, limiter *rate.Limiter, log logrus.FieldLogger) *OverdueMirror {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 5)
	}
	return &OverdueMirror{
		client:  client,
		limiter: limiter,
		now:     time.Now,
		log:     log.WithField("component", "calendar_mirror"),
	}
}

func (m *OverdueMirror) Present(ctx context.Context, batch []model.Task) {
	now := m.now()
	for _, task := range batch {
		if err := m.limiter.Wait(ctx); err != nil {
			m.log.WithError(err).Warn("calendar mirror abandoned")
			break
		}
		event, err := m.client.SyncTask(ctx, task, now)
		if err != nil {
			m.log.WithError(err).WithField("task_id", task.ID).Error("error marking event overdue")
			continue
		}
		m.log.WithFields(logrus.Fields{"task_id": task.ID, "event_id": event.Id}).Debug("marked event overdue")
	}
	if err := m.client.SaveIndex(); err != nil {
		m.log.WithError(err).Warn("failed to save event index")
	}
}
