package google

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/index"
	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/harrisonrobin/duewatch/pkg/util"
	"google.golang.org/api/calendar/v3"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx}
}

// SyncTask creates the event mirroring task or patches the existing one.
func (c *CalendarClient) SyncTask(ctx context.Context, task model.Task, now time.Time) (*calendar.Event, error) {
	event, err := util.ConvertTaskToCalendarEvent(&task, now)
	if err != nil {
		return nil, err
	}

	existingEvent, err := c.findEvent(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}

	if existingEvent != nil {
		patch, err := util.EventNeedsUpdate(existingEvent, event)
		if err != nil {
			return nil, fmt.Errorf("could not compare task with its calendar event: %w", err)
		}
		if patch == nil {
			c.remember(task.ID, existingEvent.Id)
			return existingEvent, nil
		}
		updated, err := c.PatchEvent(ctx, existingEvent.Id, patch)
		if err != nil {
			return nil, err
		}
		c.remember(task.ID, updated.Id)
		return updated, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	c.remember(task.ID, created.Id)
	return created, nil
}

// findEvent looks in the local index first and falls back to an API search.
func (c *CalendarClient) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	if c.index != nil {
		if eventID := c.index.Get(taskID); eventID != "" {
			event, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err == nil && event.Status != "cancelled" {
				return event, nil
			}
			c.index.Remove(taskID)
		}
	}
	return c.GetEventByTaskID(ctx, taskID)
}

func (c *CalendarClient) remember(taskID, eventID string) {
	if c.index != nil {
		c.index.Set(taskID, eventID)
	}
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// GetEventByTaskID searches for an event carrying the task id in its private extended properties.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// SaveIndex persists the task to event mappings learnt so far.
func (c *CalendarClient) SaveIndex() error {
	if c.index == nil {
		return nil
	}
	return c.index.Save()
}
