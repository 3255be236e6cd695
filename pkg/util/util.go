package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/model"
	"google.golang.org/api/calendar/v3"
)

const (
	// TaskIDProperty is the private extended property linking an event to its task.
	TaskIDProperty = "todo_id"

	OverduePrefix   = "!"
	CompletedPrefix = "✓"

	// Calendar colour ids.
	colorOpen      = "9"
	colorOverdue   = "11"
	colorCompleted = "8"

	eventDuration = 30 * time.Minute
)

// Summary is the event title for a task at now.
func Summary(task *model.Task, now time.Time) string {
	switch {
	case task.Completed:
		return fmt.Sprintf("%s %s", CompletedPrefix, task.Title)
	case task.IsOverdue(now):
		return fmt.Sprintf("%s %s", OverduePrefix, task.Title)
	}
	return task.Title
}

func colorID(task *model.Task, now time.Time) string {
	switch {
	case task.Completed:
		return colorCompleted
	case task.IsOverdue(now):
		return colorOverdue
	}
	return colorOpen
}

// ConvertTaskToCalendarEvent builds the event mirroring task: a short block
// starting at the due date.
func ConvertTaskToCalendarEvent(task *model.Task, now time.Time) (*calendar.Event, error) {
	if task == nil {
		return nil, fmt.Errorf("could not convert nil Task")
	}
	if !task.HasDueDate() {
		return nil, fmt.Errorf("task has no due date: %s", task.ID)
	}

	start := task.DueDate.UTC()
	end := start.Add(eventDuration)

	var desc strings.Builder
	if d := task.DescriptionText(); d != "" {
		desc.WriteString(d)
		desc.WriteString("\n\n")
	}
	status := "open"
	if task.Completed {
		status = "completed"
	} else if task.IsOverdue(now) {
		status = "overdue"
	}
	desc.WriteString(fmt.Sprintf("Status: %s\n", status))
	desc.WriteString(fmt.Sprintf("ID: %s\n", task.ID))

	return &calendar.Event{
		Summary:     Summary(task, now),
		ColorId:     colorID(task, now),
		Description: desc.String(),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: task.ID},
		},
	}, nil
}

// EventNeedsUpdate returns a patch carrying the fields of target that differ
// from existing, or nil when they already match.
func EventNeedsUpdate(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	sameTimes, err := sameSpan(existing, target)
	if err != nil {
		return nil, err
	}
	if !sameTimes {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func sameSpan(a, b *calendar.Event) (bool, error) {
	if a.Start == nil || a.End == nil {
		return false, nil
	}
	pairs := [][2]string{
		{a.Start.DateTime, b.Start.DateTime},
		{a.End.DateTime, b.End.DateTime},
	}
	for _, p := range pairs {
		x, err := time.Parse(time.RFC3339, p[0])
		if err != nil {
			return false, err
		}
		y, err := time.Parse(time.RFC3339, p[1])
		if err != nil {
			return false, err
		}
		if !x.Equal(y) {
			return false, nil
		}
	}
	return true, nil
}

// GetTaskIDFromEventDescription parses the task ID from the event description.
func GetTaskIDFromEventDescription(description string) (string, bool) {
	for _, line := range strings.Split(description, "\n") {
		if id, ok := strings.CutPrefix(line, "ID: "); ok && id != "" {
			return id, true
		}
	}
	return "", false
}
