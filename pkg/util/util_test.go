package util

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/model"
	"google.golang.org/api/calendar/v3"
)

func TestConvertTaskToCalendarEvent(t *testing.T) {
	due := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	desc := "Note 1"
	task := &model.Task{
		ID:          "12345678-1234-1234-1234-123456789012",
		Title:       "Test Task",
		Description: &desc,
		DueDate:     due,
	}

	event, err := ConvertTaskToCalendarEvent(task, due.Add(time.Hour))
	if err != nil {
		t.Fatalf("ConvertTaskToCalendarEvent failed: %v", err)
	}

	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		t.Fatal("ExtendedProperties or Private map is nil")
	}
	if val, ok := event.ExtendedProperties.Private[TaskIDProperty]; !ok || val != task.ID {
		t.Errorf("Expected %s %s, got %v", TaskIDProperty, task.ID, val)
	}
	if event.Summary != "! Test Task" {
		t.Errorf("Expected overdue summary, got %q", event.Summary)
	}
	if event.Start.DateTime != "2023-01-01T12:00:00Z" || event.End.DateTime != "2023-01-01T12:30:00Z" {
		t.Errorf("Unexpected span %s - %s", event.Start.DateTime, event.End.DateTime)
	}
	if !strings.Contains(event.Description, "Note 1") || !strings.Contains(event.Description, "Status: overdue") {
		t.Errorf("Unexpected description: %s", event.Description)
	}

	id, ok := GetTaskIDFromEventDescription(event.Description)
	if !ok || id != task.ID {
		t.Errorf("Expected to parse %s from description, got %q", task.ID, id)
	}
}

func TestSummary(t *testing.T) {
	due := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	task := &model.Task{Title: "Pay rent", DueDate: due}

	if got := Summary(task, due); got != "Pay rent" {
		t.Errorf("due exactly now is not overdue, got %q", got)
	}
	if got := Summary(task, due.Add(time.Second)); got != "! Pay rent" {
		t.Errorf("expected overdue prefix, got %q", got)
	}
	task.Completed = true
	if got := Summary(task, due.Add(time.Second)); got != "✓ Pay rent" {
		t.Errorf("expected completed prefix, got %q", got)
	}
}

func TestConvertRejectsMissingDueDate(t *testing.T) {
	if _, err := ConvertTaskToCalendarEvent(&model.Task{ID: "a"}, time.Now()); err == nil {
		t.Error("expected error for task without due date")
	}
	if _, err := ConvertTaskToCalendarEvent(nil, time.Now()); err == nil {
		t.Error("expected error for nil task")
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	due := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	task := &model.Task{ID: "a", Title: "Pay rent", DueDate: due}

	before, _ := ConvertTaskToCalendarEvent(task, due.Add(-time.Hour))
	after, _ := ConvertTaskToCalendarEvent(task, due.Add(time.Hour))

	patch, err := EventNeedsUpdate(before, before)
	if err != nil || patch != nil {
		t.Fatalf("expected no patch, got %v, %v", patch, err)
	}

	patch, err = EventNeedsUpdate(before, after)
	if err != nil {
		t.Fatalf("EventNeedsUpdate failed: %v", err)
	}
	if patch == nil || patch.Summary != "! Pay rent" || patch.ColorId != colorOverdue {
		t.Errorf("expected summary and colour patch, got %+v", patch)
	}
	if patch.Start != nil {
		t.Errorf("times did not change, got start %v", patch.Start)
	}

	bare := &calendar.Event{Summary: after.Summary, Description: after.Description, ColorId: after.ColorId}
	patch, err = EventNeedsUpdate(bare, after)
	if err != nil || patch == nil || patch.Start == nil {
		t.Errorf("expected span patch for event without times, got %+v, %v", patch, err)
	}
}
