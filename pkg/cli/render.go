package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/harrisonrobin/duewatch/pkg/notify"
	"github.com/harrisonrobin/duewatch/pkg/tasklist"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	columnStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Width(40)
)

type renderFunc func(tasks []model.Task, notified func(id string) bool, now time.Time, loc *time.Location) string

func viewRenderer(view string) (renderFunc, error) {
	switch view {
	case "", "list":
		return renderList, nil
	case "board":
		return renderBoard, nil
	case "calendar":
		return renderCalendar, nil
	}
	return nil, fmt.Errorf("unknown view %q (want list, board or calendar)", view)
}

// taskLine renders one task. Overdue tasks are red; a bell marks tasks that
// have already raised an alert.
func taskLine(t model.Task, notified func(string) bool, now time.Time, loc *time.Location) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	due := "no due date"
	if t.HasDueDate() {
		due = t.DueDate.In(loc).Format(notify.DueLayout)
	}

	line := fmt.Sprintf("%s %s (%s)", box, t.Title, due)
	switch {
	case t.Completed:
		line = doneStyle.Render(line)
	case t.IsOverdue(now):
		line = overdueStyle.Render(line)
	}
	if notified != nil && notified(t.ID) {
		line += " 🔔"
	}
	return line + " " + idStyle.Render(t.ID)
}

func renderList(tasks []model.Task, notified func(string) bool, now time.Time, loc *time.Location) string {
	if len(tasks) == 0 {
		return "No tasks."
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, taskLine(t, notified, now, loc))
	}
	return strings.Join(lines, "\n")
}

func renderBoard(tasks []model.Task, notified func(string) bool, now time.Time, loc *time.Location) string {
	cols := tasklist.Board(tasks)
	rendered := make([]string, 0, len(cols))
	for _, col := range cols {
		body := headingStyle.Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks)))
		for _, t := range col.Tasks {
			body += "\n" + taskLine(t, notified, now, loc)
		}
		rendered = append(rendered, columnStyle.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderCalendar(tasks []model.Task, notified func(string) bool, now time.Time, loc *time.Location) string {
	days := tasklist.ByDay(tasks, loc)
	if len(days) == 0 {
		return "No scheduled tasks."
	}
	var b strings.Builder
	for i, d := range days {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(headingStyle.Render(d.Date.Format("Monday, Jan 2 2006")))
		for _, t := range d.Tasks {
			b.WriteString("\n  ")
			b.WriteString(taskLine(t, notified, now, loc))
		}
	}
	return b.String()
}
