package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/duewatch/pkg/model"
)

// DueLayout is how due dates are shown to the user.
const DueLayout = "Jan 2, 2006 3:04 PM"

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	hintStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
)

// Alert is a terminal alert surface that shows one overdue batch at a time.
// Batches arriving while one is open wait their turn; the open batch is never
// extended or replaced.
type Alert struct {
	mu    sync.Mutex
	out   io.Writer
	loc   *time.Location
	hint  string
	open  []model.Task
	queue [][]model.Task
}

func NewAlert(out io.Writer, loc *time.Location) *Alert {
	if loc == nil {
		loc = time.Local
	}
	return &Alert{out: out, loc: loc}
}

// WithHint sets the acknowledgement hint printed under each alert.
func (a *Alert) WithHint(hint string) *Alert {
	a.hint = hint
	return a
}

func (a *Alert) Present(_ context.Context, batch []model.Task) {
	if len(batch) == 0 {
		return
	}
	batch = append([]model.Task(nil), batch...)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open != nil {
		a.queue = append(a.queue, batch)
		return
	}
	a.show(batch)
}

// Acknowledge dismisses the open batch and shows the next queued one, if any.
// It reports whether a batch was open.
func (a *Alert) Acknowledge() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.open == nil {
		return false
	}
	a.open = nil
	if len(a.queue) > 0 {
		next := a.queue[0]
		a.queue = a.queue[1:]
		a.show(next)
	}
	return true
}

// Open returns the batch currently on screen.
func (a *Alert) Open() []model.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Task(nil), a.open...)
}

// Pending is the number of batches waiting behind the open one.
func (a *Alert) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Alert) show(batch []model.Task) {
	a.open = batch
	fmt.Fprintln(a.out, Render(batch, a.loc, a.hint))
}

// Render formats a batch as a single alert box.
func Render(batch []model.Task, loc *time.Location, hint string) string {
	var b strings.Builder

	if len(batch) == 1 {
		b.WriteString(headerStyle.Render("Task Overdue!"))
		b.WriteString("\nThe following task has passed its due date:\n")
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%d Tasks Overdue!", len(batch))))
		b.WriteString("\nThe following tasks have passed their due date:\n")
	}

	for _, t := range batch {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(t.Title))
		b.WriteString("\n")
		if desc := t.DescriptionText(); desc != "" {
			b.WriteString("  " + desc + "\n")
		}
		b.WriteString(dueStyle.Render("  Due: " + t.DueDate.In(loc).Format(DueLayout)))
		b.WriteString("\n")
	}

	if hint != "" {
		b.WriteString("\n" + hintStyle.Render(hint))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
