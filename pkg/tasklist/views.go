package tasklist

import (
	"sort"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/model"
)

// Column is one lane of the board view.
type Column struct {
	Title string
	Tasks []model.Task
}

// Board splits tasks into "To Do" and "Done" lanes, keeping collection order.
func Board(tasks []model.Task) []Column {
	todo := Column{Title: "To Do"}
	done := Column{Title: "Done"}
	for _, t := range tasks {
		if t.Completed {
			done.Tasks = append(done.Tasks, t)
		} else {
			todo.Tasks = append(todo.Tasks, t)
		}
	}
	return []Column{todo, done}
}

// Day is one date of the calendar view.
type Day struct {
	Date  time.Time
	Tasks []model.Task
}

// ByDay groups tasks by their due day in loc, earliest day first. Tasks
// without a due date are left out.
func ByDay(tasks []model.Task, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	byDate := make(map[time.Time]*Day)
	for _, t := range tasks {
		if !t.HasDueDate() {
			continue
		}
		local := t.DueDate.In(loc)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		d, ok := byDate[date]
		if !ok {
			d = &Day{Date: date}
			byDate[date] = d
		}
		d.Tasks = append(d.Tasks, t)
	}

	days := make([]Day, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
