package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// Filter selects a task subset for listing.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterAuto      Filter = "auto" // calendar-derived tasks only
	FilterOverdue   Filter = "overdue"
	FilterUpcoming  Filter = "upcoming"
)

// ParseFilter validates a user-supplied filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterActive, FilterCompleted, FilterAuto, FilterOverdue, FilterUpcoming:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", shared.ErrInvalidArgument, s)
	}
}

// FilterTasks is a pure projection from the task collection to a view
// subset; the snapshot is never mutated.
func FilterTasks(tasks []models.Task, filter Filter, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesFilter(t, filter, now) {
			out = append(out, t)
		}
	}
	return out
}

func matchesFilter(t models.Task, filter Filter, now time.Time) bool {
	switch filter {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterAuto:
		return t.FromCalendar
	case FilterOverdue:
		due, ok := dueTime(t)
		return ok && !t.Completed && due.Before(now)
	case FilterUpcoming:
		due, ok := dueTime(t)
		return ok && !t.Completed && !due.Before(now)
	default:
		return true
	}
}

// SortTasks orders tasks for display: active before completed, then by due
// date, with undated tasks last. The sort is stable so feed order breaks ties.
func SortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		aDue, aOK := dueTime(a)
		bDue, bOK := dueTime(b)
		switch {
		case aOK && bOK:
			return aDue.Before(bDue)
		case aOK:
			return true
		default:
			return false
		}
	})
}

func dueTime(t models.Task) (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := models.ParseLocalDate(t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}
