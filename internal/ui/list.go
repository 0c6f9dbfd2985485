package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/mkhault/calsync/internal/models"
)

var _ list.Item = taskItem{}

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task models.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	box := "[ ]"
	if i.task.Completed {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.task.Title)
}

func (i taskItem) Description() string {
	desc := "no due date"
	if i.task.DueDate != "" {
		desc = "due " + i.task.DueDate
	}
	if i.task.FromCalendar {
		desc = fmt.Sprintf("%s • from calendar", desc)
	}
	return desc
}
