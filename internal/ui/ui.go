package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkhault/calsync/internal/engine"
	"github.com/mkhault/calsync/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TaskListView ViewState = iota
	ConfirmDeleteView
)

// filterCycle is the order the f key walks through.
var filterCycle = []engine.Filter{
	engine.FilterAll,
	engine.FilterActive,
	engine.FilterCompleted,
	engine.FilterAuto,
	engine.FilterOverdue,
	engine.FilterUpcoming,
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	state  engine.State
	view   ViewState
	filter int // index into filterCycle

	width  int
	height int

	taskList      list.Model
	listReady     bool
	pendingDelete *models.Task
	statusLine    string
	err           error

	help help.Model
	keys keyMap
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type mutationDoneMsg struct {
	status string
	err    error
}

// NewModel creates a new TUI model backed by the coordinator's state handle.
func NewModel(ctx context.Context, state engine.State) *Model {
	return &Model{
		ctx:   ctx,
		state: state,
		view:  TaskListView,
		help:  help.New(),
		keys:  newKeyMap(),
	}
}

// Init loads the initial task list.
func (m *Model) Init() tea.Cmd {
	return m.loadTasks()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.taskList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TaskListView:
			return m.handleTaskListKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case tasksLoadedMsg:
		items := make([]list.Item, len(msg.tasks))
		for i, t := range msg.tasks {
			items[i] = taskItem{task: t}
		}
		if !m.listReady {
			m.taskList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.taskList.SetSize(m.width-4, m.height-8)
			m.listReady = true
		} else {
			m.taskList.SetItems(items)
		}
		m.taskList.Title = fmt.Sprintf("Tasks (%s)", filterCycle[m.filter])
		return m, nil

	case mutationDoneMsg:
		m.err = msg.err
		m.statusLine = msg.status
		return m, m.loadTasks()
	}

	if m.listReady && m.view == TaskListView {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if !m.listReady {
		return "Loading tasks..."
	}

	switch m.view {
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return m.renderTaskList()
	}
}

func (m *Model) handleTaskListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if !m.listReady {
		return m, nil
	}

	switch msg.String() {
	case "f":
		m.filter = (m.filter + 1) % len(filterCycle)
		return m, m.loadTasks()
	case "enter", " ":
		if t, ok := m.selectedTask(); ok {
			return m, m.toggleTask(t.ID)
		}
	case "d":
		if t, ok := m.selectedTask(); ok {
			m.pendingDelete = &t
			m.view = ConfirmDeleteView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		task := m.pendingDelete
		m.pendingDelete = nil
		m.view = TaskListView
		if task != nil {
			return m, m.deleteTask(task.ID)
		}
		return m, nil
	case "n", "esc", "q", "ctrl+c":
		m.pendingDelete = nil
		m.view = TaskListView
		return m, nil
	}
	return m, nil
}

func (m *Model) selectedTask() (models.Task, bool) {
	item := m.taskList.SelectedItem()
	if item == nil {
		return models.Task{}, false
	}
	ti, ok := item.(taskItem)
	return ti.task, ok
}

func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		var tasks []models.Task
		m.state.View(func(snap models.Snapshot) {
			tasks = engine.FilterTasks(snap.Tasks, filterCycle[m.filter], time.Now())
		})
		engine.SortTasks(tasks)
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (m *Model) toggleTask(id string) tea.Cmd {
	return func() tea.Msg {
		var completed bool
		err := m.state.Mutate(m.ctx, func(snap *models.Snapshot) error {
			var err error
			completed, err = engine.ToggleTask(snap, id)
			return err
		})
		status := "marked open"
		if completed {
			status = "marked done"
		}
		return mutationDoneMsg{status: status, err: err}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.state.Mutate(m.ctx, func(snap *models.Snapshot) error {
			return engine.DeleteTask(snap, id)
		})
		return mutationDoneMsg{status: "task deleted", err: err}
	}
}

func (m *Model) renderTaskList() string {
	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.err != nil {
		footer = styles.danger.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + footer
	} else if m.statusLine != "" {
		footer = styles.muted.Render(m.statusLine) + "\n" + footer
	}
	return fmt.Sprintf("%s\n\n%s", m.taskList.View(), footer)
}

func (m *Model) renderConfirm() string {
	task := m.pendingDelete
	if task == nil {
		return ""
	}

	title := styles.heading.Render(fmt.Sprintf("Delete '%s'?", task.Title))
	info := ""
	if task.FromCalendar {
		info = styles.caution.Render(
			"This task came from a calendar feed. Deleting it also removes the\n" +
				"event and adds it to the ignored list so it will not reappear on sync.")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
