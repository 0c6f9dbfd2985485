package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mkhault/calsync/internal/engine"
	"github.com/mkhault/calsync/internal/formatter"
	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// TasksList prints tasks matching the requested filter.
func (r *Runner) TasksList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	filter, err := engine.ParseFilter(cmd.String("filter"))
	if err != nil {
		return err
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var tasks []models.Task
	sess.coord.View(func(snap models.Snapshot) {
		tasks = engine.FilterTasks(snap.Tasks, filter, time.Now())
	})
	engine.SortTasks(tasks)

	if cmd.Bool("json") {
		return r.writeJSON(tasks, cmd.Bool("pretty"))
	}

	if len(tasks) == 0 {
		r.writePlain("No tasks.\n")
		return nil
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, t.Title)
		if t.DueDate != "" {
			line += fmt.Sprintf(" (due %s)", t.DueDate)
		}
		if t.FromCalendar {
			line += " [calendar]"
		}
		r.writePlain("%s\n    id: %s\n", line, t.ID)
	}
	return nil
}

// TasksAdd creates a manual task.
func (r *Runner) TasksAdd(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: task title is required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	task := engine.NewTask(title, cmd.String("due"), cmd.String("desc"))
	if err := task.Validate(); err != nil {
		return err
	}

	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		snap.Tasks = append(snap.Tasks, task)
		return nil
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Task created: %s\n", task.ID)
	return nil
}

// TasksEdit updates a task's title, due date, or description. Flags not
// given keep the existing value.
func (r *Runner) TasksEdit(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id is required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		idx := snap.TaskIndex(id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
		}
		cur := snap.Tasks[idx]

		title, due, desc := cur.Title, cur.DueDate, cur.Description
		if cmd.IsSet("title") {
			title = cmd.String("title")
		}
		if cmd.IsSet("due") {
			due = cmd.String("due")
		}
		if cmd.IsSet("desc") {
			desc = cmd.String("desc")
		}
		return engine.UpdateTask(snap, id, title, due, desc)
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Task updated: %s\n", id)
	return nil
}

// TasksDone toggles a task's completion state.
func (r *Runner) TasksDone(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id is required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var completed bool
	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		var err error
		completed, err = engine.ToggleTask(snap, id)
		return err
	})
	if err != nil {
		return err
	}

	if completed {
		r.writePlain("✓ Task marked done\n")
	} else {
		r.writePlain("✓ Task marked open\n")
	}
	return nil
}

// TasksDelete removes a task; calendar-derived tasks also drop their
// event and tombstone its id.
func (r *Runner) TasksDelete(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id is required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		return engine.DeleteTask(snap, id)
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Task deleted\n")
	return nil
}

// TasksClear deletes all completed tasks.
func (r *Runner) TasksClear(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var removed int
	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		removed = engine.DeleteCompleted(snap)
		return nil
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Removed %d completed tasks\n", removed)
	return nil
}

// TasksExport writes tasks as CSV, Markdown, or plain text.
func (r *Runner) TasksExport(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	filter, err := engine.ParseFilter(cmd.String("filter"))
	if err != nil {
		return err
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var tasks []models.Task
	sess.coord.View(func(snap models.Snapshot) {
		tasks = engine.FilterTasks(snap.Tasks, filter, time.Now())
	})
	engine.SortTasks(tasks)

	var data []byte
	switch format := cmd.String("format"); format {
	case "csv":
		data, err = formatter.ExportToCSV(tasks)
	case "md", "markdown":
		data, err = formatter.ExportToMarkdown("Tasks", tasks)
	case "text", "txt":
		data, err = formatter.ExportToText(tasks)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		r.writePlain("✓ Exported %d tasks to %s\n", len(tasks), outputPath)
		return nil
	}

	return r.writePlain("%s", data)
}
