package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkhault/calsync/internal/feed"
	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// SourceType distinguishes pulled URLs from one-shot file uploads.
type SourceType string

const (
	SourceTypeURL  SourceType = "url"
	SourceTypeFile SourceType = "file"
)

// SourceDescriptor identifies where an import came from. Only URL sources
// are registered for re-sync.
type SourceDescriptor struct {
	URL  string
	Name string
	Type SourceType
}

// ImportResult tallies one merge pass.
type ImportResult struct {
	ImportedEvents int
	CreatedTasks   int
}

// Engine merges normalized feed events into a snapshot.
type Engine struct {
	cutoff time.Time
	logger *log.Logger
}

// NewEngine creates an Engine with the given retention cutoff.
func NewEngine(cutoff time.Time, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{cutoff: cutoff, logger: logger}
}

// Cutoff returns the retention cutoff this engine was built with.
func (e *Engine) Cutoff() time.Time { return e.cutoff }

// Merge applies normalized events to the snapshot in feed order and
// records source bookkeeping. The snapshot is mutated in place; the caller
// owns persistence and propagation.
func (e *Engine) Merge(snap *models.Snapshot, events []feed.NormalizedEvent, src SourceDescriptor) ImportResult {
	var result ImportResult
	now := time.Now().UTC().Format(time.RFC3339)

	for _, ev := range events {
		// Retention filter: never stored, never counted.
		if ev.Start.Before(e.cutoff) {
			continue
		}

		// Tombstone filter: the user deleted this one; it must not resurrect.
		if snap.IsIgnored(ev.ID) {
			e.logger.Debug("skipping ignored event", "id", ev.ID, "title", ev.Title)
			continue
		}

		event := models.Event{
			ID:          ev.ID,
			Title:       ev.Title,
			Date:        ev.DateString(),
			Description: ev.Description,
			SourceName:  src.Name,
		}
		if idx := snap.EventIndex(event.ID); idx >= 0 {
			snap.Events[idx] = event
		} else {
			snap.Events = append(snap.Events, event)
		}
		result.ImportedEvents++

		if !feed.IsAssessment(ev.Title, ev.Description) {
			continue
		}

		task := models.Task{
			ID:           models.TaskIDForEvent(ev.ID),
			Title:        "📚 " + ev.Title,
			DueDate:      event.Date,
			Description:  fmt.Sprintf("Auto-imported from %s\n\n%s", src.Name, ev.Description),
			Completed:    false,
			FromCalendar: true,
			IsAllDay:     ev.AllDay,
			CreatedAt:    now,
		}
		if idx := snap.TaskIndex(task.ID); idx >= 0 {
			// Full overwrite, including the completed flag.
			snap.Tasks[idx] = task
		} else {
			snap.Tasks = append(snap.Tasks, task)
			result.CreatedTasks++
		}
	}

	if src.URL != "" {
		if idx := snap.SourceIndexByURL(src.URL); idx >= 0 {
			snap.Sources[idx].LastSync = now
		} else {
			snap.Sources = append(snap.Sources, models.Source{
				ID:       shared.GenerateID(),
				Name:     src.Name,
				URL:      src.URL,
				LastSync: now,
			})
		}
	}

	e.logger.Info("merge complete",
		"source", src.Name,
		"imported_events", result.ImportedEvents,
		"created_tasks", result.CreatedTasks)

	return result
}

// NewTask builds a user-created task with a generated id.
func NewTask(title, dueDate, description string) models.Task {
	return models.Task{
		ID:          shared.GenerateID(),
		Title:       title,
		DueDate:     dueDate,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// UpdateTask edits a task's user-visible fields in place.
func UpdateTask(snap *models.Snapshot, id, title, dueDate, description string) error {
	idx := snap.TaskIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	snap.Tasks[idx].Title = title
	snap.Tasks[idx].DueDate = dueDate
	snap.Tasks[idx].Description = description
	return nil
}

// ToggleTask flips a task's completion state and returns the new state.
func ToggleTask(snap *models.Snapshot, id string) (bool, error) {
	idx := snap.TaskIndex(id)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	snap.Tasks[idx].Completed = !snap.Tasks[idx].Completed
	return snap.Tasks[idx].Completed, nil
}

// DeleteTask removes a task. For calendar-derived tasks this is the
// inverse of derivation: the originating event is removed too and its id
// is tombstoned so future imports do not recreate either.
func DeleteTask(snap *models.Snapshot, id string) error {
	idx := snap.TaskIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	task := snap.Tasks[idx]

	if task.FromCalendar {
		if eventID, ok := models.EventIDForTask(task.ID); ok {
			snap.Ignore(eventID)
			if evIdx := snap.EventIndex(eventID); evIdx >= 0 {
				snap.Events = append(snap.Events[:evIdx], snap.Events[evIdx+1:]...)
			}
		}
	}

	snap.Tasks = append(snap.Tasks[:idx], snap.Tasks[idx+1:]...)
	return nil
}

// DeleteCompleted removes every completed task and reports how many.
// Calendar-derived tasks are not tombstoned here; a later sync may
// re-derive them.
func DeleteCompleted(snap *models.Snapshot) int {
	kept := snap.Tasks[:0]
	removed := 0
	for _, t := range snap.Tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	snap.Tasks = kept
	return removed
}

// RemoveSource unregisters a feed. Its already-imported events and tasks stay.
func RemoveSource(snap *models.Snapshot, id string) error {
	idx := snap.SourceIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", shared.ErrSourceNotFound, id)
	}
	snap.Sources = append(snap.Sources[:idx], snap.Sources[idx+1:]...)
	return nil
}
