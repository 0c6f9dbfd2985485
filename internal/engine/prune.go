package engine

import (
	"github.com/mkhault/calsync/internal/models"
)

// Prune removes every event dated before the cutoff and every task whose
// due date precedes it. Tasks without a due date are always retained, as
// are entries whose dates do not parse. Returns how many records were removed.
func (e *Engine) Prune(snap *models.Snapshot) int {
	removed := 0

	events := snap.Events[:0]
	for _, ev := range snap.Events {
		t, err := models.ParseLocalDate(ev.Date)
		if err == nil && t.Before(e.cutoff) {
			removed++
			continue
		}
		events = append(events, ev)
	}
	snap.Events = events

	tasks := snap.Tasks[:0]
	for _, task := range snap.Tasks {
		if task.DueDate != "" {
			t, err := models.ParseLocalDate(task.DueDate)
			if err == nil && t.Before(e.cutoff) {
				removed++
				continue
			}
		}
		tasks = append(tasks, task)
	}
	snap.Tasks = tasks

	if removed > 0 {
		e.logger.Info("pruned records before retention cutoff",
			"cutoff", e.cutoff.Format(models.DateLayout), "removed", removed)
	}

	return removed
}
