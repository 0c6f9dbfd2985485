package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// TaskIDPrefix links a calendar-derived task to its originating event.
const TaskIDPrefix = "task-"

// Local-time layouts used throughout the engine. Timed events carry minute
// precision; all-day events carry a midnight time component so that every
// stored date shares the same "YYYY-MM-DD" prefix for day bucketing.
const (
	DateTimeLayout = "2006-01-02T15:04"
	DateLayout     = "2006-01-02"
)

// Event is a calendar event imported from an external feed.
// Events are immutable except for full replacement on re-import.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"` // local-time ISO string, minute precision
	Description string `json:"description"`
	SourceName  string `json:"source,omitempty"`
}

// Task is a to-do item, either user-created or derived from an assessment event.
type Task struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	DueDate      string `json:"dueDate,omitempty"`
	Description  string `json:"description"`
	Completed    bool   `json:"completed"`
	FromCalendar bool   `json:"fromCalendar"`
	IsAllDay     bool   `json:"isAllDay,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// Source is a registered calendar feed. File uploads are one-shot and are
// not registered, so every Source has a URL in practice; the field stays
// optional to mirror the persisted shape.
type Source struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	LastSync string `json:"lastSync"`
}

// Snapshot is the aggregate store state: the unit of persistence and the
// unit of replication.
type Snapshot struct {
	Events          []Event  `json:"events"`
	Tasks           []Task   `json:"tasks"`
	Sources         []Source `json:"sources"`
	IgnoredEventIDs []string `json:"ignoredEventIds"`
}

// Validate checks the event for required fields.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if _, err := ParseLocalDate(e.Date); err != nil {
		return fmt.Errorf("event date %q: %w", e.Date, err)
	}
	return nil
}

// Validate checks the task for required fields.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if t.DueDate != "" {
		if _, err := ParseLocalDate(t.DueDate); err != nil {
			return fmt.Errorf("task due date %q: %w", t.DueDate, err)
		}
	}
	return nil
}

// Validate checks the source for required fields.
func (s Source) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("source id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	return nil
}

// TaskIDForEvent returns the deterministic id of the task derived from the given event.
func TaskIDForEvent(eventID string) string {
	return TaskIDPrefix + eventID
}

// EventIDForTask recovers the originating event id from a calendar-derived
// task id. The second return is false for user-created task ids.
func EventIDForTask(taskID string) (string, bool) {
	if !strings.HasPrefix(taskID, TaskIDPrefix) {
		return "", false
	}
	return strings.TrimPrefix(taskID, TaskIDPrefix), true
}

// ParseLocalDate parses a stored local-time date string in either the
// minute-precision or date-only form.
func ParseLocalDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateTimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FormatLocalMinute renders t in the engine's canonical local-time form,
// truncated to minute precision.
func FormatLocalMinute(t time.Time) string {
	return t.In(time.Local).Format(DateTimeLayout)
}

// EventIndex returns the position of the event with the given id, or -1.
func (s *Snapshot) EventIndex(id string) int {
	return slices.IndexFunc(s.Events, func(e Event) bool { return e.ID == id })
}

// TaskIndex returns the position of the task with the given id, or -1.
func (s *Snapshot) TaskIndex(id string) int {
	return slices.IndexFunc(s.Tasks, func(t Task) bool { return t.ID == id })
}

// SourceIndex returns the position of the source with the given id, or -1.
func (s *Snapshot) SourceIndex(id string) int {
	return slices.IndexFunc(s.Sources, func(src Source) bool { return src.ID == id })
}

// SourceIndexByURL returns the position of the source with the given url, or -1.
func (s *Snapshot) SourceIndexByURL(url string) int {
	return slices.IndexFunc(s.Sources, func(src Source) bool { return src.URL == url })
}

// IsIgnored reports whether the event id has been tombstoned by a user deletion.
func (s *Snapshot) IsIgnored(eventID string) bool {
	return slices.Contains(s.IgnoredEventIDs, eventID)
}

// Ignore adds the event id to the tombstone set if not already present.
func (s *Snapshot) Ignore(eventID string) {
	if !s.IsIgnored(eventID) {
		s.IgnoredEventIDs = append(s.IgnoredEventIDs, eventID)
	}
}

// Clone returns a deep copy of the snapshot. Callers that hand snapshots
// across goroutine boundaries (replication, UI projections) always work on
// a clone so the coordinator's copy is never aliased.
func (s *Snapshot) Clone() Snapshot {
	return Snapshot{
		Events:          slices.Clone(s.Events),
		Tasks:           slices.Clone(s.Tasks),
		Sources:         slices.Clone(s.Sources),
		IgnoredEventIDs: slices.Clone(s.IgnoredEventIDs),
	}
}

// Normalize replaces nil collections with empty ones. Remote payloads and
// old backups may omit fields entirely; downstream code assumes non-nil slices.
func (s *Snapshot) Normalize() {
	if s.Events == nil {
		s.Events = []Event{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.Sources == nil {
		s.Sources = []Source{}
	}
	if s.IgnoredEventIDs == nil {
		s.IgnoredEventIDs = []string{}
	}
}
