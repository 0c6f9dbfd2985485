package models

import (
	"testing"
	"time"
)

func TestTaskIDLinkage(t *testing.T) {
	t.Run("TaskIDForEvent prefixes the event id", func(t *testing.T) {
		if got := TaskIDForEvent("abc-123"); got != "task-abc-123" {
			t.Errorf("expected task-abc-123, got %s", got)
		}
	})

	t.Run("EventIDForTask recovers the event id", func(t *testing.T) {
		id, ok := EventIDForTask("task-abc-123")
		if !ok {
			t.Fatal("expected calendar task id to be recognized")
		}
		if id != "abc-123" {
			t.Errorf("expected abc-123, got %s", id)
		}
	})

	t.Run("EventIDForTask rejects manual task ids", func(t *testing.T) {
		if _, ok := EventIDForTask("7f3a9c"); ok {
			t.Error("expected manual task id to be rejected")
		}
	})
}

func TestParseLocalDate(t *testing.T) {
	t.Run("parses minute precision", func(t *testing.T) {
		got, err := ParseLocalDate("2026-03-10T14:30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("parses date only", func(t *testing.T) {
		got, err := ParseLocalDate("2026-03-10")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := ParseLocalDate("next tuesday"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestFormatLocalMinute(t *testing.T) {
	in := time.Date(2026, time.March, 10, 14, 30, 59, 0, time.Local)
	if got := FormatLocalMinute(in); got != "2026-03-10T14:30" {
		t.Errorf("expected 2026-03-10T14:30, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	t.Run("event requires id, title, and a parseable date", func(t *testing.T) {
		ev := Event{ID: "e1", Title: "Lecture", Date: "2026-03-10T09:00"}
		if err := ev.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		for _, bad := range []Event{
			{Title: "Lecture", Date: "2026-03-10T09:00"},
			{ID: "e1", Date: "2026-03-10T09:00"},
			{ID: "e1", Title: "Lecture", Date: "bogus"},
		} {
			if err := bad.Validate(); err == nil {
				t.Errorf("expected error for %+v", bad)
			}
		}
	})

	t.Run("task due date is optional but must parse when set", func(t *testing.T) {
		task := Task{ID: "t1", Title: "Buy milk"}
		if err := task.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		task.DueDate = "not a date"
		if err := task.Validate(); err == nil {
			t.Error("expected error for unparseable due date")
		}
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("Ignore is idempotent", func(t *testing.T) {
		var snap Snapshot
		snap.Ignore("e1")
		snap.Ignore("e1")
		if len(snap.IgnoredEventIDs) != 1 {
			t.Errorf("expected 1 tombstone, got %d", len(snap.IgnoredEventIDs))
		}
		if !snap.IsIgnored("e1") {
			t.Error("expected e1 to be ignored")
		}
	})

	t.Run("Clone does not alias the original", func(t *testing.T) {
		snap := Snapshot{
			Events: []Event{{ID: "e1", Title: "A", Date: "2026-03-10"}},
			Tasks:  []Task{{ID: "t1", Title: "B"}},
		}
		clone := snap.Clone()
		clone.Events[0].Title = "changed"
		clone.Tasks[0].Completed = true

		if snap.Events[0].Title != "A" {
			t.Error("clone aliased Events")
		}
		if snap.Tasks[0].Completed {
			t.Error("clone aliased Tasks")
		}
	})

	t.Run("Normalize replaces nil collections", func(t *testing.T) {
		var snap Snapshot
		snap.Normalize()
		if snap.Events == nil || snap.Tasks == nil || snap.Sources == nil || snap.IgnoredEventIDs == nil {
			t.Error("expected all collections to be non-nil")
		}
	})

	t.Run("index helpers return -1 for misses", func(t *testing.T) {
		var snap Snapshot
		if snap.EventIndex("x") != -1 || snap.TaskIndex("x") != -1 ||
			snap.SourceIndex("x") != -1 || snap.SourceIndexByURL("x") != -1 {
			t.Error("expected -1 for all lookups on empty snapshot")
		}
	})
}
