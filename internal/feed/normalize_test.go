package feed

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkhault/calsync/internal/shared"
)

// buildICS wraps VEVENT bodies in a minimal VCALENDAR document.
func buildICS(events ...[]string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//calsync//test//EN",
	}
	for _, ev := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, ev...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParse(t *testing.T) {
	window := ExpandOptions{
		RangeStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local),
		RangeEnd:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.Local),
	}

	t.Run("timed event with UTC start", func(t *testing.T) {
		data := buildICS([]string{
			"UID:ev-1",
			"SUMMARY:Midterm Exam",
			"DESCRIPTION:Chapters 1-5",
			"DTSTART:20260310T140000Z",
		})

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		ev := events[0]
		if ev.ID != "ev-1" {
			t.Errorf("expected UID ev-1, got %s", ev.ID)
		}
		if ev.Title != "Midterm Exam" {
			t.Errorf("expected title Midterm Exam, got %s", ev.Title)
		}
		if ev.AllDay {
			t.Error("expected timed event")
		}
		want := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)
		if !ev.Start.Equal(want) {
			t.Errorf("expected start %v, got %v", want, ev.Start)
		}
	})

	t.Run("all-day event sits at local midnight", func(t *testing.T) {
		data := buildICS([]string{
			"UID:ev-2",
			"SUMMARY:Reading day",
			"DTSTART;VALUE=DATE:20260412",
		})

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}

		ev := events[0]
		if !ev.AllDay {
			t.Error("expected all-day event")
		}
		want := time.Date(2026, time.April, 12, 0, 0, 0, 0, time.Local)
		if !ev.Start.Equal(want) {
			t.Errorf("expected start %v, got %v", want, ev.Start)
		}
		if ev.DateString() != "2026-04-12T00:00" {
			t.Errorf("expected 2026-04-12T00:00, got %s", ev.DateString())
		}
	})

	t.Run("missing UID gets a generated id", func(t *testing.T) {
		data := buildICS([]string{
			"SUMMARY:No UID",
			"DTSTART:20260310T140000Z",
		})

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if !strings.HasPrefix(events[0].ID, "event-") {
			t.Errorf("expected generated event- id, got %s", events[0].ID)
		}
	})

	t.Run("malformed VEVENT is skipped, not fatal", func(t *testing.T) {
		data := buildICS(
			[]string{
				"UID:broken",
				"SUMMARY:No start time",
			},
			[]string{
				"UID:ok",
				"SUMMARY:Fine",
				"DTSTART:20260310T140000Z",
			},
		)

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].ID != "ok" {
			t.Errorf("expected surviving event ok, got %s", events[0].ID)
		}
	})

	t.Run("truncated date-only DTSTART is skipped, not fatal", func(t *testing.T) {
		data := buildICS(
			[]string{
				"UID:truncated",
				"SUMMARY:Year only",
				"DTSTART:2026",
			},
			[]string{
				"UID:ok",
				"SUMMARY:Fine",
				"DTSTART:20260310T140000Z",
			},
		)

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].ID != "ok" {
			t.Errorf("expected surviving event ok, got %s", events[0].ID)
		}
	})

	t.Run("invalid document fails with ErrInvalidFeed", func(t *testing.T) {
		for name, payload := range map[string][]byte{
			"empty":    []byte("   \n"),
			"not ICS":  []byte("{\"events\": []}"),
			"HTML 404": []byte("<html><body>Not Found</body></html>"),
		} {
			if _, err := Parse(payload, window); !errors.Is(err, shared.ErrInvalidFeed) {
				t.Errorf("%s: expected ErrInvalidFeed, got %v", name, err)
			}
		}
	})
}

func TestParseRecurrence(t *testing.T) {
	window := ExpandOptions{
		RangeStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local),
		RangeEnd:   time.Date(2026, time.December, 31, 0, 0, 0, 0, time.Local),
	}

	t.Run("weekly rule expands inside the window", func(t *testing.T) {
		data := buildICS([]string{
			"UID:rec-1",
			"SUMMARY:Weekly quiz",
			"DTSTART:20260310T090000Z",
			"RRULE:FREQ=WEEKLY;COUNT=3",
		})

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 occurrences, got %d", len(events))
		}

		if events[0].ID != "rec-1" {
			t.Errorf("expected base occurrence to keep the feed UID, got %s", events[0].ID)
		}
		for _, ev := range events[1:] {
			if !strings.HasPrefix(ev.ID, "rec-1@") {
				t.Errorf("expected suffixed instance id, got %s", ev.ID)
			}
		}

		// Occurrence ids must be stable across parses.
		again, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range events {
			if events[i].ID != again[i].ID {
				t.Errorf("occurrence %d id changed between parses: %s vs %s", i, events[i].ID, again[i].ID)
			}
		}
	})

	t.Run("EXDATE removes the excluded occurrence", func(t *testing.T) {
		data := buildICS([]string{
			"UID:rec-2",
			"SUMMARY:Weekly quiz",
			"DTSTART:20260310T090000Z",
			"RRULE:FREQ=WEEKLY;COUNT=3",
			"EXDATE:20260317T090000Z",
		})

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 occurrences after exclusion, got %d", len(events))
		}
		excluded := time.Date(2026, time.March, 17, 9, 0, 0, 0, time.UTC)
		for _, ev := range events {
			if ev.Start.Equal(excluded) {
				t.Errorf("excluded occurrence still present: %v", ev.Start)
			}
		}
	})

	t.Run("unparseable rule falls back to the base occurrence", func(t *testing.T) {
		data := buildICS([]string{
			"UID:rec-3",
			"SUMMARY:Broken rule",
			"DTSTART:20260310T090000Z",
			"RRULE:FREQ=NEVERLY",
		})

		events, err := Parse(data, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected base occurrence only, got %d", len(events))
		}
		if events[0].ID != "rec-3" {
			t.Errorf("expected rec-3, got %s", events[0].ID)
		}
	})

	t.Run("occurrence cap bounds expansion", func(t *testing.T) {
		data := buildICS([]string{
			"UID:rec-4",
			"SUMMARY:Daily standup",
			"DTSTART:20260310T090000Z",
			"RRULE:FREQ=DAILY",
		})

		capped := window
		capped.MaxOccurrences = 5
		events, err := Parse(data, capped)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 5 {
			t.Fatalf("expected 5 occurrences, got %d", len(events))
		}
	})
}
