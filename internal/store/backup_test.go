package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mkhault/calsync/internal/shared"
)

func TestBackupRoundTrip(t *testing.T) {
	snap := sampleSnapshot()

	data, err := Export(snap)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"events", "tasks", "sources", "ignoredEvents", "version", "exportedAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export missing key %q", key)
		}
	}

	got, err := Restore(data)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(got.Events) != len(snap.Events) || len(got.Tasks) != len(snap.Tasks) {
		t.Errorf("collections did not round-trip: %d/%d events, %d/%d tasks",
			len(got.Events), len(snap.Events), len(got.Tasks), len(snap.Tasks))
	}
	if !got.IsIgnored("ev-gone") {
		t.Error("tombstone did not round-trip")
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	for name, payload := range map[string][]byte{
		"not JSON":     []byte("BEGIN:VCALENDAR"),
		"wrong shape":  []byte(`{"hello": "world"}`),
		"empty object": []byte(`{}`),
	} {
		if _, err := Restore(payload); !errors.Is(err, shared.ErrInvalidBackup) {
			t.Errorf("%s: expected ErrInvalidBackup, got %v", name, err)
		}
	}
}

func TestRestoreNormalizesPartialDocuments(t *testing.T) {
	// Old backups may omit collections entirely.
	got, err := Restore([]byte(`{"version": "1.0", "tasks": [{"id": "t1", "title": "only"}]}`))
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got.Events == nil || got.Sources == nil || got.IgnoredEventIDs == nil {
		t.Error("expected missing collections normalized to empty")
	}
	if len(got.Tasks) != 1 {
		t.Errorf("expected 1 task, got %d", len(got.Tasks))
	}
}
