package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// backupVersion is written into every export so future format changes can
// be detected on restore.
const backupVersion = "1.0"

// Backup is the JSON backup document. Note the key "ignoredEvents": the
// backup format predates the remote record's "ignoredEventIds" spelling
// and stays as-is for compatibility with existing backup files.
type Backup struct {
	Events        []models.Event  `json:"events"`
	Tasks         []models.Task   `json:"tasks"`
	Sources       []models.Source `json:"sources"`
	IgnoredEvents []string        `json:"ignoredEvents"`
	Version       string          `json:"version"`
	ExportedAt    string          `json:"exportedAt"`
}

// Export serializes the snapshot into an indented backup document.
func Export(snap models.Snapshot) ([]byte, error) {
	snap.Normalize()
	b := Backup{
		Events:        snap.Events,
		Tasks:         snap.Tasks,
		Sources:       snap.Sources,
		IgnoredEvents: snap.IgnoredEventIDs,
		Version:       backupVersion,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

// Restore parses a backup document into a snapshot. The caller replaces
// local state wholesale; the next outbound write propagates it to the remote.
func Restore(data []byte) (models.Snapshot, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", shared.ErrInvalidBackup, err)
	}
	if b.Version == "" && b.Events == nil && b.Tasks == nil {
		return models.Snapshot{}, fmt.Errorf("%w: no recognizable collections", shared.ErrInvalidBackup)
	}

	snap := models.Snapshot{
		Events:          b.Events,
		Tasks:           b.Tasks,
		Sources:         b.Sources,
		IgnoredEventIDs: b.IgnoredEvents,
	}
	snap.Normalize()
	return snap, nil
}
