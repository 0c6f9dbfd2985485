// Package store persists the snapshot to SQLite.
//
// The database mirrors the four snapshot collections as four tables. The
// whole snapshot is loaded once at startup and rewritten inside one
// transaction on every mutation, so a reader never observes a partial snapshot.
package store

import (
	"database/sql"
	"fmt"

	"github.com/mkhault/calsync/internal/models"
)

// Store reads and writes snapshots against an open SQLite database.
// The schema is managed by shared.RunMigrations.
type Store struct {
	db *sql.DB
}

// New creates a Store with the given database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads the full snapshot from the database.
func (s *Store) Load() (models.Snapshot, error) {
	var snap models.Snapshot
	snap.Normalize()

	rows, err := s.db.Query(`SELECT id, title, date, description, source_name FROM events`)
	if err != nil {
		return snap, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Description, &e.SourceName); err != nil {
			return snap, fmt.Errorf("failed to scan event: %w", err)
		}
		snap.Events = append(snap.Events, e)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("failed to read events: %w", err)
	}

	taskRows, err := s.db.Query(`
		SELECT id, title, due_date, description, completed, from_calendar, is_all_day, created_at
		FROM tasks`)
	if err != nil {
		return snap, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		var t models.Task
		if err := taskRows.Scan(&t.ID, &t.Title, &t.DueDate, &t.Description,
			&t.Completed, &t.FromCalendar, &t.IsAllDay, &t.CreatedAt); err != nil {
			return snap, fmt.Errorf("failed to scan task: %w", err)
		}
		snap.Tasks = append(snap.Tasks, t)
	}
	if err := taskRows.Err(); err != nil {
		return snap, fmt.Errorf("failed to read tasks: %w", err)
	}

	srcRows, err := s.db.Query(`SELECT id, name, url, last_sync FROM sources`)
	if err != nil {
		return snap, fmt.Errorf("failed to query sources: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var src models.Source
		if err := srcRows.Scan(&src.ID, &src.Name, &src.URL, &src.LastSync); err != nil {
			return snap, fmt.Errorf("failed to scan source: %w", err)
		}
		snap.Sources = append(snap.Sources, src)
	}
	if err := srcRows.Err(); err != nil {
		return snap, fmt.Errorf("failed to read sources: %w", err)
	}

	ignoredRows, err := s.db.Query(`SELECT event_id FROM ignored_events`)
	if err != nil {
		return snap, fmt.Errorf("failed to query ignored events: %w", err)
	}
	defer ignoredRows.Close()
	for ignoredRows.Next() {
		var id string
		if err := ignoredRows.Scan(&id); err != nil {
			return snap, fmt.Errorf("failed to scan ignored event: %w", err)
		}
		snap.IgnoredEventIDs = append(snap.IgnoredEventIDs, id)
	}
	if err := ignoredRows.Err(); err != nil {
		return snap, fmt.Errorf("failed to read ignored events: %w", err)
	}

	return snap, nil
}

// Save rewrites all four collections in one transaction.
func (s *Store) Save(snap models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"events", "tasks", "sources", "ignored_events"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, e := range snap.Events {
		if _, err := tx.Exec(`
			INSERT INTO events (id, title, date, description, source_name)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.Date, e.Description, e.SourceName); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
	}

	for _, t := range snap.Tasks {
		if _, err := tx.Exec(`
			INSERT INTO tasks (id, title, due_date, description, completed, from_calendar, is_all_day, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.DueDate, t.Description, t.Completed, t.FromCalendar, t.IsAllDay, t.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
		}
	}

	for _, src := range snap.Sources {
		if _, err := tx.Exec(`
			INSERT INTO sources (id, name, url, last_sync)
			VALUES (?, ?, ?, ?)`,
			src.ID, src.Name, src.URL, src.LastSync); err != nil {
			return fmt.Errorf("failed to insert source %s: %w", src.ID, err)
		}
	}

	for _, id := range snap.IgnoredEventIDs {
		if _, err := tx.Exec(`INSERT INTO ignored_events (event_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("failed to insert ignored event %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
