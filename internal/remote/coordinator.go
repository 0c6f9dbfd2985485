package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkhault/calsync/internal/engine"
	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// SnapshotStore is the durable local side of replication.
type SnapshotStore interface {
	Load() (models.Snapshot, error)
	Save(models.Snapshot) error
}

// Status describes the replication link for display.
type Status string

const (
	StatusDisabled Status = "disabled" // no remote configured
	StatusPending  Status = "pending"  // no exchange completed yet
	StatusSynced   Status = "synced"
	StatusError    Status = "error"
)

// Coordinator owns the in-memory snapshot and keeps it consistent with
// both the local store and the shared remote record.
//
// Every local mutation flows through [Coordinator.Mutate]: the snapshot is
// updated, persisted, and propagated outbound under one lock, which is the
// Go rendition of the engine's single-logical-writer model. Inbound remote
// updates arrive through [Coordinator.Refresh] and are applied without
// re-triggering the outbound path.
//
// Loop prevention uses an explicit version tag rather than a transient
// flag: each outbound write stamps lastUpdated, the coordinator remembers
// the stamp it sent, and an inbound record carrying that same stamp is the
// echo of this replica's own write and is discarded.
type Coordinator struct {
	store  SnapshotStore
	client RecordClient // nil when replication is disabled
	engine *engine.Engine
	logger *log.Logger

	mu          sync.Mutex
	snap        models.Snapshot
	lastSent    string // lastUpdated tag of our most recent outbound write
	lastApplied string // lastUpdated tag of the most recent inbound apply
	status      Status
	statusErr   error
}

// NewCoordinator loads the snapshot from the store and returns a ready
// coordinator. A nil client disables replication; all local operations
// still persist.
func NewCoordinator(store SnapshotStore, client RecordClient, eng *engine.Engine, logger *log.Logger) (*Coordinator, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap.Normalize()

	status := StatusPending
	if client == nil {
		status = StatusDisabled
	}

	return &Coordinator{
		store:  store,
		client: client,
		engine: eng,
		logger: logger,
		snap:   snap,
		status: status,
	}, nil
}

// Mutate applies fn to the snapshot under the write lock, persists the
// result, and propagates it outbound. If fn fails the snapshot is left
// untouched. A replication failure does not fail the mutation: the local
// store remains the durable source of truth and the error surfaces via
// [Coordinator.Status].
func (c *Coordinator) Mutate(ctx context.Context, fn func(*models.Snapshot) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := c.snap.Clone()
	if err := fn(&work); err != nil {
		return err
	}

	if err := c.store.Save(work); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	c.snap = work

	c.propagateLocked(ctx)
	return nil
}

// View runs fn with a copy of the snapshot.
func (c *Coordinator) View(fn func(models.Snapshot)) {
	c.mu.Lock()
	snap := c.snap.Clone()
	c.mu.Unlock()
	fn(snap)
}

// Status reports the current replication state.
func (c *Coordinator) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.statusErr
}

// Refresh performs one inbound replication step: read the remote record
// and reconcile. A record stamped with our own last outbound tag is an
// echo and is discarded; a missing record is seeded from local state;
// anything else replaces the local collections wholesale, is pruned, and
// is persisted without writing back outbound (except the one write needed
// to converge the remote to the pruned shape).
func (c *Coordinator) Refresh(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	rec, err := c.client.GetRecord(ctx)
	if errors.Is(err, shared.ErrRecordMissing) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.logger.Info("remote record missing, seeding from local store")
		c.propagateLocked(ctx)
		return nil
	}
	if err != nil {
		c.setStatus(StatusError, err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if rec.LastUpdated != "" && rec.LastUpdated == c.lastSent {
		// Echo of our own write; reapplying it would bounce every local
		// change back as a redundant update. The tag also counts as
		// applied so the next poll of an unchanged record short-circuits.
		c.lastApplied = rec.LastUpdated
		c.lastSent = ""
		c.statusLocked(StatusSynced, nil)
		return nil
	}
	if rec.LastUpdated != "" && rec.LastUpdated == c.lastApplied {
		// Remote unchanged since our last apply.
		c.statusLocked(StatusSynced, nil)
		return nil
	}

	snap := rec.Snapshot()
	pruned := c.engine.Prune(&snap)

	if err := c.store.Save(snap); err != nil {
		c.statusLocked(StatusError, err)
		return fmt.Errorf("failed to persist inbound snapshot: %w", err)
	}
	c.snap = snap
	c.lastApplied = rec.LastUpdated
	c.logger.Info("applied inbound remote update",
		"last_updated", rec.LastUpdated,
		"events", len(snap.Events),
		"tasks", len(snap.Tasks),
		"pruned", pruned)

	if pruned > 0 {
		c.propagateLocked(ctx)
	} else {
		c.statusLocked(StatusSynced, nil)
	}
	return nil
}

// Poll runs Refresh on the given interval until the context is cancelled.
func (c *Coordinator) Poll(ctx context.Context, interval time.Duration) {
	if c.client == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := c.Refresh(ctx); err != nil {
			c.logger.Error("replication refresh failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// propagateLocked writes the snapshot to the remote record. Callers hold
// c.mu. Failures surface via status only; local operations continue.
func (c *Coordinator) propagateLocked(ctx context.Context) {
	if c.client == nil {
		return
	}

	tag := time.Now().UTC().Format(time.RFC3339Nano)
	rec := &Record{
		Events:          c.snap.Events,
		Tasks:           c.snap.Tasks,
		Sources:         c.snap.Sources,
		IgnoredEventIDs: c.snap.IgnoredEventIDs,
		LastUpdated:     tag,
	}

	c.lastSent = tag
	if err := c.client.PutRecord(ctx, rec); err != nil {
		c.lastSent = ""
		c.statusLocked(StatusError, err)
		c.logger.Error("outbound replication failed", "err", err)
		return
	}
	c.statusLocked(StatusSynced, nil)
}

func (c *Coordinator) setStatus(s Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusLocked(s, err)
}

func (c *Coordinator) statusLocked(s Status, err error) {
	c.status = s
	c.statusErr = err
}
