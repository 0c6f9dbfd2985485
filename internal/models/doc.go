// Package models defines the domain entities of the calendar/task reconciliation engine.
//
// The central type is [Snapshot], the aggregate of all four collections
// (events, tasks, sources, ignored event ids). A Snapshot is both the unit
// of persistence (internal/store) and the unit of replication
// (internal/remote): every local mutation rewrites the whole snapshot and
// every inbound remote update replaces it wholesale.
//
// Calendar-derived tasks are linked to their originating event through a
// deterministic id ("task-" + event id); see [TaskIDForEvent] and
// [EventIDForTask]. That relation is relied on by the merge engine's
// delete/tombstone logic and must never be broken by an update.
package models
