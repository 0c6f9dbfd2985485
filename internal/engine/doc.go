// Package engine implements the merge pipeline that reconciles normalized
// feed events with the local snapshot.
//
// [Engine.Merge] applies, per event in feed order: the retention filter,
// the tombstone filter, an event upsert keyed by id, task derivation for
// assessment events, and source bookkeeping. Importing the same feed twice
// yields the same collections, which is what makes scheduled re-sync safe.
//
// User-initiated edits (task creation, completion toggling, deletion with
// tombstoning) live here too, so every path that mutates the snapshot
// shares one set of invariants. [Registry] drives batch re-sync across all
// registered sources, committing each source's merge independently.
package engine
