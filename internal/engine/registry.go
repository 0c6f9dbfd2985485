package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mkhault/calsync/internal/feed"
	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// FeedFetcher retrieves raw feed text for a URL source.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// State is the single mutation point for the shared snapshot. The
// replication coordinator implements it; every write made through Mutate
// is persisted and propagated before Mutate returns.
type State interface {
	// Mutate runs fn against the snapshot under the write lock. If fn
	// returns an error the snapshot is left unchanged.
	Mutate(ctx context.Context, fn func(*models.Snapshot) error) error
	// View runs fn with a read-only copy of the snapshot.
	View(fn func(models.Snapshot))
}

// SourceResult reports one source's re-sync outcome.
type SourceResult struct {
	Source models.Source
	Result ImportResult
	Err    error
}

// BatchResult aggregates a re-sync-all pass.
type BatchResult struct {
	Succeeded int
	Failed    int
	Results   []SourceResult
}

// Registry drives re-sync for registered URL sources. Each source is
// attempted independently: a fetch or parse failure is tallied and the
// batch moves on, and merges that already committed stay committed.
type Registry struct {
	engine  *Engine
	fetcher FeedFetcher
	state   State
	logger  *log.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(engine *Engine, fetcher FeedFetcher, state State, logger *log.Logger) *Registry {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Registry{engine: engine, fetcher: fetcher, state: state, logger: logger}
}

// ImportURL performs a one-shot import from a URL and registers it as a
// re-syncable source.
func (r *Registry) ImportURL(ctx context.Context, url, name string) (ImportResult, error) {
	if name == "" {
		name = "iCal Feed"
	}
	return r.importSource(ctx, SourceDescriptor{URL: url, Name: name, Type: SourceTypeURL})
}

// ImportData merges an already-read feed payload (a file upload). File
// imports are one-shot and never registered as sources.
func (r *Registry) ImportData(ctx context.Context, data []byte, name string) (ImportResult, error) {
	events, err := feed.Parse(data, feed.ExpandOptions{RangeStart: r.engine.Cutoff()})
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err = r.state.Mutate(ctx, func(snap *models.Snapshot) error {
		result = r.engine.Merge(snap, events, SourceDescriptor{Name: name, Type: SourceTypeFile})
		return nil
	})
	return result, err
}

// SyncAll re-fetches every URL source. Individual failures do not abort
// the batch and do not roll back merges already committed within it.
func (r *Registry) SyncAll(ctx context.Context) BatchResult {
	var sources []models.Source
	r.state.View(func(snap models.Snapshot) {
		for _, s := range snap.Sources {
			if s.URL != "" {
				sources = append(sources, s)
			}
		}
	})

	batch := BatchResult{Results: make([]SourceResult, 0, len(sources))}
	for _, src := range sources {
		res, err := r.importSource(ctx, SourceDescriptor{URL: src.URL, Name: src.Name, Type: SourceTypeURL})
		sr := SourceResult{Source: src, Result: res, Err: err}
		if err != nil {
			batch.Failed++
			r.logger.Error("source sync failed", "source", src.Name, "url", src.URL, "err", err)
		} else {
			batch.Succeeded++
		}
		batch.Results = append(batch.Results, sr)
	}

	r.logger.Info("sync batch complete", "succeeded", batch.Succeeded, "failed", batch.Failed)
	return batch
}

// SyncOne re-fetches a single registered source by id.
func (r *Registry) SyncOne(ctx context.Context, sourceID string) (ImportResult, error) {
	var src models.Source
	found := false
	r.state.View(func(snap models.Snapshot) {
		if idx := snap.SourceIndex(sourceID); idx >= 0 {
			src = snap.Sources[idx]
			found = true
		}
	})
	if !found {
		return ImportResult{}, fmt.Errorf("%w: %s", shared.ErrSourceNotFound, sourceID)
	}
	if src.URL == "" {
		return ImportResult{}, fmt.Errorf("%w: source %s has no url", shared.ErrInvalidArgument, sourceID)
	}

	return r.importSource(ctx, SourceDescriptor{URL: src.URL, Name: src.Name, Type: SourceTypeURL})
}

// importSource fetches, parses, and merges one URL source. The store is
// untouched when fetch or parse fails.
func (r *Registry) importSource(ctx context.Context, src SourceDescriptor) (ImportResult, error) {
	body, err := r.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return ImportResult{}, err
	}

	events, err := feed.Parse(body, feed.ExpandOptions{RangeStart: r.engine.Cutoff()})
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err = r.state.Mutate(ctx, func(snap *models.Snapshot) error {
		result = r.engine.Merge(snap, events, src)
		return nil
	})
	return result, err
}
