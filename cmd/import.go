package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mkhault/calsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// ImportURL imports a feed by URL and registers it as a source for
// later re-sync.
func (r *Runner) ImportURL(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: feed URL is required", shared.ErrMissingArgument)
	}
	name := cmd.String("name")

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	r.logger.Info("importing feed", "url", url)

	result, err := sess.registry.ImportURL(ctx, url, name)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.writePlain("✓ Imported %d events, created %d tasks\n", result.ImportedEvents, result.CreatedTasks)
	return nil
}

// ImportFile imports a feed from a local .ics file. File imports are
// one-shot and are not registered for re-sync.
func (r *Runner) ImportFile(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: feed file path is required", shared.ErrMissingArgument)
	}
	name := cmd.String("name")
	if name == "" {
		name = path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read feed file: %w", err)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	r.logger.Info("importing feed file", "path", path)

	result, err := sess.registry.ImportData(ctx, data, name)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.writePlain("✓ Imported %d events, created %d tasks\n", result.ImportedEvents, result.CreatedTasks)
	return nil
}

// Sync re-syncs all registered sources, or one when --source is given.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if sourceID := cmd.String("source"); sourceID != "" {
		result, err := sess.registry.SyncOne(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		r.writePlain("✓ Imported %d events, created %d tasks\n", result.ImportedEvents, result.CreatedTasks)
		return nil
	}

	batch := sess.registry.SyncAll(ctx)
	for _, res := range batch.Results {
		if res.Err != nil {
			r.writePlain("✗ %s: %v\n", res.Source.Name, res.Err)
			continue
		}
		r.writePlain("✓ %s: %d events, %d new tasks\n",
			res.Source.Name, res.Result.ImportedEvents, res.Result.CreatedTasks)
	}
	r.writePlainln("%d synced, %d failed", batch.Succeeded, batch.Failed)
	return nil
}
