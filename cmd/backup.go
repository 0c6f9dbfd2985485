package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
	"github.com/mkhault/calsync/internal/store"
	"github.com/urfave/cli/v3"
)

// Backup writes the full snapshot to a JSON backup file.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: backup file path is required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var data []byte
	var exportErr error
	sess.coord.View(func(snap models.Snapshot) {
		data, exportErr = store.Export(snap)
	})
	if exportErr != nil {
		return fmt.Errorf("backup failed: %w", exportErr)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	r.writePlain("✓ Backup written to %s\n", path)
	return nil
}

// Restore replaces local state wholesale from a backup file. The next
// outbound replication write propagates the restored snapshot.
func (r *Runner) Restore(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: backup file path is required", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	restored, err := store.Restore(data)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		*snap = restored
		return nil
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Restored %d events, %d tasks, %d sources\n",
		len(restored.Events), len(restored.Tasks), len(restored.Sources))
	return nil
}
