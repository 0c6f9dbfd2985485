package main

import (
	"context"
	"fmt"

	"github.com/mkhault/calsync/internal/engine"
	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SourcesList prints the registered feed sources.
func (r *Runner) SourcesList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var sources []models.Source
	sess.coord.View(func(snap models.Snapshot) {
		sources = snap.Sources
	})

	if cmd.Bool("json") {
		return r.writeJSON(sources, cmd.Bool("pretty"))
	}

	if len(sources) == 0 {
		r.writePlain("No sources registered. Use 'calsync import url' to add one.\n")
		return nil
	}
	for _, src := range sources {
		r.writePlain("%s\n    id: %s\n    url: %s\n    last sync: %s\n",
			src.Name, src.ID, src.URL, src.LastSync)
	}
	return nil
}

// SourcesRemove unregisters a source. Events and tasks it imported stay.
func (r *Runner) SourcesRemove(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: source id is required", shared.ErrMissingArgument)
	}

	sess, err := r.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	err = sess.coord.Mutate(ctx, func(snap *models.Snapshot) error {
		return engine.RemoveSource(snap, id)
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Source removed\n")
	return nil
}
