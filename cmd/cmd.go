// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database and writes a config template.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// importCommand handles one-shot feed imports
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import an iCalendar feed",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Import a feed by URL and register it for re-sync",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Display name for the source",
					},
				},
				Action: r.ImportURL,
			},
			{
				Name:  "file",
				Usage: "Import a feed from a local .ics file (not registered)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Display name for the source",
					},
				},
				Action: r.ImportFile,
			},
		},
	}
}

// syncCommand re-fetches registered sources
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Re-sync registered feed sources",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Sync only the source with this ID",
			},
		},
		Action: r.Sync,
	}
}

// tasksCommand handles task CRUD
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"t"},
		Usage:   "Task operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Filter: all, active, completed, auto, overdue, upcoming",
						Value:   "all",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.TasksList,
			},
			{
				Name:  "add",
				Usage: "Add a manual task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "due",
						Aliases: []string{"d"},
						Usage:   "Due date (YYYY-MM-DD or YYYY-MM-DDTHH:MM)",
					},
					&cli.StringFlag{
						Name:  "desc",
						Usage: "Task description",
					},
				},
				Action: r.TasksAdd,
			},
			{
				Name:  "edit",
				Usage: "Edit a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "due", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "desc"},
				},
				Action: r.TasksEdit,
			},
			{
				Name:  "done",
				Usage: "Toggle a task's completion",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.TasksDone,
			},
			{
				Name:  "delete",
				Usage: "Delete a task (calendar tasks are tombstoned)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.TasksDelete,
			},
			{
				Name:   "clear",
				Usage:  "Delete all completed tasks",
				Flags:  []cli.Flag{configFlag()},
				Action: r.TasksClear,
			},
			{
				Name:  "export",
				Usage: "Export tasks to CSV, Markdown, or plain text",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: csv, md, text",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default stdout)",
					},
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Filter: all, active, completed, auto, overdue, upcoming",
						Value:   "all",
					},
				},
				Action: r.TasksExport,
			},
		},
	}
}

// sourcesCommand handles the feed source registry
func sourcesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "sources",
		Aliases: []string{"src"},
		Usage:   "Feed source operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered sources",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.SourcesList,
			},
			{
				Name:  "remove",
				Usage: "Remove a source (its imported data stays)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.SourcesRemove,
			},
		},
	}
}

// backupCommand exports the full state to a JSON document
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Export all data to a JSON backup file",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags:  []cli.Flag{configFlag()},
		Action: r.Backup,
	}
}

// restoreCommand replaces local state from a backup
func restoreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Replace all data from a JSON backup file",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags:  []cli.Flag{configFlag()},
		Action: r.Restore,
	}
}

// watchCommand runs the scheduled re-sync and replication poll loop
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "Run scheduled re-sync and remote replication until interrupted",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Watch,
	}
}

// serveCommand hosts the reference shared-record endpoint
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Host the shared record HTTP endpoint",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive task browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive task browser",
		Flags:  []cli.Flag{configFlag()},
		Action: r.TUI,
	}
}
