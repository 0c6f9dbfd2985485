package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mkhault/calsync/internal/engine"
	"github.com/mkhault/calsync/internal/feed"
	"github.com/mkhault/calsync/internal/remote"
	"github.com/mkhault/calsync/internal/shared"
	"github.com/mkhault/calsync/internal/store"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// openDB overrides database creation in tests.
	openDB func(path string) (*sql.DB, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	OpenDB     func(path string) (*sql.DB, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenDB == nil {
		opts.OpenDB = shared.NewDatabase
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		openDB:     opts.OpenDB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, syncCommand, tasksCommand, sourcesCommand,
		backupCommand, restoreCommand, watchCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// session bundles the per-command state: an open database, the snapshot
// coordinator, and the import machinery. Commands open a session, do
// their work through it, and close it before returning.
type session struct {
	db       *sql.DB
	coord    *remote.Coordinator
	engine   *engine.Engine
	registry *engine.Registry
}

// openSession loads the configured database and wires the coordinator.
// An empty remote base URL leaves replication disabled.
func (r *Runner) openSession() (*session, error) {
	db, err := r.openDB(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var client remote.RecordClient
	if r.config.Remote.BaseURL != "" {
		client = remote.NewClient(r.config.Remote.BaseURL, r.httpClient, r.config.Remote.RateLimit)
	}

	eng := engine.NewEngine(r.config.Retention.CutoffDate(), r.logger)
	coord, err := remote.NewCoordinator(store.New(db), client, eng, r.logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	fetcher := feed.NewFetcher(r.httpClient, r.config.Sync.RateLimit)
	registry := engine.NewRegistry(eng, fetcher, coord, r.logger)

	return &session{
		db:       db,
		coord:    coord,
		engine:   eng,
		registry: registry,
	}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
