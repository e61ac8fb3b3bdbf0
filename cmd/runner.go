package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"tgclone/internal/checkpoint"
	"tgclone/internal/history"
	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	client telegram.Client
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client telegram.Client
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		client: opts.Client,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, cloneCommand, relatedCommand, downloadCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireClient returns the injected telegram client or a typed error when
// the external collaborator has not been wired in.
func (r *Runner) requireClient() (telegram.Client, error) {
	if r.client == nil {
		return nil, fmt.Errorf("%w: no session configured", shared.ErrClientUnavailable)
	}
	return r.client, nil
}

// loadConfig reloads configuration from the path given by the command's
// --config flag, keeping the runner default when the file is absent, and
// applies the --verbose flag to the logger.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return r.config
	}
	if cfg, err := shared.LoadConfig(path); err == nil {
		return cfg
	}
	return r.config
}

// openStore builds the checkpoint store: sqlite when a database is
// configured and reachable, the JSON file store otherwise. The second
// return is the optional run history repository.
func (r *Runner) openStore(cfg *shared.Config) (checkpoint.Store, *history.Repository, func()) {
	if cfg.Database.Path != "" {
		db, err := shared.NewDatabase(cfg.Database.Path)
		if err == nil {
			if err := shared.RunMigrations(db); err != nil {
				r.logger.Warn("database migrations failed, falling back to file checkpoints", "err", err)
				db.Close()
			} else {
				shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
				return checkpoint.NewSQLiteStore(db), history.NewRepository(db), func() { db.Close() }
			}
		} else {
			r.logger.Warn("database unavailable, falling back to file checkpoints", "err", err)
		}
	}

	store, err := checkpoint.NewFileStore(cfg.Clone.CheckpointDir)
	if err != nil {
		// Last resort: checkpoints in the working directory.
		store, _ = checkpoint.NewFileStore(".")
	}
	return store, nil, func() {}
}

// openDatabase opens and migrates the configured database.
func (r *Runner) openDatabase(cfg *shared.Config) (*sql.DB, error) {
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("%w: database path", shared.ErrMissingConfig)
	}

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	return db, nil
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
