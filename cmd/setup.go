package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"tgclone/internal/history"
	"tgclone/internal/shared"
)

// Setup writes a starter configuration file and prepares the database
// when one is configured. With --rollback it instead undoes the latest
// applied schema migration.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		return r.rollback(cmd)
	}

	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil {
		r.writePlain("Configuration already exists at %s\n", path)
	} else {
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("Created configuration file at %s\n", path)
	}

	cfg := r.loadConfig(cmd)
	if cfg.Database.Path == "" {
		r.writePlain("No database configured; checkpoints will use JSON files.\n")
		return nil
	}

	db, err := r.openDatabase(cfg)
	if err != nil {
		if errors.Is(err, shared.ErrMissingConfig) {
			return nil
		}
		return err
	}
	defer db.Close()

	r.writePlain("Database ready at %s\n", cfg.Database.Path)
	return nil
}

// rollback undoes the most recent schema migration.
func (r *Runner) rollback(cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)
	if cfg.Database.Path == "" {
		return fmt.Errorf("%w: database path", shared.ErrMissingConfig)
	}

	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.writePlain("Rolled back the latest database migration\n")
	return nil
}

// HistoryList prints recorded migration runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	db, err := r.openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := history.NewRepository(db)
	runs, err := repo.List(cmd.Int64("source-id"), cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No recorded runs.\n")
		return nil
	}

	for _, run := range runs {
		r.writePlain("%s  %s → %s\n", run.FinishedAt.Format("2006-01-02 15:04"),
			run.SourceTitle, run.DestTitle)
		r.writePlain("    copied=%d media=%d fallback=%d skipped=%d errors=%d\n",
			run.Copied, run.MediaTransferred, run.MediaFallback, run.Skipped, run.Errors)
	}
	return nil
}
