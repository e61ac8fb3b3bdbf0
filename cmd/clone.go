package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tgclone/internal/cloner"
	"tgclone/internal/history"
	"tgclone/internal/shared"
)

// historyRecorder adapts an optional repository to the engine's recorder
// interface without handing it a typed nil.
func historyRecorder(r *history.Repository) cloner.RunRecorder {
	if r == nil {
		return nil
	}
	return r
}

// applyCheckpointDir honors an explicit --checkpoint-dir flag, which also
// forces file checkpoints over the configured database.
func applyCheckpointDir(cfg *shared.Config, cmd *cli.Command) *shared.Config {
	dir := cmd.String("checkpoint-dir")
	if dir == "" {
		return cfg
	}

	override := *cfg
	override.Clone.CheckpointDir = dir
	override.Database.Path = ""
	return &override
}

// Clone migrates a single channel into a new destination.
func (r *Runner) Clone(ctx context.Context, cmd *cli.Command) error {
	client, err := r.requireClient()
	if err != nil {
		return err
	}

	cfg := applyCheckpointDir(r.loadConfig(cmd), cmd)
	sourceID := cmd.Int64("source-id")
	title := cmd.String("title")

	r.logger.Info("starting clone", "source", sourceID, "title", title)
	r.writePlain("Cloning channel %d into %q...\n\n", sourceID, title)

	source, err := client.ResolveChannel(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to resolve source channel: %w", err)
	}

	store, runs, closeStore := r.openStore(cfg)
	defer closeStore()

	progressCh := make(chan cloner.ProgressUpdate, 50)
	go r.printProgress(progressCh)

	c := cloner.New(cloner.Config{
		Client:   client,
		Store:    store,
		History:  historyRecorder(runs),
		Logger:   shared.WithLogger(r.logger, "source", sourceID),
		Options:  cloner.OptionsFromConfig(cfg.Clone),
		Progress: progressCh,
	})

	result, err := c.CloneChannel(ctx, source, cloner.CloneOpts{
		Title:        title,
		About:        cmd.String("about"),
		Public:       cmd.Bool("public"),
		Username:     cmd.String("username"),
		MessageLimit: cmd.Int("limit"),
	})
	close(progressCh)

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(resultSummary(result), true)
	}
	r.printResult(result)
	return nil
}

// CloneRelated migrates a supergroup plus every related channel around it.
func (r *Runner) CloneRelated(ctx context.Context, cmd *cli.Command) error {
	client, err := r.requireClient()
	if err != nil {
		return err
	}

	cfg := applyCheckpointDir(r.loadConfig(cmd), cmd)
	sourceID := cmd.Int64("source-id")
	title := cmd.String("title")

	r.logger.Info("starting related clone", "source", sourceID, "title", title)
	r.writePlain("Cloning supergroup %d with related channels into %q...\n\n", sourceID, title)

	source, err := client.ResolveChannel(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to resolve source channel: %w", err)
	}

	store, runs, closeStore := r.openStore(cfg)
	defer closeStore()

	progressCh := make(chan cloner.ProgressUpdate, 50)
	go r.printProgress(progressCh)

	c := cloner.New(cloner.Config{
		Client:   client,
		Store:    store,
		History:  historyRecorder(runs),
		Logger:   shared.WithLogger(r.logger, "source", sourceID),
		Options:  cloner.OptionsFromConfig(cfg.Clone),
		Progress: progressCh,
	})

	group, err := c.CloneSupergroupWithChannels(ctx, source, source.Title, cloner.CloneOpts{
		Title:        title,
		MessageLimit: cmd.Int("limit"),
	})
	close(progressCh)

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(group, true)
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Primary clone complete\n")
	r.printResult(group.Primary)
	r.writePlain("\nRelated channels cloned: %d\n", len(group.Related))
	for _, res := range group.Related {
		r.writePlain("  - %s\n", res.Dest.Title)
	}
	for _, msg := range group.Errors {
		r.writePlain("  ✗ %s\n", msg)
	}
	return nil
}

// printProgress renders engine progress updates until the channel closes.
func (r *Runner) printProgress(progressCh <-chan cloner.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case cloner.Provision, cloner.DetectProtection, cloner.Collect:
			r.writePlain("📥 %s\n", update.Message)
		case cloner.Copy:
			r.writePlain("   %s\n", update.Message)
		case cloner.Related:
			r.writePlain("\n🔁 %s\n", update.Message)
		case cloner.Announce:
			r.writePlain("📢 %s\n", update.Message)
		case cloner.Finalize:
			r.writePlain("\n📝 %s\n", update.Message)
		}
	}
}

func (r *Runner) printResult(result *cloner.Result) {
	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Clone complete: %s → %s\n", result.Source.Title, result.Dest.Title)
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Items copied:        %d\n", result.Copied)
	r.writePlain("Media transferred:   %d\n", result.MediaTransferred)
	r.writePlain("Media as fallback:   %d\n", result.MediaFallback)
	r.writePlain("Files skipped:       %d\n", result.Skipped)
	r.writePlain("Errors:              %d\n", result.Errors)
}

func resultSummary(result *cloner.Result) map[string]any {
	return map[string]any{
		"source":            result.Source.Title,
		"destination":       result.Dest.Title,
		"copied":            result.Copied,
		"media_transferred": result.MediaTransferred,
		"media_fallback":    result.MediaFallback,
		"skipped":           result.Skipped,
		"errors":            result.Errors,
	}
}
