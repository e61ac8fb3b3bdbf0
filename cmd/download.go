package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tgclone/internal/downloader"
	"tgclone/internal/telegram"
)

// Download bulk-downloads photos and videos from chats into local folders.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	client, err := r.requireClient()
	if err != nil {
		return err
	}

	cfg := r.loadConfig(cmd)

	opts := downloader.Options{
		Root:          cfg.Download.Root,
		Types:         cmd.StringSlice("type"),
		Limit:         cmd.Int("limit"),
		ProgressEvery: cfg.Download.ProgressEvery,
		Rate:          cfg.Download.Rate,
	}
	if out := cmd.String("out"); out != "" {
		opts.Root = out
	}

	var dialogs []telegram.Dialog
	if chatID := cmd.Int64("chat-id"); chatID != 0 {
		ch, err := client.ResolveChannel(ctx, chatID)
		if err != nil {
			return fmt.Errorf("failed to resolve chat: %w", err)
		}
		dialogs = []telegram.Dialog{{Name: ch.Title, Channel: ch}}
	} else {
		dialogs, err = client.ListDialogs(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to list dialogs: %w", err)
		}
	}

	r.writePlain("Downloading media from %d chat(s) into %s...\n\n", len(dialogs), opts.Root)

	d := downloader.New(client, opts, r.logger)
	all, err := d.DownloadAll(ctx, dialogs)
	for _, stats := range all {
		r.writePlain("%-32s downloaded=%d skipped=%d errors=%d\n",
			stats.Title, stats.Downloaded, stats.Skipped, stats.Errors)
	}
	if err != nil {
		return err
	}

	r.writePlain("\nDone. Manifest written to %s/download_manifest.json\n", opts.Root)
	return nil
}
