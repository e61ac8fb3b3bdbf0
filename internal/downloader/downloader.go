// package downloader bulk-downloads photos and videos from chats into local
// folders organized per conversation, with durable per-folder progress so an
// interrupted download resumes where it stopped.
package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"tgclone/internal/media"
	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

const progressFile = ".progress.json"

// Options configures a bulk download.
type Options struct {
	Root          string   // base output directory
	Types         []string // "image", "video"; empty means both
	Limit         int      // max messages to inspect per chat, 0 for all listed
	ProgressEvery int      // save cadence in inspected messages (default 50)
	Rate          float64  // downloads per second, 0 disables pacing
}

func (o Options) withDefaults() Options {
	def := shared.DefaultConfig().Download
	if o.Root == "" {
		o.Root = def.Root
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = def.ProgressEvery
	}
	if len(o.Types) == 0 {
		o.Types = []string{"image", "video"}
	}
	return o
}

// Stats summarizes the download outcome for one chat.
type Stats struct {
	Title      string `json:"title"`
	Folder     string `json:"folder"`
	Inspected  int    `json:"inspected"`
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	Errors     int    `json:"errors"`
}

// progressState is the durable resume marker stored alongside each output
// folder: the highest source item ID fully inspected.
type progressState struct {
	LastID int64 `json:"last_id"`
}

// Downloader downloads chat media using the external client.
type Downloader struct {
	client  telegram.Client
	opts    Options
	logger  *log.Logger
	limiter *rate.Limiter
}

// New creates a Downloader.
func New(client telegram.Client, opts Options, logger *log.Logger) *Downloader {
	opts = opts.withDefaults()
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}

	return &Downloader{
		client:  client,
		opts:    opts,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// DownloadDialog downloads matching media from a single chat into a
// sanitized folder under the root, resuming past the last inspected ID.
func (d *Downloader) DownloadDialog(ctx context.Context, dialog telegram.Dialog) (*Stats, error) {
	title := dialog.Name
	if title == "" && dialog.Channel != nil {
		title = dialog.Channel.Title
	}

	folder := filepath.Join(d.opts.Root, shared.Sanitize(title))
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	stats := &Stats{Title: title, Folder: folder}
	lastID := d.loadProgress(folder)
	if lastID > 0 {
		d.logger.Info("resuming download", "chat", title, "last_id", lastID)
	}

	msgs, err := d.client.ListMessages(ctx, dialog.Channel, d.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	wantImages, wantVideos := d.wanted()
	sinceSave := 0

	// ListMessages is newest-first; walk oldest-first so last_id is a
	// faithful high-water mark.
	for i := len(msgs) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			d.saveProgress(folder, lastID)
			return stats, ctx.Err()
		default:
		}

		msg := msgs[i]
		if msg.ID <= lastID {
			continue
		}

		advance := func() {
			if msg.ID > lastID {
				lastID = msg.ID
			}
			sinceSave++
			if sinceSave >= d.opts.ProgressEvery {
				d.saveProgress(folder, lastID)
				sinceSave = 0
			}
		}

		info := media.Classify(&msg)
		isImage := info.Kind == media.KindPhoto || info.Kind == media.KindImage
		isVideo := info.Kind == media.KindVideo
		if (!isImage && !isVideo) || (isImage && !wantImages) || (isVideo && !wantVideos) {
			advance()
			continue
		}

		stats.Inspected++
		if err := d.limiter.Wait(ctx); err != nil {
			d.saveProgress(folder, lastID)
			return stats, err
		}

		path, err := d.client.DownloadMedia(ctx, &msg, folder)
		switch {
		case err != nil:
			d.logger.Error("download failed", "id", msg.ID, "err", err)
			stats.Errors++
		case path == "":
			stats.Skipped++
		default:
			d.logger.Info("downloaded", "file", filepath.Base(path))
			stats.Downloaded++
		}

		advance()
	}

	d.saveProgress(folder, lastID)
	d.logger.Info("chat complete", "chat", title,
		"downloaded", stats.Downloaded, "skipped", stats.Skipped, "errors", stats.Errors)
	return stats, nil
}

// DownloadAll downloads media from each dialog sequentially and writes a
// manifest summarizing per-chat outcomes into the root folder.
func (d *Downloader) DownloadAll(ctx context.Context, dialogs []telegram.Dialog) ([]*Stats, error) {
	var all []*Stats
	for _, dialog := range dialogs {
		stats, err := d.DownloadDialog(ctx, dialog)
		if stats != nil {
			all = append(all, stats)
		}
		if err != nil {
			return all, err
		}
	}

	if err := d.writeManifest(all); err != nil {
		return all, fmt.Errorf("downloads completed but failed to write manifest: %w", err)
	}
	return all, nil
}

func (d *Downloader) wanted() (images, videos bool) {
	for _, t := range d.opts.Types {
		t = strings.ToLower(t)
		if strings.HasPrefix(t, "image") {
			images = true
		}
		if strings.HasPrefix(t, "video") {
			videos = true
		}
	}
	return images, videos
}

// loadProgress reads the folder's resume marker; any failure starts fresh.
func (d *Downloader) loadProgress(folder string) int64 {
	data, err := os.ReadFile(filepath.Join(folder, progressFile))
	if err != nil {
		return 0
	}

	var state progressState
	if err := json.Unmarshal(data, &state); err != nil {
		return 0
	}
	return state.LastID
}

// saveProgress persists the resume marker; failure is logged, not fatal.
func (d *Downloader) saveProgress(folder string, lastID int64) {
	data, err := json.Marshal(progressState{LastID: lastID})
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(folder, progressFile), data, 0644); err != nil {
		d.logger.Warn("failed to save download progress", "folder", folder, "err", err)
	}
}

// writeManifest summarizes the whole bulk download as JSON in the root.
func (d *Downloader) writeManifest(all []*Stats) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(d.opts.Root, "download_manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
