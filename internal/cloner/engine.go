package cloner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"tgclone/internal/media"
	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// Options contains the transfer policy knobs. Zero values fall back to the
// defaults from the embedded example config.
type Options struct {
	MaxRetries          int
	RetryDelay          time.Duration
	DownloadTimeout     time.Duration
	MaxFileSize         int64
	BlockedExtensions   []string
	CheckpointEvery     int
	ThrottleEvery       int
	ThrottleDelay       time.Duration
	SendRate            float64 // steady-state sends per second, 0 disables pacing
	MessageLimit        int     // item budget for a primary clone
	RelatedMessageLimit int     // item budget for each related clone
	TempDir             string
}

func (o Options) withDefaults() Options {
	def := shared.DefaultConfig().Clone
	if o.MaxRetries <= 0 {
		o.MaxRetries = def.MaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = def.RetryDelay()
	}
	if o.DownloadTimeout <= 0 {
		o.DownloadTimeout = def.DownloadTimeout()
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = def.MaxFileSize
	}
	if o.CheckpointEvery <= 0 {
		o.CheckpointEvery = def.CheckpointEvery
	}
	if o.ThrottleEvery <= 0 {
		o.ThrottleEvery = def.ThrottleEvery
	}
	if o.ThrottleDelay <= 0 {
		o.ThrottleDelay = def.ThrottleDelay()
	}
	if o.MessageLimit <= 0 {
		o.MessageLimit = def.MessageLimit
	}
	if o.RelatedMessageLimit <= 0 {
		o.RelatedMessageLimit = def.RelatedMessageLimit
	}
	if o.TempDir == "" {
		o.TempDir = def.TempDir
	}
	return o
}

// OptionsFromConfig converts the TOML clone table into engine options.
func OptionsFromConfig(cfg shared.CloneConfig) Options {
	return Options{
		MaxRetries:          cfg.MaxRetries,
		RetryDelay:          cfg.RetryDelay(),
		DownloadTimeout:     cfg.DownloadTimeout(),
		MaxFileSize:         cfg.MaxFileSize,
		CheckpointEvery:     cfg.CheckpointEvery,
		ThrottleEvery:       cfg.ThrottleEvery,
		ThrottleDelay:       cfg.ThrottleDelay(),
		SendRate:            cfg.SendRate,
		MessageLimit:        cfg.MessageLimit,
		RelatedMessageLimit: cfg.RelatedMessageLimit,
		TempDir:             cfg.TempDir,
	}
}

// Outcome is the per-item transfer result.
type Outcome struct {
	Sent            bool // exactly one destination send happened
	MediaDownloaded bool // original media bytes were re-uploaded
	MediaFallback   bool // media was replaced by a synthesized description
	FileSkipped     bool // media was rejected by size/format policy
}

// Engine executes the per-item transfer state machine: strategy selection,
// retry/backoff, rate-limit compliance.
type Engine struct {
	client  telegram.Client
	opts    Options
	logger  *log.Logger
	limiter *rate.Limiter

	// sleep is swappable so tests can observe waits without slowing down.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an Engine over the given client.
func NewEngine(client telegram.Client, opts Options, logger *log.Logger) *Engine {
	opts = opts.withDefaults()
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.SendRate > 0 {
		limit = rate.Limit(opts.SendRate)
	}

	return &Engine{
		client:  client,
		opts:    opts,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CopyMessage transfers one item to the destination, choosing a strategy
// from its classification and the source's protection flag.
//
// Non-nil errors are per-item failures; the caller logs, skips the item, and
// continues the loop.
func (e *Engine) CopyMessage(ctx context.Context, msg *telegram.Message, dest *telegram.Channel, protected bool) (Outcome, error) {
	var out Outcome
	info := media.Classify(msg)

	switch {
	case info.Kind == media.KindLink:
		// Link previews are text compositions, never media, even in
		// protected sources.
		if err := e.sendText(ctx, dest, FormatWebPage(msg)); err != nil {
			return out, err
		}
		out.Sent = true

	case msg.Media == nil:
		if msg.Text == "" {
			return out, nil
		}
		if err := e.sendText(ctx, dest, msg.Text); err != nil {
			return out, err
		}
		out.Sent = true

	default:
		return e.copyMedia(ctx, msg, dest, info, protected)
	}

	return out, nil
}

func (e *Engine) copyMedia(ctx context.Context, msg *telegram.Message, dest *telegram.Channel, info media.FileInfo, protected bool) (Outcome, error) {
	var out Outcome

	switch {
	case info.Size > e.opts.MaxFileSize:
		e.logger.Warn("file exceeds size limit", "name", info.Name, "size", shared.FormatBytes(info.Size))
		if err := e.sendText(ctx, dest, oversizeNotice(info, msg.Text, e.opts.MaxFileSize)); err != nil {
			return out, err
		}
		out.Sent = true
		out.FileSkipped = true

	case e.blockedExtension(info.Extension):
		e.logger.Warn("blocked file format", "name", info.Name, "extension", info.Extension)
		if err := e.sendText(ctx, dest, unsupportedNotice(info, msg.Text)); err != nil {
			return out, err
		}
		out.Sent = true
		out.FileSkipped = true

	case protected:
		// Never attempt a download from a protected source.
		if err := e.sendText(ctx, dest, protectedText(info, msg.Text)); err != nil {
			return out, err
		}
		out.Sent = true
		out.MediaFallback = true

	default:
		path, err := e.downloadMedia(ctx, msg, info)
		if err != nil || path == "" {
			if err != nil {
				e.logger.Warn("media download failed, sending description", "name", info.Name, "err", err)
			}
			if err := e.sendText(ctx, dest, fallbackText(info, msg.Text)); err != nil {
				return out, err
			}
			out.Sent = true
			out.MediaFallback = true
			break
		}
		defer os.RemoveAll(filepath.Dir(path))

		if err := e.sendWithRetry(ctx, func() error {
			return e.client.SendFile(ctx, dest, path, msg.Text)
		}); err != nil {
			if shared.Classify(err) != shared.KindContentProtected {
				return out, err
			}
			// Protection surfacing mid-send converts to the fallback
			// strategy rather than a transfer failure.
			if err := e.sendText(ctx, dest, fallbackText(info, msg.Text)); err != nil {
				return out, err
			}
			out.Sent = true
			out.MediaFallback = true
			break
		}
		out.Sent = true
		out.MediaDownloaded = true
	}

	return out, nil
}

func (e *Engine) blockedExtension(ext string) bool {
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(e.opts.BlockedExtensions, func(b string) bool {
		return strings.EqualFold(b, ext)
	})
}

func (e *Engine) sendText(ctx context.Context, dest *telegram.Channel, text string) error {
	return e.sendWithRetry(ctx, func() error {
		return e.client.SendText(ctx, dest, text)
	})
}

// sendWithRetry runs a destination-side operation under the retry policy.
//
// Rate-limit waits never spend the attempt budget: the server tells us how
// long to sleep and we comply indefinitely. Stale references and transient
// network failures are counted, with a fixed delay between attempts. Every
// other failure returns immediately for the caller to classify.
func (e *Engine) sendWithRetry(ctx context.Context, fn func() error) error {
	attempts := 0
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		switch shared.Classify(err) {
		case shared.KindRateLimited:
			wait := shared.RetryAfter(err)
			if wait <= 0 {
				wait = e.opts.RetryDelay
			}
			e.logger.Warn("rate limited, waiting", "wait", wait)
			if serr := e.sleep(ctx, wait); serr != nil {
				return serr
			}

		case shared.KindStaleReference, shared.KindTransient:
			attempts++
			if attempts >= e.opts.MaxRetries {
				return fmt.Errorf("failed after %d attempts: %w", attempts, err)
			}
			e.logger.Warn("retrying after failure", "attempt", attempts, "err", err)
			if serr := e.sleep(ctx, e.opts.RetryDelay); serr != nil {
				return serr
			}

		default:
			return err
		}
	}
}

// downloadMedia fetches the item's media into a unique temp location under
// the retry policy, bounding each attempt by the download timeout.
func (e *Engine) downloadMedia(ctx context.Context, msg *telegram.Message, info media.FileInfo) (string, error) {
	dir := filepath.Join(e.opts.TempDir, shared.GenerateID())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	var path string
	err := e.sendWithRetry(ctx, func() error {
		dctx, cancel := context.WithTimeout(ctx, e.opts.DownloadTimeout)
		defer cancel()

		p, err := e.client.DownloadMedia(dctx, msg, dir)
		if err != nil {
			return err
		}
		path = p
		return nil
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	if path == "" {
		os.RemoveAll(dir)
	}
	return path, nil
}
