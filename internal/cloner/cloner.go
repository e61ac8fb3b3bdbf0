// package cloner implements channel migration: provisioning a destination,
// streaming source items through the transfer engine with checkpoint-aware
// resume, and cloning related channels discovered around a primary source.
//
// One migration is a single logical task; items are processed strictly in
// source order because checkpoint resume depends on monotonic sequence
// progression. Progress is reported over a channel for non-blocking status
// display in the CLI layer.
package cloner

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"tgclone/internal/checkpoint"
	"tgclone/internal/history"
	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// RunRecorder persists a durable record of a completed migration.
// Satisfied by [history.Repository]; optional and best effort.
type RunRecorder interface {
	Create(run *history.Run) error
}

// Config contains the dependencies for a Cloner.
type Config struct {
	Client   telegram.Client
	Store    checkpoint.Store
	History  RunRecorder // optional
	Logger   *log.Logger
	Options  Options
	Progress chan<- ProgressUpdate // optional
}

// Cloner orchestrates full channel migrations.
type Cloner struct {
	client   telegram.Client
	engine   *Engine
	prov     *Provisioner
	disc     *Discoverer
	store    checkpoint.Store
	history  RunRecorder
	logger   *log.Logger
	opts     Options
	progress chan<- ProgressUpdate
}

// CloneOpts configures a single channel migration.
type CloneOpts struct {
	Title        string
	About        string
	Public       bool
	Username     string
	MessageLimit int // 0 means the configured default
}

// Result aggregates the run-level statistics of one migration. The
// migration always ends by reporting these counts, never a bare success
// boolean.
type Result struct {
	Source           *telegram.Channel
	Dest             *telegram.Channel
	Copied           int // items delivered to the destination
	MediaTransferred int // original media re-uploaded
	MediaFallback    int // media replaced by a synthesized description
	Skipped          int // media rejected by size/format policy
	Errors           int // per-item failures
}

// GroupResult is the outcome of cloning a supergroup with its related channels.
type GroupResult struct {
	Primary *Result
	Related []*Result
	Errors  []string
}

// New creates a Cloner from its dependencies.
func New(cfg Config) *Cloner {
	logger := cfg.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	opts := cfg.Options.withDefaults()

	return &Cloner{
		client:   cfg.Client,
		engine:   NewEngine(cfg.Client, opts, logger),
		prov:     NewProvisioner(cfg.Client, opts.TempDir, logger),
		disc:     NewDiscoverer(cfg.Client, logger),
		store:    cfg.Store,
		history:  cfg.History,
		logger:   logger,
		opts:     opts,
		progress: cfg.Progress,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// CloneChannel migrates the source channel into a destination named
// opts.Title, resuming from a persisted checkpoint when one exists.
//
// The migration aborts only when no destination can be created; every other
// failure is a per-item event and the loop continues.
func (c *Cloner) CloneChannel(ctx context.Context, source *telegram.Channel, opts CloneOpts) (*Result, error) {
	if c.client == nil {
		return nil, shared.ErrClientUnavailable
	}
	if opts.Title == "" {
		return nil, fmt.Errorf("%w: destination title", shared.ErrMissingArgument)
	}

	started := time.Now()
	key := checkpoint.Key(source.ID, opts.Title)

	cp, err := c.store.Load(key)
	if err != nil {
		c.logger.Warn("checkpoint load failed, starting fresh", "key", key, "err", err)
		cp = nil
	}

	dest, cp, err := c.resolveDestination(ctx, source, opts, key, cp)
	if err != nil {
		return nil, err
	}

	protected := c.detectProtection(ctx, source)
	sendProgress(c.progress, protectionUpdate(protected))

	limit := opts.MessageLimit
	if limit <= 0 {
		limit = c.opts.MessageLimit
	}
	msgs, err := c.collectMessages(ctx, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to collect source items: %w", err)
	}
	sendProgress(c.progress, collectedUpdate(len(msgs)))

	result := &Result{Source: source, Dest: dest}
	if err := c.copyLoop(ctx, msgs, dest, protected, key, cp, result); err != nil {
		// The persisted checkpoint is the resume point: flush the latest
		// progress and leave it in place.
		if serr := c.store.Save(key, cp); serr != nil {
			c.logger.Warn("checkpoint save failed", "key", key, "err", serr)
		}
		c.logger.Warn("migration interrupted", "processed", cp.Processed, "err", err)
		return result, err
	}

	if err := c.store.Delete(key); err != nil {
		c.logger.Warn("failed to remove checkpoint", "key", key, "err", err)
	}

	c.recordRun(source, dest, result, started)
	sendProgress(c.progress, finalizeUpdate(result))
	return result, nil
}

// resolveDestination reuses the channel referenced by an existing checkpoint
// or provisions a new one. A fresh checkpoint is persisted immediately so
// the created channel survives a crash before the first cadence save.
func (c *Cloner) resolveDestination(ctx context.Context, source *telegram.Channel, opts CloneOpts, key string, cp *checkpoint.Checkpoint) (*telegram.Channel, *checkpoint.Checkpoint, error) {
	if cp != nil {
		dest, err := c.client.ResolveChannel(ctx, cp.ChannelID)
		if err == nil {
			c.logger.Info("resuming into checkpointed channel", "title", cp.ChannelTitle, "processed", cp.Processed)
			sendProgress(c.progress, reuseChannelUpdate(dest, cp.Processed))
			return dest, cp, nil
		}
		c.logger.Warn("checkpointed channel unavailable, recreating", "id", cp.ChannelID, "err", err)
	}

	sendProgress(c.progress, provisionUpdate(opts.Title))
	dest, err := c.prov.Provision(ctx, source, ChannelSpec{
		Title:    opts.Title,
		About:    opts.About,
		Public:   opts.Public,
		Username: opts.Username,
	})
	if err != nil {
		return nil, nil, err
	}

	cp = &checkpoint.Checkpoint{ChannelID: dest.ID, ChannelTitle: dest.Title, Processed: 0}
	if err := c.store.Save(key, cp); err != nil {
		c.logger.Warn("failed to persist initial checkpoint", "key", key, "err", err)
	}
	return dest, cp, nil
}

// detectProtection queries the source's protection flag exactly once per
// migration, failing open since most sources are not protected.
func (c *Cloner) detectProtection(ctx context.Context, source *telegram.Channel) bool {
	protected, err := c.client.IsProtected(ctx, source)
	if err != nil {
		c.logger.Warn("protection check failed, assuming unprotected", "err", err)
		return false
	}
	if protected {
		c.logger.Warn("source has content protection", "title", source.Title)
	}
	return protected
}

// collectMessages fetches the newest items, drops those with neither text
// nor media, and reverses into chronological order.
func (c *Cloner) collectMessages(ctx context.Context, source *telegram.Channel, limit int) ([]telegram.Message, error) {
	raw, err := c.client.ListMessages(ctx, source, limit)
	if err != nil {
		return nil, err
	}

	msgs := make([]telegram.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i].HasContent() {
			msgs = append(msgs, raw[i])
		}
	}
	return msgs, nil
}

// copyLoop drives the engine over the item stream, starting past the
// checkpoint, persisting progress at the configured cadence and pausing
// periodically to stay under rate limits. A non-nil return means the run
// was interrupted and must keep its checkpoint.
func (c *Cloner) copyLoop(ctx context.Context, msgs []telegram.Message, dest *telegram.Channel, protected bool, key string, cp *checkpoint.Checkpoint, result *Result) error {
	total := len(msgs)

	for i := cp.Processed; i < total; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg := msgs[i]
		outcome, err := c.engine.CopyMessage(ctx, &msg, dest, protected)
		if err != nil {
			result.Errors++
			c.logger.Error("item transfer failed", "id", msg.ID, "err", err)
		} else {
			if outcome.Sent {
				result.Copied++
			}
			if outcome.MediaDownloaded {
				result.MediaTransferred++
			}
			if outcome.MediaFallback {
				result.MediaFallback++
			}
			if outcome.FileSkipped {
				result.Skipped++
			}
		}

		cp.Processed = i + 1
		if cp.Processed%c.opts.CheckpointEvery == 0 {
			if err := c.store.Save(key, cp); err != nil {
				c.logger.Warn("checkpoint save failed", "key", key, "err", err)
			}
			sendProgress(c.progress, copyUpdate(cp.Processed, total))
		}

		if result.Copied > 0 && result.Copied%c.opts.ThrottleEvery == 0 {
			if err := c.engine.sleep(ctx, c.opts.ThrottleDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

// recordRun persists the run statistics; best effort.
func (c *Cloner) recordRun(source, dest *telegram.Channel, result *Result, started time.Time) {
	if c.history == nil {
		return
	}

	run := history.NewRun(source.ID, source.Title, dest.ID, dest.Title)
	run.Copied = result.Copied
	run.MediaTransferred = result.MediaTransferred
	run.MediaFallback = result.MediaFallback
	run.Skipped = result.Skipped
	run.Errors = result.Errors
	run.StartedAt = started
	run.FinishedAt = time.Now()

	if err := c.history.Create(run); err != nil {
		c.logger.Warn("failed to record run history", "err", err)
	}
}

// CloneSupergroupWithChannels migrates a primary source and every related
// channel discovered around it, then announces the clones in the new
// primary. Related channels use a smaller item budget than the primary.
func (c *Cloner) CloneSupergroupWithChannels(ctx context.Context, source *telegram.Channel, sourceName string, opts CloneOpts) (*GroupResult, error) {
	group := &GroupResult{}

	primary, err := c.CloneChannel(ctx, source, opts)
	if err != nil {
		return group, err
	}
	group.Primary = primary

	related, err := c.disc.FindRelated(ctx, source, sourceName)
	if err != nil {
		c.logger.Warn("related channel discovery failed", "err", err)
		group.Errors = append(group.Errors, err.Error())
		return group, nil
	}
	if len(related) == 0 {
		c.logger.Info("no related channels found")
		return group, nil
	}

	relatedLimit := c.opts.RelatedMessageLimit
	var clones []*telegram.Channel

	for i, dialog := range related {
		title := DeriveTitle(dialog.Name, sourceName, opts.Title, i)
		sendProgress(c.progress, relatedFoundUpdate(i+1, len(related), dialog.Name))

		res, err := c.CloneChannel(ctx, dialog.Channel, CloneOpts{
			Title:        title,
			MessageLimit: relatedLimit,
		})
		if err != nil {
			c.logger.Error("failed to clone related channel", "name", dialog.Name, "err", err)
			group.Errors = append(group.Errors, fmt.Sprintf("clone %s: %v", dialog.Name, err))
			continue
		}

		group.Related = append(group.Related, res)
		clones = append(clones, res.Dest)
	}

	c.disc.Announce(ctx, primary.Dest, clones, c.progress)
	return group, nil
}
