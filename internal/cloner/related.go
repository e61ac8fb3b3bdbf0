package cloner

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// Discoverer finds broadcast channels related to a primary source and
// handles their cross-announcement in the cloned primary.
//
// The name heuristic is deliberately permissive: one shared token is enough,
// matching the observed behavior it reimplements.
type Discoverer struct {
	client telegram.Client
	logger *log.Logger
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(client telegram.Client, logger *log.Logger) *Discoverer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Discoverer{client: client, logger: logger}
}

// FindRelated enumerates dialogs and returns broadcast channels related to
// the primary, either by sharing a name token or by explicit link metadata.
func (d *Discoverer) FindRelated(ctx context.Context, primary *telegram.Channel, primaryName string) ([]telegram.Dialog, error) {
	dialogs, err := d.client.ListDialogs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list dialogs: %w", err)
	}

	linkedID, err := d.client.LinkedChannelID(ctx, primary)
	if err != nil {
		d.logger.Debug("linked channel lookup failed", "err", err)
		linkedID = 0
	}

	baseTokens := strings.Fields(strings.ToLower(primaryName))

	var related []telegram.Dialog
	for _, dialog := range dialogs {
		ch := dialog.Channel
		if ch == nil || !ch.Broadcast || ch.ID == primary.ID {
			continue
		}

		switch {
		case nameRelated(dialog.Name, baseTokens):
			d.logger.Info("related channel found by name", "name", dialog.Name)
			related = append(related, dialog)
		case linkedID != 0 && ch.ID == linkedID:
			d.logger.Info("linked channel found", "name", dialog.Name)
			related = append(related, dialog)
		}
	}

	return related, nil
}

// nameRelated reports whether a candidate name shares at least one
// whitespace-delimited, case-insensitive token with the primary name.
func nameRelated(name string, baseTokens []string) bool {
	lower := strings.ToLower(name)
	for _, token := range baseTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// DeriveTitle builds the destination title for a related candidate.
//
// A name containing "channel" has the primary's name substituted by the new
// base title; any other name is suffixed onto it; a nameless candidate falls
// back to a numbered placeholder.
func DeriveTitle(candidateName, primaryName, baseTitle string, index int) string {
	if candidateName == "" {
		return fmt.Sprintf("%s - Channel %d", baseTitle, index+1)
	}
	if strings.Contains(strings.ToLower(candidateName), "channel") {
		return strings.ReplaceAll(candidateName, primaryName, baseTitle)
	}
	return fmt.Sprintf("%s - %s", baseTitle, candidateName)
}

// Announce posts one message per cloned related channel into the primary
// destination. Failures are logged and non-fatal.
func (d *Discoverer) Announce(ctx context.Context, primaryDest *telegram.Channel, clones []*telegram.Channel, progress chan<- ProgressUpdate) {
	for i, ch := range clones {
		if err := d.client.SendText(ctx, primaryDest, announcementText(ch)); err != nil {
			d.logger.Warn("failed to announce related channel", "title", ch.Title, "err", err)
			continue
		}
		sendProgress(progress, announceUpdate(i+1, len(clones), ch.Title))
	}
}
