package cloner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// ChannelSpec describes the destination channel to provision.
type ChannelSpec struct {
	Title    string
	About    string // falls back to the source's description when empty
	Public   bool
	Username string
}

// Provisioner creates destination channels mirroring a source's type,
// description, and avatar.
type Provisioner struct {
	client  telegram.Client
	logger  *log.Logger
	tempDir string
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(client telegram.Client, tempDir string, logger *log.Logger) *Provisioner {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if tempDir == "" {
		tempDir = shared.DefaultConfig().Clone.TempDir
	}
	return &Provisioner{client: client, logger: logger, tempDir: tempDir}
}

// Provision creates the destination channel. Username binding and avatar
// mirroring are best effort: their failure is logged and the channel still
// exists. Only creation itself is fatal.
func (p *Provisioner) Provision(ctx context.Context, source *telegram.Channel, spec ChannelSpec) (*telegram.Channel, error) {
	about := spec.About
	if about == "" {
		about = source.About
	}

	dest, err := p.client.CreateChannel(ctx, spec.Title, about, source.Broadcast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCreateChannel, err)
	}
	p.logger.Info("destination channel created", "title", dest.Title, "id", dest.ID)

	if spec.Public && spec.Username != "" {
		if err := p.client.SetUsername(ctx, dest, spec.Username); err != nil {
			p.logger.Warn("failed to bind username", "username", spec.Username, "err", err)
		} else {
			dest.Username = spec.Username
		}
	}

	if source.HasPhoto {
		p.copyAvatar(ctx, source, dest)
	}

	return dest, nil
}

// copyAvatar downloads the source's profile photo and applies it to the
// destination. Failures are logged, never fatal.
func (p *Provisioner) copyAvatar(ctx context.Context, source, dest *telegram.Channel) {
	dir := filepath.Join(p.tempDir, shared.GenerateID())
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.logger.Warn("failed to create temp directory for avatar", "err", err)
		return
	}
	defer os.RemoveAll(dir)

	path, err := p.client.DownloadAvatar(ctx, source, dir)
	if err != nil {
		p.logger.Warn("failed to download source avatar", "err", err)
		return
	}
	if path == "" {
		return
	}

	if err := p.client.EditPhoto(ctx, dest, path); err != nil {
		p.logger.Warn("failed to apply avatar", "err", err)
		return
	}
	p.logger.Info("channel avatar copied")
}
