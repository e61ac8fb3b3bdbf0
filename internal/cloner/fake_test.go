package cloner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// fakeClient is an in-memory stand-in for the external API client. Error
// slices are consumed one entry per call, so tests can fail exactly the
// Nth operation.
type fakeClient struct {
	dialogs  []telegram.Dialog
	msgs     map[int64][]telegram.Message
	known    map[int64]*telegram.Channel
	linkedID int64

	protected    bool
	protectedErr error

	createErr     error
	textErrs      []error
	fileErrs      []error
	downloadErrs  []error
	downloadEmpty bool

	creates   int
	downloads int
	limits    []int
	texts     []string
	files     []fileSend
	usernames []string
}

type fileSend struct {
	path    string
	caption string
}

func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (f *fakeClient) ListDialogs(ctx context.Context, limit int) ([]telegram.Dialog, error) {
	return f.dialogs, nil
}

func (f *fakeClient) ListMessages(ctx context.Context, ch *telegram.Channel, limit int) ([]telegram.Message, error) {
	f.limits = append(f.limits, limit)
	return f.msgs[ch.ID], nil
}

func (f *fakeClient) IsProtected(ctx context.Context, ch *telegram.Channel) (bool, error) {
	return f.protected, f.protectedErr
}

func (f *fakeClient) CreateChannel(ctx context.Context, title, about string, broadcast bool) (*telegram.Channel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.creates++
	ch := &telegram.Channel{
		ID:        9000 + int64(f.creates),
		Title:     title,
		About:     about,
		Broadcast: broadcast,
	}
	if f.known == nil {
		f.known = map[int64]*telegram.Channel{}
	}
	f.known[ch.ID] = ch
	return ch, nil
}

func (f *fakeClient) ResolveChannel(ctx context.Context, id int64) (*telegram.Channel, error) {
	if ch, ok := f.known[id]; ok {
		return ch, nil
	}
	return nil, fmt.Errorf("channel %d: %w", id, shared.ErrChannelNotFound)
}

func (f *fakeClient) SendText(ctx context.Context, ch *telegram.Channel, text string) error {
	if err := popErr(&f.textErrs); err != nil {
		return err
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeClient) SendFile(ctx context.Context, ch *telegram.Channel, path, caption string) error {
	if err := popErr(&f.fileErrs); err != nil {
		return err
	}
	f.files = append(f.files, fileSend{path: path, caption: caption})
	return nil
}

func (f *fakeClient) DownloadMedia(ctx context.Context, msg *telegram.Message, dir string) (string, error) {
	f.downloads++
	if err := popErr(&f.downloadErrs); err != nil {
		return "", err
	}
	if f.downloadEmpty {
		return "", nil
	}

	path := filepath.Join(dir, fmt.Sprintf("media_%d.bin", msg.ID))
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeClient) DownloadAvatar(ctx context.Context, ch *telegram.Channel, dir string) (string, error) {
	return "", nil
}

func (f *fakeClient) SetUsername(ctx context.Context, ch *telegram.Channel, username string) error {
	f.usernames = append(f.usernames, username)
	return nil
}

func (f *fakeClient) EditPhoto(ctx context.Context, ch *telegram.Channel, path string) error {
	return nil
}

func (f *fakeClient) LinkedChannelID(ctx context.Context, ch *telegram.Channel) (int64, error) {
	return f.linkedID, nil
}
