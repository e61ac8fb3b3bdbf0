package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

// stubClient implements the client contract with canned messages; only the
// listing and download calls matter here.
type stubClient struct {
	msgs      map[int64][]telegram.Message
	downloads int
	failIDs   map[int64]bool
}

func (s *stubClient) ListDialogs(ctx context.Context, limit int) ([]telegram.Dialog, error) {
	return nil, nil
}

func (s *stubClient) ListMessages(ctx context.Context, ch *telegram.Channel, limit int) ([]telegram.Message, error) {
	return s.msgs[ch.ID], nil
}

func (s *stubClient) IsProtected(ctx context.Context, ch *telegram.Channel) (bool, error) {
	return false, nil
}

func (s *stubClient) CreateChannel(ctx context.Context, title, about string, broadcast bool) (*telegram.Channel, error) {
	return nil, errors.New("not supported")
}

func (s *stubClient) ResolveChannel(ctx context.Context, id int64) (*telegram.Channel, error) {
	return nil, errors.New("not supported")
}

func (s *stubClient) SendText(ctx context.Context, ch *telegram.Channel, text string) error {
	return errors.New("not supported")
}

func (s *stubClient) SendFile(ctx context.Context, ch *telegram.Channel, path, caption string) error {
	return errors.New("not supported")
}

func (s *stubClient) DownloadMedia(ctx context.Context, msg *telegram.Message, dir string) (string, error) {
	s.downloads++
	if s.failIDs[msg.ID] {
		return "", errors.New("download failed")
	}

	path := filepath.Join(dir, fmt.Sprintf("media_%d.bin", msg.ID))
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *stubClient) DownloadAvatar(ctx context.Context, ch *telegram.Channel, dir string) (string, error) {
	return "", nil
}

func (s *stubClient) SetUsername(ctx context.Context, ch *telegram.Channel, username string) error {
	return nil
}

func (s *stubClient) EditPhoto(ctx context.Context, ch *telegram.Channel, path string) error {
	return nil
}

func (s *stubClient) LinkedChannelID(ctx context.Context, ch *telegram.Channel) (int64, error) {
	return 0, nil
}

func photoMsg(id int64) telegram.Message {
	return telegram.Message{ID: id, Media: &telegram.Media{Photo: &telegram.Photo{Size: 100}}}
}

func videoMsg(id int64) telegram.Message {
	return telegram.Message{ID: id, Media: &telegram.Media{Document: &telegram.Document{
		FileName: fmt.Sprintf("clip_%d.mp4", id),
		MimeType: "video/mp4",
	}}}
}

func testDialog(id int64, name string) telegram.Dialog {
	return telegram.Dialog{Name: name, Channel: &telegram.Channel{ID: id, Title: name}}
}

func TestDownloadDialog(t *testing.T) {
	t.Run("downloads matching media into a per-chat folder", func(t *testing.T) {
		// newest-first: video 4, text 3, photo 2, photo 1
		client := &stubClient{msgs: map[int64][]telegram.Message{
			1: {videoMsg(4), {ID: 3, Text: "just text"}, photoMsg(2), photoMsg(1)},
		}}

		root := t.TempDir()
		d := New(client, Options{Root: root}, shared.NewLogger(io.Discard))

		stats, err := d.DownloadDialog(context.Background(), testDialog(1, "My Chat"))
		if err != nil {
			t.Fatalf("DownloadDialog() error = %v", err)
		}

		if stats.Downloaded != 3 {
			t.Errorf("Downloaded = %d, want 3", stats.Downloaded)
		}
		if stats.Folder != filepath.Join(root, "My_Chat") {
			t.Errorf("Folder = %s, want sanitized chat name", stats.Folder)
		}

		entries, err := os.ReadDir(stats.Folder)
		if err != nil {
			t.Fatalf("failed to read output folder: %v", err)
		}
		// 3 media files plus the progress marker.
		if len(entries) != 4 {
			t.Errorf("folder has %d entries, want 4", len(entries))
		}
	})

	t.Run("type filter limits downloads", func(t *testing.T) {
		client := &stubClient{msgs: map[int64][]telegram.Message{
			1: {videoMsg(2), photoMsg(1)},
		}}

		d := New(client, Options{Root: t.TempDir(), Types: []string{"video"}}, shared.NewLogger(io.Discard))
		stats, err := d.DownloadDialog(context.Background(), testDialog(1, "Videos"))
		if err != nil {
			t.Fatalf("DownloadDialog() error = %v", err)
		}

		if stats.Downloaded != 1 {
			t.Errorf("Downloaded = %d, want 1 video only", stats.Downloaded)
		}
	})

	t.Run("resumes past the saved high-water mark", func(t *testing.T) {
		client := &stubClient{msgs: map[int64][]telegram.Message{
			1: {photoMsg(3), photoMsg(2), photoMsg(1)},
		}}

		root := t.TempDir()
		folder := filepath.Join(root, "Resumable")
		if err := os.MkdirAll(folder, 0755); err != nil {
			t.Fatalf("failed to create folder: %v", err)
		}
		if err := os.WriteFile(filepath.Join(folder, progressFile), []byte(`{"last_id":2}`), 0644); err != nil {
			t.Fatalf("failed to seed progress: %v", err)
		}

		d := New(client, Options{Root: root}, shared.NewLogger(io.Discard))
		stats, err := d.DownloadDialog(context.Background(), testDialog(1, "Resumable"))
		if err != nil {
			t.Fatalf("DownloadDialog() error = %v", err)
		}

		if stats.Downloaded != 1 {
			t.Errorf("Downloaded = %d, want only the item past the marker", stats.Downloaded)
		}
		if client.downloads != 1 {
			t.Errorf("download calls = %d, want 1", client.downloads)
		}
	})

	t.Run("progress marker records the highest inspected id", func(t *testing.T) {
		client := &stubClient{msgs: map[int64][]telegram.Message{
			1: {photoMsg(9), photoMsg(5)},
		}}

		root := t.TempDir()
		d := New(client, Options{Root: root}, shared.NewLogger(io.Discard))
		stats, err := d.DownloadDialog(context.Background(), testDialog(1, "Marked"))
		if err != nil {
			t.Fatalf("DownloadDialog() error = %v", err)
		}

		data, err := os.ReadFile(filepath.Join(stats.Folder, progressFile))
		if err != nil {
			t.Fatalf("failed to read progress file: %v", err)
		}

		var state progressState
		if err := json.Unmarshal(data, &state); err != nil {
			t.Fatalf("progress file does not parse: %v", err)
		}
		if state.LastID != 9 {
			t.Errorf("LastID = %d, want 9", state.LastID)
		}
	})

	t.Run("failed downloads count as errors and do not stop the chat", func(t *testing.T) {
		client := &stubClient{
			msgs:    map[int64][]telegram.Message{1: {photoMsg(2), photoMsg(1)}},
			failIDs: map[int64]bool{1: true},
		}

		d := New(client, Options{Root: t.TempDir()}, shared.NewLogger(io.Discard))
		stats, err := d.DownloadDialog(context.Background(), testDialog(1, "Flaky"))
		if err != nil {
			t.Fatalf("DownloadDialog() error = %v", err)
		}

		if stats.Downloaded != 1 || stats.Errors != 1 {
			t.Errorf("stats = %+v, want 1 downloaded, 1 error", stats)
		}
	})
}

func TestDownloadAll(t *testing.T) {
	client := &stubClient{msgs: map[int64][]telegram.Message{
		1: {photoMsg(1)},
		2: {videoMsg(1)},
	}}

	root := t.TempDir()
	d := New(client, Options{Root: root}, shared.NewLogger(io.Discard))

	all, err := d.DownloadAll(context.Background(), []telegram.Dialog{
		testDialog(1, "First"),
		testDialog(2, "Second"),
	})
	if err != nil {
		t.Fatalf("DownloadAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("stats for %d chats, want 2", len(all))
	}

	data, err := os.ReadFile(filepath.Join(root, "download_manifest.json"))
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}

	var manifest []*Stats
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest does not parse: %v", err)
	}
	if len(manifest) != 2 || manifest[0].Title != "First" {
		t.Errorf("manifest = %+v", manifest)
	}
}
