package cloner

import (
	"context"
	"io"
	"testing"

	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

func TestProvision(t *testing.T) {
	t.Run("about falls back to the source description", func(t *testing.T) {
		client := &fakeClient{}
		p := NewProvisioner(client, t.TempDir(), shared.NewLogger(io.Discard))

		source := &telegram.Channel{ID: 1, Title: "Source", About: "original about", Broadcast: true}
		dest, err := p.Provision(context.Background(), source, ChannelSpec{Title: "Copy"})
		if err != nil {
			t.Fatalf("Provision() error = %v", err)
		}

		if dest.About != "original about" {
			t.Errorf("About = %q, want the source's", dest.About)
		}
		if !dest.Broadcast {
			t.Error("destination should mirror the source's broadcast type")
		}
	})

	t.Run("explicit about wins", func(t *testing.T) {
		client := &fakeClient{}
		p := NewProvisioner(client, t.TempDir(), shared.NewLogger(io.Discard))

		source := &telegram.Channel{ID: 1, Title: "Source", About: "original"}
		dest, err := p.Provision(context.Background(), source, ChannelSpec{Title: "Copy", About: "custom"})
		if err != nil {
			t.Fatalf("Provision() error = %v", err)
		}
		if dest.About != "custom" {
			t.Errorf("About = %q, want custom", dest.About)
		}
	})

	t.Run("public spec binds a username", func(t *testing.T) {
		client := &fakeClient{}
		p := NewProvisioner(client, t.TempDir(), shared.NewLogger(io.Discard))

		source := &telegram.Channel{ID: 1, Title: "Source"}
		dest, err := p.Provision(context.Background(), source, ChannelSpec{
			Title:    "Copy",
			Public:   true,
			Username: "copyhandle",
		})
		if err != nil {
			t.Fatalf("Provision() error = %v", err)
		}

		if len(client.usernames) != 1 || client.usernames[0] != "copyhandle" {
			t.Errorf("bound usernames = %v, want [copyhandle]", client.usernames)
		}
		if dest.Username != "copyhandle" {
			t.Errorf("Username = %q, want copyhandle", dest.Username)
		}
	})

	t.Run("private spec never binds a username", func(t *testing.T) {
		client := &fakeClient{}
		p := NewProvisioner(client, t.TempDir(), shared.NewLogger(io.Discard))

		source := &telegram.Channel{ID: 1, Title: "Source"}
		if _, err := p.Provision(context.Background(), source, ChannelSpec{Title: "Copy", Username: "ignored"}); err != nil {
			t.Fatalf("Provision() error = %v", err)
		}
		if len(client.usernames) != 0 {
			t.Errorf("usernames = %v, want none without Public", client.usernames)
		}
	})
}
