package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Clone.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Clone.MaxRetries)
	}
	if cfg.Clone.MaxFileSize != 52428800 {
		t.Errorf("MaxFileSize = %d, want 52428800", cfg.Clone.MaxFileSize)
	}
	if cfg.Clone.CheckpointEvery != 10 {
		t.Errorf("CheckpointEvery = %d, want 10", cfg.Clone.CheckpointEvery)
	}
	if cfg.Clone.ThrottleEvery != 5 {
		t.Errorf("ThrottleEvery = %d, want 5", cfg.Clone.ThrottleEvery)
	}
	if cfg.Clone.RetryDelay() != 2*time.Second {
		t.Errorf("RetryDelay() = %v, want 2s", cfg.Clone.RetryDelay())
	}
	if cfg.Clone.ThrottleDelay() != 500*time.Millisecond {
		t.Errorf("ThrottleDelay() = %v, want 500ms", cfg.Clone.ThrottleDelay())
	}
	if cfg.Clone.DownloadTimeout() != 5*time.Minute {
		t.Errorf("DownloadTimeout() = %v, want 5m", cfg.Clone.DownloadTimeout())
	}
	if cfg.Download.ProgressEvery != 50 {
		t.Errorf("ProgressEvery = %d, want 50", cfg.Download.ProgressEvery)
	}
	if cfg.Download.Rate != 4.0 {
		t.Errorf("Download.Rate = %v, want 4.0", cfg.Download.Rate)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[clone]
max_retries = 7
checkpoint_every = 3

[database]
path = "custom.db"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Clone.MaxRetries != 7 {
			t.Errorf("MaxRetries = %d, want 7", cfg.Clone.MaxRetries)
		}
		if cfg.Clone.CheckpointEvery != 3 {
			t.Errorf("CheckpointEvery = %d, want 3", cfg.Clone.CheckpointEvery)
		}
		if cfg.Database.Path != "custom.db" {
			t.Errorf("Database.Path = %s, want custom.db", cfg.Database.Path)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("LoadConfig() error = %v, want ErrMissingConfig", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("created config does not parse: %v", err)
	}
	if cfg.Clone.MaxRetries != 3 {
		t.Errorf("created config MaxRetries = %d, want 3", cfg.Clone.MaxRetries)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("CreateConfigFile() should refuse to overwrite an existing file")
	}
}
