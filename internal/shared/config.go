package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	Clone    CloneConfig    `toml:"clone"`
	Download DownloadConfig `toml:"download"`
	Database DatabaseConfig `toml:"database"`
}

// TelegramConfig contains session settings for the external client collaborator.
type TelegramConfig struct {
	Phone       string `toml:"phone"`
	SessionFile string `toml:"session_file"`
}

// CloneConfig contains transfer policy knobs for the clone engine.
type CloneConfig struct {
	MaxRetries             int     `toml:"max_retries"`
	RetryDelaySeconds      int     `toml:"retry_delay_seconds"`
	DownloadTimeoutSeconds int     `toml:"download_timeout_seconds"`
	MaxFileSize            int64   `toml:"max_file_size"`
	CheckpointEvery        int     `toml:"checkpoint_every"`
	ThrottleEvery          int     `toml:"throttle_every"`
	ThrottleDelayMillis    int     `toml:"throttle_delay_ms"`
	SendRate               float64 `toml:"send_rate"`
	MessageLimit           int     `toml:"message_limit"`
	RelatedMessageLimit    int     `toml:"related_message_limit"`
	CheckpointDir          string  `toml:"checkpoint_dir"`
	TempDir                string  `toml:"temp_dir"`
}

// RetryDelay returns the fixed delay between counted retry attempts.
func (c CloneConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// DownloadTimeout returns the per-download time bound.
func (c CloneConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// ThrottleDelay returns the pause applied after every ThrottleEvery transferred items.
func (c CloneConfig) ThrottleDelay() time.Duration {
	return time.Duration(c.ThrottleDelayMillis) * time.Millisecond
}

// DownloadConfig contains bulk media download settings.
type DownloadConfig struct {
	Root          string  `toml:"root"`
	ProgressEvery int     `toml:"progress_every"`
	Rate          float64 `toml:"rate"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
