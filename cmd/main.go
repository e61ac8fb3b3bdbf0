package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"tgclone/internal/shared"
	"tgclone/internal/telegram"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var client telegram.Client
	if config.Telegram.SessionFile != "" {
		if _, err := os.Stat(config.Telegram.SessionFile); err != nil {
			logger.Warn("session file not found; commands requiring a client will fail",
				"path", config.Telegram.SessionFile)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tgclone",
		Usage:    "Clone channels and groups, with resumable media downloads",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
