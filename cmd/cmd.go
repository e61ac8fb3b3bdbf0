// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

// cloneCommand migrates a single channel
func cloneCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clone",
		Usage: "Clone a channel or group into a new destination",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.Int64Flag{
				Name:     "source-id",
				Usage:    "Source channel ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Title for the destination channel",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "about",
				Usage: "Description for the destination (defaults to the source's)",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Make the destination public",
			},
			&cli.StringFlag{
				Name:  "username",
				Usage: "Public username to bind when --public is set",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items to copy",
			},
			&cli.StringFlag{
				Name:  "checkpoint-dir",
				Usage: "Directory for checkpoint files (forces file checkpoints)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output final statistics as JSON",
			},
		},
		Action: r.Clone,
	}
}

// relatedCommand migrates a supergroup together with its related channels
func relatedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "related",
		Usage: "Clone a supergroup and every related channel discovered around it",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.Int64Flag{
				Name:     "source-id",
				Usage:    "Primary source channel ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Base title for the cloned channels",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of items to copy from the primary",
			},
			&cli.StringFlag{
				Name:  "checkpoint-dir",
				Usage: "Directory for checkpoint files (forces file checkpoints)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output final statistics as JSON",
			},
		},
		Action: r.CloneRelated,
	}
}

// downloadCommand bulk-downloads chat media
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download photos and videos from chats into local folders",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.Int64Flag{
				Name:  "chat-id",
				Usage: "Only download from this chat ID",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output directory root",
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Media types to download (image, video)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum messages to inspect per chat",
			},
		},
		Action: r.Download,
	}
}

// historyCommand inspects recorded migration runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Completed migration runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: []cli.Flag{
					configFlag(),
					verboseFlag(),
					&cli.Int64Flag{
						Name:  "source-id",
						Usage: "Filter by source channel ID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the latest database migration instead",
			},
		},
		Action: r.Setup,
	}
}
