// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// catchCommand runs one capture session
func catchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catch",
		Aliases: []string{"listen", "serve"},
		Usage:   "Wait for the browser extension to send a stream",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address to listen on (default: the local machine address)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Seconds to wait for the browser extension",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the waiting dialog",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Do not record the capture in the history database",
			},
			&cli.BoolFlag{
				Name:  "kodi",
				Usage: "Print only the playback URL",
			},
		},
		Action: r.Catch,
	}
}

// historyCommand handles saved captures
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse previously captured streams",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved captures, newest first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of captures to list",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only list captures with this status (captured or failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv or markdown",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file instead of stdout",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one capture (id, id prefix or #sequence)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete one capture (id, id prefix or #sequence)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.HistoryDelete,
			},
			{
				Name:  "ui",
				Usage: "Interactive TUI for saved captures",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of captures to load",
						Value: 100,
					},
				},
				Action: r.HistoryUI,
			},
		},
	}
}

// playURLCommand prints the playback URL of a saved capture
func playURLCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play-url",
		Usage: "Print the playback URL (with headers) of a saved capture",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "curl",
				Usage: "Print a curl command instead",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Keep every captured header",
			},
		},
		Action: r.PlayURL,
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the config file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
