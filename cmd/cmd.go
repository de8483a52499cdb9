// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/urfave/cli/v3"
)

// sourceFlags select where a command reads the catalog from.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "offline",
			Usage: "Read the stored snapshot instead of fetching",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Store the fetched catalog as the new snapshot",
		},
	}
}

// outputFlags control how a command prints.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// tracksCommand handles catalog listing operations
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracks",
		Aliases: []string{"t"},
		Usage:   "List, group, search & export the catalog",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List every track in document order",
				Flags:   flags(sourceFlags(), outputFlags()),
				Action:  r.TracksList,
			},
			{
				Name:   "tree",
				Usage:  "Show tracks grouped into the three-level folder tree",
				Flags:  flags(sourceFlags(), outputFlags()),
				Action: r.TracksTree,
			},
			{
				Name:  "search",
				Usage: "Find tracks whose title or category contains a term",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "term",
					},
				},
				Flags:  flags(sourceFlags(), outputFlags()),
				Action: r.TracksSearch,
			},
			{
				Name:  "featured",
				Usage: "Pick a random sample of tracks",
				Flags: flags(sourceFlags(), outputFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of tracks to pick",
						Value:   catalog.FeaturedCount,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Seed for a repeatable sample (0 picks a random seed)",
					},
				}),
				Action: r.TracksFeatured,
			},
			{
				Name:  "export",
				Usage: "Export the catalog as CSV, YAML, JSON or text",
				Flags: flags(sourceFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, yaml, json, text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or directory with --split",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only export tracks matching this term",
					},
					&cli.BoolFlag{
						Name:  "split",
						Usage: "Write one file per top-level folder plus a manifest",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers for --split",
						Value: 4,
					},
				}),
				Action: r.TracksExport,
			},
		},
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog over HTTP (GET /api/tracks)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Listen address (host:port); defaults to the [server] config",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store every successful fetch as the snapshot",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open /api/tracks in the default browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// playCommand plays tracks without the TUI
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track by id or by the first title/category match",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "track",
			},
		},
		Flags: flags(sourceFlags(), []cli.Flag{
			&cli.BoolFlag{
				Name:  "continue",
				Usage: "Keep playing the following tracks",
			},
			&cli.FloatFlag{
				Name:  "volume",
				Usage: "Volume between 0 and 1; defaults to the [player] config",
				Value: -1,
			},
		}),
		Action: r.Play,
	}
}

// cacheCommand handles the local catalog snapshot
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the locally stored catalog snapshot",
		Commands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Fetch the catalog, probe durations and store it",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent duration probes",
						Value: 4,
					},
					&cli.StringFlag{
						Name:  "probe",
						Usage: "Override duration probing: none, range or decode",
					},
				},
				Action: r.CacheRefresh,
			},
			{
				Name:   "show",
				Usage:  "Describe the stored snapshot",
				Flags:  outputFlags(),
				Action: r.CacheShow,
			},
			{
				Name:   "clear",
				Usage:  "Delete the stored snapshot",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "List migrations and whether they are applied",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser and player",
		Flags: flags(sourceFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/wereb-tui.log",
			},
		}),
		Action: r.TUI,
	}
}
