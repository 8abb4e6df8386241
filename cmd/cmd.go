// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, csv, markdown, text)",
		Value:   value,
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

// setupCommand handles database setup and migrations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and migration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending SQLite migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent SQLite migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// configCommand prints or creates the configuration file.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or create the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: r.ConfigShow,
			},
			{
				Name:  "init",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
		},
		Action: r.ConfigShow,
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalog HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// reconcileCommand repairs back-reference drift.
func reconcileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Recompute back-reference sets from forward references and repair drift",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report drift without writing",
			},
			formatFlag("text"),
			outputFlag(),
		},
		Action: r.Reconcile,
	}
}

// importCommand loads tagged audio files into the catalog.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import artists, albums and songs from a directory of tagged audio files",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "dir",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent tag readers (overrides import.workers)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Files opened per second (overrides import.rate)",
			},
			&cli.StringFlag{
				Name:  "country",
				Usage: "Country for artists created by the import",
			},
			&cli.StringFlag{
				Name:  "genre",
				Usage: "Genre for albums whose tags carry none",
			},
			formatFlag("text"),
		},
		Action: r.Import,
	}
}

// statsCommand renders the statistics views.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show catalog statistics",
		Flags: []cli.Flag{
			formatFlag("text"),
			outputFlag(),
		},
		Action: r.Stats,
	}
}

// listCommand prints catalog listings.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List catalog entities",
		Commands: []*cli.Command{
			{
				Name:  "artists",
				Usage: "List artists",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "genre", Usage: "Filter by genre id or name"},
					formatFlag("text"),
					outputFlag(),
				},
				Action: r.ListArtists,
			},
			{
				Name:  "albums",
				Usage: "List albums",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Filter by artist id or name"},
					&cli.StringFlag{Name: "genre", Usage: "Filter by genre id or name"},
					formatFlag("text"),
					outputFlag(),
				},
				Action: r.ListAlbums,
			},
			{
				Name:  "songs",
				Usage: "List songs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "Filter by artist id or name"},
					&cli.StringFlag{Name: "album", Usage: "Filter by album id"},
					formatFlag("text"),
					outputFlag(),
				},
				Action: r.ListSongs,
			},
		},
	}
}

// usersCommand manages mirrored users.
func usersCommand(r *Runner) *cli.Command {
	emailArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "email"}} }
	return &cli.Command{
		Name:  "users",
		Usage: "Manage mirrored users",
		Commands: []*cli.Command{
			{
				Name:      "promote",
				Usage:     "Grant the admin capability",
				Arguments: emailArg(),
				Action:    r.UserAction(promoteUser),
			},
			{
				Name:      "demote",
				Usage:     "Revoke the admin capability",
				Arguments: emailArg(),
				Action:    r.UserAction(demoteUser),
			},
			{
				Name:      "disable",
				Usage:     "Deactivate a user so they can no longer log in",
				Arguments: emailArg(),
				Action:    r.UserAction(disableUser),
			},
			{
				Name:      "enable",
				Usage:     "Reactivate a user",
				Arguments: emailArg(),
				Action:    r.UserAction(enableUser),
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Action:  r.TUI,
	}
}
