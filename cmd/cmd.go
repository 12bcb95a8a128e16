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

func playlistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "playlist",
		Aliases:  []string{"p"},
		Usage:    "Playlist URL, URI, or ID",
		Required: true,
	}
}

// dupesCommand handles duplicate detection and removal.
func dupesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dupes",
		Aliases: []string{"duplicates"},
		Usage:   "Find and remove duplicate tracks in a playlist",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Report duplicate entries without modifying the playlist",
				Flags: []cli.Flag{
					configFlag(),
					playlistFlag(),
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Keep release markers (remaster, live, etc.) significant when matching",
					},
					&cli.IntFlag{
						Name:  "tolerance",
						Usage: "Duration tolerance in seconds",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Write the report to a CSV file at this path",
					},
				},
				Action: r.DupesCheck,
			},
			{
				Name:  "clean",
				Usage: "Remove duplicate entries, keeping the earliest-added copy",
				Flags: []cli.Flag{
					configFlag(),
					playlistFlag(),
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Keep release markers (remaster, live, etc.) significant when matching",
					},
					&cli.IntFlag{
						Name:  "tolerance",
						Usage: "Duration tolerance in seconds",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip the confirmation prompt",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DupesClean,
			},
		},
	}
}

// explicitCommand handles explicit-content scanning and filtering.
func explicitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "explicit",
		Usage: "Find and filter explicit tracks in a playlist",
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "Report explicit tracks without modifying the playlist",
				Flags: []cli.Flag{
					configFlag(),
					playlistFlag(),
					&cli.BoolFlag{
						Name:  "lyrics",
						Usage: "Also scan lyrics of unflagged tracks for banned words",
					},
					&cli.StringSliceFlag{
						Name:  "words",
						Usage: "Additional banned words for the lyrics scan",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Write the report to a CSV file at this path",
					},
				},
				Action: r.ExplicitScan,
			},
			{
				Name:  "clean",
				Usage: "Remove explicit tracks in place or build a clean copy",
				Flags: []cli.Flag{
					configFlag(),
					playlistFlag(),
					&cli.BoolFlag{
						Name:  "lyrics",
						Usage: "Also scan lyrics of unflagged tracks for banned words",
					},
					&cli.StringSliceFlag{
						Name:  "words",
						Usage: "Additional banned words for the lyrics scan",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "What to do with flagged tracks: remove or copy",
						Value: "remove",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip the confirmation prompt",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ExplicitClean,
			},
		},
	}
}

// topCommand shows the user's listening statistics.
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show your most played artists or tracks",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "kind",
				Usage: "What to list: artists or tracks",
				Value: "artists",
			},
			&cli.StringFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   "Time range: short_term, medium_term, or long_term",
				Value:   "medium_term",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Number of entries to return (max 50)",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Top,
	}
}

// historyCommand lists past maintenance operations from the local database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past maintenance operations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Only show operations for this playlist ID",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of entries to show",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete locally stored tokens",
				Action: r.AuthLogout,
			},
		},
	}
}

// setupCommand handles setup operations for database and TLS certificates.
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
				Name:  "cert",
				Usage: "Generate a self-signed TLS certificate for the OAuth redirect listener",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite existing certificate files",
					},
				},
				Action: r.SetupCert,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist maintenance.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive maintenance shell",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
