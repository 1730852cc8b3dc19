// submodule cmd contains command definitions
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/strumcli/strum/internal/shared"
	"github.com/urfave/cli/v3"
)

// intArg parses a required integer positional argument.
func intArg(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return n, nil
}

// shellCommand starts the interactive session. Numbered references from
// search, devices, playlists, and albums only survive inside one shell.
func shellCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"repl"},
		Usage:   "Start an interactive session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.Shell(ctx, nil)
		},
	}
}

// authCommand handles the token lifecycle
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorization and token management",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Inspect the stored token without a network call",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored tokens",
				Action: r.AuthLogout,
			},
		},
	}
}

// playbackCommands groups the playback controls into a multi-command
// container that register flattens to the top level.
func playbackCommands(r *Runner) *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			{
				Name:    "play",
				Aliases: []string{"p"},
				Usage:   "Resume playback, or play a search result number or spotify URI",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "target"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Play(ctx, cmd.StringArg("target"))
				},
			},
			{
				Name:  "pause",
				Usage: "Pause playback",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Pause(ctx)
				},
			},
			{
				Name:    "next",
				Aliases: []string{"n"},
				Usage:   "Skip to the next track",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Next(ctx)
				},
			},
			{
				Name:    "prev",
				Aliases: []string{"previous"},
				Usage:   "Skip back to the previous track",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Previous(ctx)
				},
			},
			{
				Name:  "seek",
				Usage: "Seek by a signed number of seconds, e.g. 'seek -- -15'",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "seconds"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					delta, err := intArg(cmd, "seconds")
					if err != nil {
						return err
					}
					return r.Seek(ctx, delta)
				},
			},
			{
				Name:    "volume",
				Aliases: []string{"vol"},
				Usage:   "Set device volume (0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "percent"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					percent, err := intArg(cmd, "percent")
					if err != nil {
						return err
					}
					return r.Volume(ctx, percent)
				},
			},
			{
				Name:  "shuffle",
				Usage: "Set shuffle: on, off, or toggle",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "mode"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Shuffle(ctx, cmd.StringArg("mode"))
				},
			},
			{
				Name:  "repeat",
				Usage: "Set repeat mode: track, context, or off",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "mode"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Repeat(ctx, cmd.StringArg("mode"))
				},
			},
			{
				Name:    "queue",
				Aliases: []string{"q"},
				Usage:   "Add a search result number or spotify URI to the queue",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "target"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Queue(ctx, cmd.StringArg("target"))
				},
			},
			{
				Name:    "transfer",
				Aliases: []string{"t"},
				Usage:   "Move playback to a device number or device id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "device"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Transfer(ctx, cmd.StringArg("device"))
				},
			},
			{
				Name:    "status",
				Aliases: []string{"np"},
				Usage:   "Show the current playback state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Auto-refresh until a key is pressed",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Status(ctx, cmd.Bool("watch"))
				},
			},
		},
	}
}

// listingCommands groups the browse and listing operations.
func listingCommands(r *Runner) *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search tracks and episodes",
				ArgsUsage: "<query>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Search(ctx, strings.Join(cmd.Args().Slice(), " "))
				},
			},
			{
				Name:      "albums",
				Usage:     "Search albums",
				ArgsUsage: "<query>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Albums(ctx, strings.Join(cmd.Args().Slice(), " "))
				},
			},
			{
				Name:    "saved",
				Aliases: []string{"library"},
				Usage:   "List saved tracks from your library",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 10,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Saved(ctx, int(cmd.Int("limit")))
				},
			},
			{
				Name:    "devices",
				Aliases: []string{"d"},
				Usage:   "List available playback devices",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Devices(ctx)
				},
			},
			{
				Name:    "playlists",
				Aliases: []string{"pl"},
				Usage:   "List your playlists",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Playlists(ctx)
				},
			},
			{
				Name:  "play-list",
				Usage: "Play a numbered playlist from 'playlists'",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "number"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.PlayPlaylist(ctx, cmd.StringArg("number"))
				},
			},
			{
				Name:  "history",
				Usage: "Show locally recorded plays",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 20,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.History(ctx, int(cmd.Int("limit")))
				},
			},
			{
				Name:  "recent",
				Usage: "Show recently played tracks from the service",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 10,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.Recent(ctx, int(cmd.Int("limit")))
				},
			},
		},
	}
}

// configCommand handles settings inspection and updates
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show and change settings",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.ConfigShow(ctx, cmd.Bool("json"))
				},
			},
			{
				Name:  "set",
				Usage: "Update one setting, e.g. 'config set device Kitchen'",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				ArgsUsage: "<key> <value>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return r.ConfigSet(ctx, cmd.StringArg("key"), strings.Join(cmd.Args().Slice(), " "))
				},
			},
		},
	}
}

// setupCommand handles one-time local initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "One-time local setup",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the history database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
