package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/strumcli/strum/internal/shared"
)

// shellHandler executes one interactive command with its arguments.
type shellHandler func(ctx context.Context, args []string) error

// binding declares one shell command: its canonical name, built-in
// aliases, usage line, and handler.
type binding struct {
	name    string
	aliases []string
	usage   string
	handler shellHandler
}

// errQuit signals a clean shell exit.
var errQuit = fmt.Errorf("quit")

// bindings returns the declarative command list the dispatch table is
// built from. User aliases from settings are merged in at build time; no
// wrapper functions are generated.
func (r *Runner) bindings() []binding {
	return []binding{
		{"search", []string{"s"}, "search <query> - search tracks and episodes", func(ctx context.Context, args []string) error {
			return r.Search(ctx, strings.Join(args, " "))
		}},
		{"albums", nil, "albums <query> - search albums", func(ctx context.Context, args []string) error {
			return r.Albums(ctx, strings.Join(args, " "))
		}},
		{"play", []string{"p"}, "play [n|uri] - resume, or play a result", func(ctx context.Context, args []string) error {
			return r.Play(ctx, firstArg(args))
		}},
		{"pause", nil, "pause - pause playback", func(ctx context.Context, args []string) error {
			return r.Pause(ctx)
		}},
		{"next", []string{"n"}, "next - skip forward", func(ctx context.Context, args []string) error {
			return r.Next(ctx)
		}},
		{"prev", []string{"previous"}, "prev - skip back", func(ctx context.Context, args []string) error {
			return r.Previous(ctx)
		}},
		{"seek", nil, "seek <±seconds> - seek relative to the playhead", func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: seek needs a signed number of seconds", shared.ErrMissingArgument)
			}
			delta, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a number of seconds", shared.ErrInvalidArgument, args[0])
			}
			return r.Seek(ctx, delta)
		}},
		{"volume", []string{"vol"}, "volume <0-100> - set device volume", func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: volume needs a percentage", shared.ErrMissingArgument)
			}
			percent, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a percentage", shared.ErrInvalidArgument, args[0])
			}
			return r.Volume(ctx, percent)
		}},
		{"shuffle", nil, "shuffle <on|off|toggle> - set shuffle", func(ctx context.Context, args []string) error {
			return r.Shuffle(ctx, firstArg(args))
		}},
		{"repeat", nil, "repeat <track|context|off> - set repeat mode", func(ctx context.Context, args []string) error {
			return r.Repeat(ctx, firstArg(args))
		}},
		{"queue", []string{"q"}, "queue <n|uri> - add to the playback queue", func(ctx context.Context, args []string) error {
			return r.Queue(ctx, firstArg(args))
		}},
		{"saved", []string{"library"}, "saved [limit] - saved tracks from your library", func(ctx context.Context, args []string) error {
			limit := 10
			if len(args) > 0 {
				if n, err := strconv.Atoi(args[0]); err == nil {
					limit = n
				}
			}
			return r.Saved(ctx, limit)
		}},
		{"devices", []string{"d"}, "devices - list playback devices", func(ctx context.Context, args []string) error {
			return r.Devices(ctx)
		}},
		{"transfer", []string{"t"}, "transfer <n|id> - move playback to a device", func(ctx context.Context, args []string) error {
			return r.Transfer(ctx, firstArg(args))
		}},
		{"playlists", []string{"pl"}, "playlists - list your playlists", func(ctx context.Context, args []string) error {
			return r.Playlists(ctx)
		}},
		{"play-list", nil, "play-list <n> - play a listed playlist", func(ctx context.Context, args []string) error {
			return r.PlayPlaylist(ctx, firstArg(args))
		}},
		{"status", []string{"np"}, "status [--watch] - show what's playing", func(ctx context.Context, args []string) error {
			watch := len(args) > 0 && (args[0] == "--watch" || args[0] == "-w" || args[0] == "watch")
			return r.Status(ctx, watch)
		}},
		{"recent", nil, "recent - recently played on the service", func(ctx context.Context, args []string) error {
			return r.Recent(ctx, 10)
		}},
		{"history", nil, "history [limit] - locally recorded plays", func(ctx context.Context, args []string) error {
			limit := 20
			if len(args) > 0 {
				if n, err := strconv.Atoi(args[0]); err == nil {
					limit = n
				}
			}
			return r.History(ctx, limit)
		}},
		{"config", []string{"set"}, "config show|set <key> <value> - settings", func(ctx context.Context, args []string) error {
			return r.configShell(ctx, args)
		}},
		{"login", []string{"auth"}, "login - run browser authorization", func(ctx context.Context, args []string) error {
			return r.AuthLogin(ctx, nil)
		}},
		{"logout", nil, "logout - forget stored tokens", func(ctx context.Context, args []string) error {
			return r.AuthLogout(ctx, nil)
		}},
		{"help", []string{"h", "?"}, "help - list commands", nil}, // wired in buildDispatch
		{"quit", []string{"exit"}, "quit - leave the shell", func(ctx context.Context, args []string) error {
			return errQuit
		}},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (r *Runner) configShell(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0, args[0] == "show":
		return r.ConfigShow(ctx, false)
	case args[0] == "set" && len(args) >= 3:
		return r.ConfigSet(ctx, args[1], strings.Join(args[2:], " "))
	case args[0] == "set":
		return fmt.Errorf("%w: config set <key> <value>", shared.ErrMissingArgument)
	default:
		// allow `config <key> <value>` shorthand
		if len(args) >= 2 {
			return r.ConfigSet(ctx, args[0], strings.Join(args[1:], " "))
		}
		return fmt.Errorf("%w: config show|set <key> <value>", shared.ErrInvalidArgument)
	}
}

// buildDispatch constructs the static dispatch table once: canonical
// names, built-in aliases, then user aliases pointing at canonical names.
func (r *Runner) buildDispatch(bindings []binding) map[string]shellHandler {
	table := make(map[string]shellHandler)

	help := func(ctx context.Context, args []string) error {
		for _, b := range bindings {
			line := "  " + b.usage
			if len(b.aliases) > 0 {
				line += " (" + strings.Join(b.aliases, ", ") + ")"
			}
			r.writePlain("%s\n", line)
		}
		return nil
	}

	for i := range bindings {
		b := bindings[i]
		handler := b.handler
		if b.name == "help" {
			handler = help
		}
		table[b.name] = handler
		for _, alias := range b.aliases {
			table[alias] = handler
		}
	}

	// user aliases resolve against canonical names only, and cannot
	// shadow a built-in command
	names := make([]string, 0, len(r.settings.Aliases))
	for name := range r.settings.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := r.settings.Aliases[name]
		if _, taken := table[name]; taken {
			r.logger.Warn("alias shadows a built-in command, ignored", "alias", name)
			continue
		}
		if handler, ok := table[target]; ok {
			table[name] = handler
		} else {
			r.logger.Warn("alias points at unknown command", "alias", name, "target", target)
		}
	}

	return table
}

// Shell runs the interactive read-eval-print loop. One command executes to
// completion before the next is read; session references live for exactly
// this loop's lifetime.
func (r *Runner) Shell(ctx context.Context, input io.Reader) error {
	if input == nil {
		input = os.Stdin
	}

	table := r.buildDispatch(r.bindings())

	r.writePlain("%s\n", r.palette.Title("strum shell. Type 'help' for commands, 'quit' to leave."))

	scanner := bufio.NewScanner(input)
	for {
		r.writePlain("strum> ")

		if !scanner.Scan() {
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		handler, ok := table[name]
		if !ok {
			r.writePlain("%s\n", r.palette.Err(fmt.Sprintf("✗ %v: %q (try 'help')", shared.ErrUnknownCommand, name)))
			continue
		}

		// aliases may carry bound arguments, e.g. "vol50" is not
		// supported; arguments always come from the input line
		err := handler(ctx, fields[1:])
		if err == errQuit {
			break
		}
		if err != nil {
			r.writePlain("%s\n", r.palette.Err("✗ "+err.Error()))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}
