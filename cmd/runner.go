package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/auth"
	"github.com/strumcli/strum/internal/formatter"
	"github.com/strumcli/strum/internal/repositories"
	"github.com/strumcli/strum/internal/session"
	"github.com/strumcli/strum/internal/shared"
	"github.com/strumcli/strum/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action. The session reference table is owned here and
// injected into every handler that needs it.
type Runner struct {
	config       *shared.Config
	settings     shared.Settings
	settingsPath string
	tokens       *auth.Manager
	client       *api.Client
	refs         *session.Table
	history      *repositories.HistoryRepository
	db           *sql.DB
	logger       *log.Logger
	output       io.Writer
	palette      *ui.Palette
	format       *formatter.Formatter
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config       *shared.Config
	Settings     *shared.Settings
	SettingsPath string
	Tokens       *auth.Manager
	Client       *api.Client
	History      *repositories.HistoryRepository
	DB           *sql.DB
	Logger       *log.Logger
	Output       io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Settings == nil {
		defaults := shared.DefaultSettings()
		opts.Settings = &defaults
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:       opts.Config,
		settings:     *opts.Settings,
		settingsPath: opts.SettingsPath,
		tokens:       opts.Tokens,
		client:       opts.Client,
		refs:         session.NewTable(),
		history:      opts.History,
		db:           opts.DB,
		logger:       opts.Logger,
		output:       opts.Output,
	}

	r.applySettings()

	return r
}

// applySettings rebuilds the palette, formatter, and log level from the
// current settings. Called after every settings change.
func (r *Runner) applySettings() {
	r.palette = ui.NewPalette(r.settings.Colors)
	r.format = formatter.New(r.palette, r.settings.Compact)

	if r.settings.Logging {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, log.WarnLevel)
	}
}

// saveSettings persists the current settings and reapplies them.
func (r *Runner) saveSettings() error {
	if r.settingsPath == "" {
		path, err := shared.SettingsPath()
		if err != nil {
			return err
		}
		r.settingsPath = path
	}

	if err := shared.SaveSettings(r.settingsPath, r.settings); err != nil {
		return err
	}

	r.applySettings()

	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		shellCommand, authCommand, playbackCommands, listingCommands, configCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return flatten(commands)
}

// flatten expands grouped command builders that return multi-command
// containers into the top-level command list.
func flatten(commands []*cli.Command) []*cli.Command {
	out := []*cli.Command{}
	for _, c := range commands {
		if c.Name == "" {
			out = append(out, c.Commands...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// notify prints a short now-playing style notice when notifications are
// enabled in settings.
func (r *Runner) notify(format string, args ...any) {
	if !r.settings.Notifications {
		return
	}
	r.writePlain("♪ "+format+"\n", args...)
}

// recordPlay appends a play to local history when the history setting is
// enabled. Failures are warnings, never command failures.
func (r *Runner) recordPlay(track *api.Track) {
	if track == nil || !r.settings.History || r.history == nil {
		return
	}

	if err := r.history.Record(*track, r.settings.HistoryLimit); err != nil {
		r.logger.Warn("failed to record play history", "error", err)
	}
}
