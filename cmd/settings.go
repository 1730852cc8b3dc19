package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/strumcli/strum/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigShow prints the effective settings.
func (r *Runner) ConfigShow(ctx context.Context, asJSON bool) error {
	if asJSON {
		return r.writeJSON(r.settings, true)
	}

	s := r.settings
	r.writePlain("device         %s\n", orUnset(s.Device))
	r.writePlain("compact        %t\n", s.Compact)
	r.writePlain("notifications  %t\n", s.Notifications)
	r.writePlain("auto_refresh   %ds\n", s.AutoRefresh)
	r.writePlain("logging        %t\n", s.Logging)
	r.writePlain("history        %t (limit %d)\n", s.History, s.HistoryLimit)
	r.writePlain("colors         title=%s accent=%s error=%s warning=%s muted=%s\n",
		s.Colors.Title, s.Colors.Accent, s.Colors.Error, s.Colors.Warning, s.Colors.Muted)

	if len(s.Aliases) > 0 {
		names := make([]string, 0, len(s.Aliases))
		for name := range s.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r.writePlain("alias          %s -> %s\n", name, s.Aliases[name])
		}
	}

	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

// ConfigSet updates one setting and persists the result.
//
// Keys: device, compact, notifications, auto_refresh, logging, history,
// history_limit, colors.<role>, alias.<name>.
func (r *Runner) ConfigSet(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: config set needs a key and a value", shared.ErrMissingArgument)
	}

	switch {
	case key == "device":
		r.settings.Device = value

	case key == "compact":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		r.settings.Compact = b

	case key == "notifications":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		r.settings.Notifications = b

	case key == "auto_refresh":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: auto_refresh must be a positive number of seconds", shared.ErrInvalidArgument)
		}
		r.settings.AutoRefresh = n

	case key == "logging":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		r.settings.Logging = b

	case key == "history":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		r.settings.History = b

	case key == "history_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: history_limit must be a positive number", shared.ErrInvalidArgument)
		}
		r.settings.HistoryLimit = n

	case strings.HasPrefix(key, "colors."):
		if err := r.setColor(strings.TrimPrefix(key, "colors."), value); err != nil {
			return err
		}

	case strings.HasPrefix(key, "alias."):
		name := strings.TrimPrefix(key, "alias.")
		if name == "" {
			return fmt.Errorf("%w: alias needs a name, e.g. alias.pp", shared.ErrInvalidArgument)
		}
		if r.settings.Aliases == nil {
			r.settings.Aliases = map[string]string{}
		}
		if value == "" {
			delete(r.settings.Aliases, name)
		} else {
			r.settings.Aliases[name] = value
		}

	default:
		return fmt.Errorf("%w: unknown setting %q", shared.ErrInvalidArgument, key)
	}

	if err := r.saveSettings(); err != nil {
		return err
	}

	return r.writePlain("✓ %s updated\n", key)
}

func (r *Runner) setColor(role, value string) error {
	if value == "" {
		return fmt.Errorf("%w: color value required", shared.ErrMissingArgument)
	}

	switch role {
	case "title":
		r.settings.Colors.Title = value
	case "accent":
		r.settings.Colors.Accent = value
	case "error":
		r.settings.Colors.Error = value
	case "warning":
		r.settings.Colors.Warning = value
	case "muted":
		r.settings.Colors.Muted = value
	default:
		return fmt.Errorf("%w: unknown color role %q", shared.ErrInvalidArgument, role)
	}

	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected true or false, got %q", shared.ErrInvalidArgument, value)
	}
}

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	if path == "" {
		path = "./strum.db"
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", path)
	return r.writePlain("✓ Database initialized at %s\n", path)
}
