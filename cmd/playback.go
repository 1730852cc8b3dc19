package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/session"
	"github.com/strumcli/strum/internal/shared"
	"github.com/strumcli/strum/internal/ui"
)

// withReauth runs op, and when it fails demanding authorization, runs the
// interactive flow once and retries op exactly once.
func (r *Runner) withReauth(ctx context.Context, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}

	retry, authErr := r.handleAuthError(ctx, err)
	if !retry {
		return authErr
	}

	return op()
}

// preferredDeviceID resolves the configured device preference to a device
// id, best effort. An empty result lets the service pick the active device.
func (r *Runner) preferredDeviceID(ctx context.Context) string {
	pref := r.settings.Device
	if pref == "" {
		return ""
	}

	devices, err := r.client.Devices(ctx)
	if err != nil {
		r.logger.Debug("could not resolve device preference", "error", err)
		return ""
	}

	for _, d := range devices {
		if d.ID == pref || strings.EqualFold(d.Name, pref) {
			return d.ID
		}
	}

	return ""
}

// Play resumes playback, or starts the referenced item: a numbered search
// result, or a raw spotify: URI.
func (r *Runner) Play(ctx context.Context, arg string) error {
	opts := api.PlayOptions{}
	var played *session.Item

	switch {
	case arg == "":
		// resume current context

	case isIndex(arg):
		n, _ := strconv.Atoi(arg)
		item, err := r.refs.Resolve(session.KindSearch, n)
		if err != nil {
			return err
		}
		opts.URIs = []string{item.URI}
		played = &item

	case strings.HasPrefix(arg, "spotify:track:"), strings.HasPrefix(arg, "spotify:episode:"):
		opts.URIs = []string{arg}

	case strings.HasPrefix(arg, "spotify:"):
		opts.ContextURI = arg

	default:
		return fmt.Errorf("%w: %q is neither a result number nor a spotify URI", shared.ErrInvalidArgument, arg)
	}

	opts.DeviceID = r.preferredDeviceID(ctx)

	if err := r.withReauth(ctx, func() error { return r.client.Play(ctx, opts) }); err != nil {
		if errors.Is(err, shared.ErrNoActiveDevice) {
			return fmt.Errorf("%w: run 'devices' then 'transfer <n>' to activate one", err)
		}
		return err
	}

	if played != nil {
		r.notify("Now playing: %s", played.Label)
		r.recordPlay(played.Track)
	} else if arg == "" {
		r.writePlain("▶ Resumed\n")
	} else {
		r.writePlain("▶ Playing %s\n", arg)
	}

	return nil
}

// Pause pauses playback.
func (r *Runner) Pause(ctx context.Context) error {
	if err := r.withReauth(ctx, func() error { return r.client.Pause(ctx) }); err != nil {
		return err
	}
	return r.writePlain("⏸ Paused\n")
}

// Next skips to the next track.
func (r *Runner) Next(ctx context.Context) error {
	if err := r.withReauth(ctx, func() error { return r.client.Next(ctx) }); err != nil {
		return err
	}
	return r.writePlain("⏭ Skipped\n")
}

// Previous skips back.
func (r *Runner) Previous(ctx context.Context) error {
	if err := r.withReauth(ctx, func() error { return r.client.Previous(ctx) }); err != nil {
		return err
	}
	return r.writePlain("⏮ Back\n")
}

// Seek moves the playhead by a signed number of seconds relative to the
// current position.
func (r *Runner) Seek(ctx context.Context, deltaSecs int) error {
	var state *api.PlaybackState

	err := r.withReauth(ctx, func() error {
		var err error
		state, err = r.client.PlaybackState(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if state == nil || state.Item == nil {
		return fmt.Errorf("%w: nothing is playing to seek within", shared.ErrNoActiveDevice)
	}

	target := state.ProgressMS + deltaSecs*1000
	if target < 0 {
		target = 0
	}
	if target > state.Item.DurationMS {
		target = state.Item.DurationMS
	}

	if err := r.withReauth(ctx, func() error { return r.client.Seek(ctx, target) }); err != nil {
		return err
	}

	return r.writePlain("⏩ %s\n", shared.FormatDuration(target))
}

// Volume sets the active device volume.
func (r *Runner) Volume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100", shared.ErrInvalidArgument)
	}

	if err := r.withReauth(ctx, func() error { return r.client.Volume(ctx, percent) }); err != nil {
		return err
	}

	return r.writePlain("🔊 Volume %d%%\n", percent)
}

// Shuffle sets shuffle to on, off, or toggles the current state.
func (r *Runner) Shuffle(ctx context.Context, mode string) error {
	var on bool

	switch mode {
	case "on":
		on = true
	case "off":
		on = false
	case "toggle", "":
		var state *api.PlaybackState
		err := r.withReauth(ctx, func() error {
			var err error
			state, err = r.client.PlaybackState(ctx)
			return err
		})
		if err != nil {
			return err
		}
		if state == nil {
			return fmt.Errorf("%w: cannot toggle shuffle with no active playback", shared.ErrNoActiveDevice)
		}
		on = !state.ShuffleState
	default:
		return fmt.Errorf("%w: shuffle takes on, off, or toggle", shared.ErrInvalidArgument)
	}

	if err := r.withReauth(ctx, func() error { return r.client.Shuffle(ctx, on) }); err != nil {
		return err
	}

	if on {
		return r.writePlain("🔀 Shuffle on\n")
	}
	return r.writePlain("🔀 Shuffle off\n")
}

// Repeat sets the repeat mode.
func (r *Runner) Repeat(ctx context.Context, mode string) error {
	switch mode {
	case "track", "context", "off":
	default:
		return fmt.Errorf("%w: repeat takes track, context, or off", shared.ErrInvalidArgument)
	}

	if err := r.withReauth(ctx, func() error { return r.client.Repeat(ctx, mode) }); err != nil {
		return err
	}

	return r.writePlain("🔁 Repeat %s\n", mode)
}

// Queue appends a numbered search result or raw URI to the playback queue.
func (r *Runner) Queue(ctx context.Context, arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: queue needs a result number or spotify URI", shared.ErrMissingArgument)
	}

	uri := arg
	label := arg

	if isIndex(arg) {
		n, _ := strconv.Atoi(arg)
		item, err := r.refs.Resolve(session.KindSearch, n)
		if err != nil {
			return err
		}
		uri = item.URI
		label = item.Label
	} else if !strings.HasPrefix(arg, "spotify:") {
		return fmt.Errorf("%w: %q is neither a result number nor a spotify URI", shared.ErrInvalidArgument, arg)
	}

	if err := r.withReauth(ctx, func() error { return r.client.Queue(ctx, uri) }); err != nil {
		if errors.Is(err, shared.ErrNoActiveDevice) {
			return fmt.Errorf("%w: run 'devices' then 'transfer <n>' to activate one", err)
		}
		return err
	}

	return r.writePlain("➕ Queued %s\n", label)
}

// Transfer moves playback to a numbered device reference or a raw device id.
func (r *Runner) Transfer(ctx context.Context, arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: transfer needs a device number or id", shared.ErrMissingArgument)
	}

	deviceID := arg
	label := arg

	if isIndex(arg) {
		n, _ := strconv.Atoi(arg)
		item, err := r.refs.Resolve(session.KindDevices, n)
		if err != nil {
			return err
		}
		deviceID = item.ID
		label = item.Label
	}

	if err := r.withReauth(ctx, func() error { return r.client.Transfer(ctx, deviceID, true) }); err != nil {
		return err
	}

	return r.writePlain("✓ Playback transferred to %s\n", label)
}

// Status prints the current playback state, or runs the auto-refreshing
// watch view when watch is set.
func (r *Runner) Status(ctx context.Context, watch bool) error {
	if watch {
		return r.watchStatus(ctx)
	}

	var state *api.PlaybackState
	err := r.withReauth(ctx, func() error {
		var err error
		state, err = r.client.PlaybackState(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return r.writePlain("%s", r.format.Status(state))
}

// watchStatus runs the bubbletea watch loop until any keypress.
func (r *Runner) watchStatus(ctx context.Context) error {
	fetch := func(ctx context.Context) (*api.PlaybackState, error) {
		return r.client.PlaybackState(ctx)
	}

	interval := time.Duration(r.settings.AutoRefresh) * time.Second
	model := ui.NewWatchModel(fetch, r.format.Status, interval, r.palette)

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("watch view failed: %w", err)
	}

	return nil
}

// isIndex reports whether the argument is a small positive integer, i.e. a
// session reference rather than an identifier.
func isIndex(arg string) bool {
	n, err := strconv.Atoi(arg)
	return err == nil && n > 0 && n <= 1000
}
