// package formatter renders API payloads as numbered terminal listings.
//
// The numbers printed here are the same 1-based indices the session
// reference table resolves, so the renderer and the resolver must agree on
// ordering.
package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/repositories"
	"github.com/strumcli/strum/internal/session"
	"github.com/strumcli/strum/internal/shared"
	"github.com/strumcli/strum/internal/ui"
)

// Formatter renders listings according to the user's display preferences.
type Formatter struct {
	palette ui.Painter
	compact bool
}

// New creates a Formatter. A nil palette renders unstyled text.
func New(palette ui.Painter, compact bool) *Formatter {
	return &Formatter{palette: palette, compact: compact}
}

func (f *Formatter) title(s string) string {
	if f.palette == nil {
		return s
	}
	return f.palette.Title(s)
}

func (f *Formatter) muted(s string) string {
	if f.palette == nil {
		return s
	}
	return f.palette.Muted(s)
}

func (f *Formatter) accent(s string) string {
	if f.palette == nil {
		return s
	}
	return f.palette.Accent(s)
}

// Items renders a numbered session reference listing.
func (f *Formatter) Items(header string, items []session.Item) string {
	var buf bytes.Buffer

	buf.WriteString(f.title(header) + "\n")
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%2d. %s\n", i+1, item.Label))
		if !f.compact && item.Context != "" {
			buf.WriteString(fmt.Sprintf("    %s\n", f.muted(item.Context)))
		}
	}

	return buf.String()
}

// Devices renders the numbered device listing with an active marker.
func (f *Formatter) Devices(devices []api.Device) string {
	var buf bytes.Buffer

	buf.WriteString(f.title(fmt.Sprintf("Devices (%d)", len(devices))) + "\n")
	for i, d := range devices {
		marker := " "
		if d.IsActive {
			marker = "*"
		}
		buf.WriteString(fmt.Sprintf("%2d. %s %s\n", i+1, marker, d.Name))
		if !f.compact {
			buf.WriteString(fmt.Sprintf("      %s\n", f.muted(fmt.Sprintf("%s, volume %d%%", d.Type, d.VolumePercent))))
		}
	}

	return buf.String()
}

// Playlists renders the numbered playlist listing.
func (f *Formatter) Playlists(playlists []api.Playlist) string {
	var buf bytes.Buffer

	buf.WriteString(f.title(fmt.Sprintf("Playlists (%d)", len(playlists))) + "\n")
	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%2d. %s\n", i+1, p.Name))
		if !f.compact {
			detail := fmt.Sprintf("%d tracks, by %s", p.TrackCount(), p.OwnerName())
			buf.WriteString(fmt.Sprintf("    %s\n", f.muted(detail)))
		}
	}

	return buf.String()
}

// Albums renders the numbered album listing.
func (f *Formatter) Albums(albums []api.Album) string {
	var buf bytes.Buffer

	buf.WriteString(f.title(fmt.Sprintf("Albums (%d)", len(albums))) + "\n")
	for i, a := range albums {
		artist := ""
		if len(a.Artists) > 0 {
			artist = a.Artists[0].Name + " - "
		}
		buf.WriteString(fmt.Sprintf("%2d. %s%s\n", i+1, artist, a.Name))
		if !f.compact {
			detail := fmt.Sprintf("%d tracks, released %s", a.TotalTracks, a.ReleaseDate)
			buf.WriteString(fmt.Sprintf("    %s\n", f.muted(detail)))
		}
	}

	return buf.String()
}

// Status renders the current playback state. A nil state means nothing is
// playing anywhere.
func (f *Formatter) Status(state *api.PlaybackState) string {
	if state == nil || state.Item == nil {
		return "Nothing playing.\n"
	}

	var buf bytes.Buffer

	verb := "Paused"
	if state.IsPlaying {
		verb = "Playing"
	}

	track := state.Item
	buf.WriteString(fmt.Sprintf("%s %s\n", f.title(verb+":"), f.accent(track.Name)))
	buf.WriteString(fmt.Sprintf("  %s - %s\n", track.Artist(), track.Album.Name))

	progress := fmt.Sprintf("%s / %s", shared.FormatDuration(state.ProgressMS), shared.FormatDuration(track.DurationMS))
	if f.compact {
		buf.WriteString("  " + progress + "\n")
		return buf.String()
	}

	buf.WriteString(fmt.Sprintf("  %s  %s\n", progress, progressBar(state.ProgressMS, track.DurationMS, 24)))

	modes := []string{}
	if state.ShuffleState {
		modes = append(modes, "shuffle")
	}
	if state.RepeatState != "" && state.RepeatState != "off" {
		modes = append(modes, "repeat "+state.RepeatState)
	}
	device := state.Device.Name
	if len(modes) > 0 {
		device += " (" + strings.Join(modes, ", ") + ")"
	}
	buf.WriteString("  " + f.muted("on "+device) + "\n")

	return buf.String()
}

// History renders locally recorded plays, newest first.
func (f *Formatter) History(entries []repositories.HistoryEntry) string {
	if len(entries) == 0 {
		return "No playback history recorded.\n"
	}

	var buf bytes.Buffer

	buf.WriteString(f.title(fmt.Sprintf("History (%d)", len(entries))) + "\n")
	for i, e := range entries {
		buf.WriteString(fmt.Sprintf("%2d. %s - %s\n", i+1, e.Artist, e.Title))
		if !f.compact {
			buf.WriteString(fmt.Sprintf("    %s\n", f.muted(e.PlayedAt.Format("2006-01-02 15:04"))))
		}
	}

	return buf.String()
}

// progressBar renders position within duration as a fixed-width bar.
func progressBar(position, duration, width int) string {
	if duration <= 0 || width <= 0 {
		return ""
	}

	filled := position * width / duration
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
