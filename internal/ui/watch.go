package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/strumcli/strum/internal/api"
)

// StatusFetcher retrieves the current playback state.
type StatusFetcher func(ctx context.Context) (*api.PlaybackState, error)

// StatusRenderer renders a playback state as terminal text.
type StatusRenderer func(state *api.PlaybackState) string

type tickMsg time.Time

type stateMsg struct {
	state *api.PlaybackState
	err   error
}

// WatchModel is the auto-refreshing now-playing view. It re-fetches on a
// timer and exits on any keypress.
type WatchModel struct {
	fetch    StatusFetcher
	render   StatusRenderer
	interval time.Duration
	spin     spinner.Model
	state    *api.PlaybackState
	err      error
	loaded   bool
	palette  *Palette
}

// NewWatchModel creates a watch view refreshing at the given interval.
func NewWatchModel(fetch StatusFetcher, render StatusRenderer, interval time.Duration, palette *Palette) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	if interval <= 0 {
		interval = 5 * time.Second
	}

	return WatchModel{
		fetch:    fetch,
		render:   render,
		interval: interval,
		spin:     s,
		palette:  palette,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.fetchCmd(), m.tickCmd())
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Any keypress terminates the loop and returns to the prompt.
		return m, tea.Quit

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case stateMsg:
		m.loaded = true
		m.state = msg.state
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m WatchModel) View() string {
	if !m.loaded {
		return m.spin.View() + " fetching playback state...\n"
	}

	if m.err != nil {
		return m.palette.Err("✗ "+m.err.Error()) + "\n\n" + m.palette.Muted("press any key to exit") + "\n"
	}

	return m.render(m.state) + "\n" + m.palette.Muted("press any key to exit") + "\n"
}

func (m WatchModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.fetch(context.Background())
		return stateMsg{state: state, err: err}
	}
}

func (m WatchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
