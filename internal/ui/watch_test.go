package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/shared"
)

func testWatchModel(fetch StatusFetcher) WatchModel {
	render := func(state *api.PlaybackState) string {
		if state == nil {
			return "Nothing playing."
		}
		return "Now: " + state.Item.Name
	}
	return NewWatchModel(fetch, render, time.Second, NewPalette(shared.DefaultSettings().Colors))
}

func TestWatchModel(t *testing.T) {
	playing := &api.PlaybackState{Item: &api.Track{Name: "Harder"}}
	fetch := func(ctx context.Context) (*api.PlaybackState, error) { return playing, nil }

	t.Run("LoadingView", func(t *testing.T) {
		model := testWatchModel(fetch)
		if !strings.Contains(model.View(), "fetching playback state") {
			t.Errorf("unexpected initial view: %q", model.View())
		}
	})

	t.Run("StateArrives", func(t *testing.T) {
		model := testWatchModel(fetch)

		updated, _ := model.Update(stateMsg{state: playing})
		view := updated.View()

		if !strings.Contains(view, "Now: Harder") {
			t.Errorf("state not rendered: %q", view)
		}
		if !strings.Contains(view, "press any key to exit") {
			t.Errorf("exit hint missing: %q", view)
		}
	})

	t.Run("FetchError", func(t *testing.T) {
		model := testWatchModel(fetch)

		updated, _ := model.Update(stateMsg{err: errors.New("boom")})
		if !strings.Contains(updated.View(), "boom") {
			t.Errorf("error not rendered: %q", updated.View())
		}
	})

	t.Run("AnyKeyQuits", func(t *testing.T) {
		model := testWatchModel(fetch)

		_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected a quit message, got %T", cmd())
		}
	})

	t.Run("TickSchedulesMore", func(t *testing.T) {
		model := testWatchModel(fetch)

		_, cmd := model.Update(tickMsg(time.Now()))
		if cmd == nil {
			t.Fatal("expected a refetch and the next tick to be scheduled")
		}
	})
}
