package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/session"
	"github.com/strumcli/strum/internal/shared"
)

// Search queries tracks and episodes, stores the numbered results in the
// search slot, and prints them.
func (r *Runner) Search(ctx context.Context, query string) error {
	if query == "" {
		return fmt.Errorf("%w: search needs a query", shared.ErrMissingArgument)
	}

	var result *api.SearchResult
	err := r.withReauth(ctx, func() error {
		var err error
		result, err = r.client.Search(ctx, query, []string{"track", "episode"}, session.SlotCap)
		return err
	})
	if err != nil {
		return err
	}

	items := searchItems(result)
	if len(items) == 0 {
		return r.writePlain("No results for %q.\n", query)
	}

	r.refs.Set(session.KindSearch, items)

	r.writePlain("%s", r.format.Items(fmt.Sprintf("Results for %q", query), items))
	return r.writePlain("\nUse 'play <n>' or 'queue <n>'.\n")
}

// searchItems flattens a search result into the ordered reference list:
// tracks first, then episodes, capped by the slot size.
func searchItems(result *api.SearchResult) []session.Item {
	items := []session.Item{}
	if result == nil {
		return items
	}

	if result.Tracks != nil {
		for i := range result.Tracks.Items {
			track := result.Tracks.Items[i]
			items = append(items, session.Item{
				ID:      track.ID,
				URI:     track.URI,
				Label:   fmt.Sprintf("%s - %s", track.Artist(), track.Name),
				Context: fmt.Sprintf("%s [%s]", track.Album.Name, shared.FormatDuration(track.DurationMS)),
				Track:   &track,
			})
			if len(items) == session.SlotCap {
				return items
			}
		}
	}

	if result.Episodes != nil {
		for _, episode := range result.Episodes.Items {
			items = append(items, session.Item{
				ID:      episode.ID,
				URI:     episode.URI,
				Label:   episode.Name,
				Context: fmt.Sprintf("%s [%s]", episode.Show.Name, shared.FormatDuration(episode.DurationMS)),
			})
			if len(items) == session.SlotCap {
				return items
			}
		}
	}

	return items
}

// Albums searches albums, filling the album slot.
func (r *Runner) Albums(ctx context.Context, query string) error {
	if query == "" {
		return fmt.Errorf("%w: albums needs a query", shared.ErrMissingArgument)
	}

	var result *api.SearchResult
	err := r.withReauth(ctx, func() error {
		var err error
		result, err = r.client.Search(ctx, query, []string{"album"}, session.SlotCap)
		return err
	})
	if err != nil {
		return err
	}

	if result == nil || result.Albums == nil || len(result.Albums.Items) == 0 {
		return r.writePlain("No albums found for %q.\n", query)
	}

	albums := result.Albums.Items
	items := make([]session.Item, 0, len(albums))
	for _, album := range albums {
		artist := ""
		if len(album.Artists) > 0 {
			artist = album.Artists[0].Name
		}
		items = append(items, session.Item{
			ID:      album.ID,
			URI:     album.URI,
			Label:   fmt.Sprintf("%s - %s", artist, album.Name),
			Context: fmt.Sprintf("%d tracks, released %s", album.TotalTracks, album.ReleaseDate),
		})
	}
	r.refs.Set(session.KindAlbums, items)

	r.writePlain("%s", r.format.Albums(albums))
	return r.writePlain("\nUse 'play spotify:album:<id>' or 'play <uri>' to start one.\n")
}

// Saved lists the user's saved tracks, filling the search slot so the
// numbers feed play and queue like search results do.
func (r *Runner) Saved(ctx context.Context, limit int) error {
	if limit <= 0 || limit > session.SlotCap {
		limit = session.SlotCap
	}

	var page *api.TrackPage
	err := r.withReauth(ctx, func() error {
		var err error
		page, err = r.client.SavedTracks(ctx, limit, 0)
		return err
	})
	if err != nil {
		return err
	}

	if page == nil || len(page.Items) == 0 {
		return r.writePlain("No saved tracks in your library.\n")
	}

	items := make([]session.Item, 0, len(page.Items))
	for i := range page.Items {
		track := page.Items[i]
		items = append(items, session.Item{
			ID:      track.ID,
			URI:     track.URI,
			Label:   fmt.Sprintf("%s - %s", track.Artist(), track.Name),
			Context: fmt.Sprintf("%s [%s]", track.Album.Name, shared.FormatDuration(track.DurationMS)),
			Track:   &track,
		})
	}
	r.refs.Set(session.KindSearch, items)

	r.writePlain("%s", r.format.Items("Saved tracks", items))
	return r.writePlain("\nUse 'play <n>' or 'queue <n>'.\n")
}

// Devices lists playback devices, filling the device slot.
func (r *Runner) Devices(ctx context.Context) error {
	var devices []api.Device
	err := r.withReauth(ctx, func() error {
		var err error
		devices, err = r.client.Devices(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		return r.writePlain("No devices available. Open a Spotify client somewhere first.\n")
	}

	items := make([]session.Item, 0, len(devices))
	for _, d := range devices {
		items = append(items, session.Item{
			ID:      d.ID,
			Label:   d.Name,
			Context: d.Type,
		})
	}
	r.refs.Set(session.KindDevices, items)

	r.writePlain("%s", r.format.Devices(devices))
	return r.writePlain("\nUse 'transfer <n>' to move playback.\n")
}

// Playlists lists the user's playlists, filling the playlist slot.
func (r *Runner) Playlists(ctx context.Context) error {
	var page *api.PlaylistPage
	err := r.withReauth(ctx, func() error {
		var err error
		page, err = r.client.Playlists(ctx, session.SlotCap, 0)
		return err
	})
	if err != nil {
		return err
	}

	if page == nil || len(page.Items) == 0 {
		return r.writePlain("No playlists found.\n")
	}

	items := make([]session.Item, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, session.Item{
			ID:      p.ID,
			URI:     p.URI,
			Label:   p.Name,
			Context: fmt.Sprintf("%d tracks, by %s", p.TrackCount(), p.OwnerName()),
		})
	}
	r.refs.Set(session.KindPlaylists, items)

	r.writePlain("%s", r.format.Playlists(page.Items))
	return r.writePlain("\nUse 'play-list <n>' to start one.\n")
}

// PlayPlaylist starts playback of a numbered playlist reference.
func (r *Runner) PlayPlaylist(ctx context.Context, arg string) error {
	if !isIndex(arg) {
		return fmt.Errorf("%w: play-list needs a playlist number from 'playlists'", shared.ErrInvalidArgument)
	}

	n, _ := strconv.Atoi(arg)
	item, err := r.refs.Resolve(session.KindPlaylists, n)
	if err != nil {
		return err
	}

	opts := api.PlayOptions{ContextURI: item.URI, DeviceID: r.preferredDeviceID(ctx)}
	if err := r.withReauth(ctx, func() error { return r.client.Play(ctx, opts) }); err != nil {
		return err
	}

	r.notify("Now playing playlist: %s", item.Label)
	return nil
}

// History prints locally recorded plays.
func (r *Runner) History(ctx context.Context, limit int) error {
	if r.history == nil {
		if r.settings.History {
			// the database is only opened at startup
			return r.writePlain("History was enabled but the database is not open yet. Restart strum to start recording.\n")
		}
		return r.writePlain("History is disabled. Enable it with 'config set history true' and restart.\n")
	}

	entries, err := r.history.Recent(limit)
	if err != nil {
		return err
	}

	return r.writePlain("%s", r.format.History(entries))
}

// Recent prints the service-side recently played listing.
func (r *Runner) Recent(ctx context.Context, limit int) error {
	var page *api.RecentlyPlayedPage
	err := r.withReauth(ctx, func() error {
		var err error
		page, err = r.client.RecentlyPlayed(ctx, limit)
		return err
	})
	if err != nil {
		return err
	}

	if page == nil || len(page.Items) == 0 {
		return r.writePlain("Nothing played recently.\n")
	}

	r.writePlain("Recently played:\n")
	for i, item := range page.Items {
		r.writePlain("%2d. %s - %s\n", i+1, item.Track.Artist(), item.Track.Name)
	}

	return nil
}
