package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Client provides typed playback, search, and library operations on top of
// the [Gateway].
type Client struct {
	gateway *Gateway
}

// NewClient creates a Client around the given gateway.
func NewClient(gateway *Gateway) *Client {
	return &Client{gateway: gateway}
}

// decode unmarshals a raw gateway payload into result, tolerating empty
// payloads from acknowledgement-only endpoints.
func decode(raw json.RawMessage, result any) error {
	if raw == nil || result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Devices lists the user's available playback devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	raw, err := c.gateway.Get(ctx, "/me/player/devices", nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Devices []Device `json:"devices"`
	}
	if err := decode(raw, &response); err != nil {
		return nil, err
	}

	return response.Devices, nil
}

// PlaybackState retrieves the current player state. A 204 (nothing
// playing, no active device) yields (nil, nil).
func (c *Client) PlaybackState(ctx context.Context) (*PlaybackState, error) {
	raw, err := c.gateway.Get(ctx, "/me/player", nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var state PlaybackState
	if err := decode(raw, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// PlayOptions selects what and where to play. Zero value resumes the
// current context on the active device.
type PlayOptions struct {
	DeviceID   string
	URIs       []string
	ContextURI string
	PositionMS int
}

// Play starts or resumes playback.
func (c *Client) Play(ctx context.Context, opts PlayOptions) error {
	query := url.Values{}
	if opts.DeviceID != "" {
		query.Set("device_id", opts.DeviceID)
	}

	var body any
	payload := map[string]any{}
	if len(opts.URIs) > 0 {
		payload["uris"] = opts.URIs
	}
	if opts.ContextURI != "" {
		payload["context_uri"] = opts.ContextURI
	}
	if opts.PositionMS > 0 {
		payload["position_ms"] = opts.PositionMS
	}
	if len(payload) > 0 {
		body = payload
	}

	_, err := c.gateway.Put(ctx, "/me/player/play", query, body)
	return err
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context) error {
	_, err := c.gateway.Put(ctx, "/me/player/pause", nil, nil)
	return err
}

// Next skips to the next item in the playback context.
func (c *Client) Next(ctx context.Context) error {
	_, err := c.gateway.Post(ctx, "/me/player/next", nil, nil)
	return err
}

// Previous skips back to the previous item.
func (c *Client) Previous(ctx context.Context) error {
	_, err := c.gateway.Post(ctx, "/me/player/previous", nil, nil)
	return err
}

// Seek moves the playhead to the absolute position in milliseconds.
func (c *Client) Seek(ctx context.Context, positionMS int) error {
	if positionMS < 0 {
		positionMS = 0
	}
	query := url.Values{"position_ms": {strconv.Itoa(positionMS)}}
	_, err := c.gateway.Put(ctx, "/me/player/seek", query, nil)
	return err
}

// Volume sets the active device's volume percentage (0-100).
func (c *Client) Volume(ctx context.Context, percent int) error {
	query := url.Values{"volume_percent": {strconv.Itoa(percent)}}
	_, err := c.gateway.Put(ctx, "/me/player/volume", query, nil)
	return err
}

// Shuffle toggles shuffle state for the active device.
func (c *Client) Shuffle(ctx context.Context, on bool) error {
	query := url.Values{"state": {strconv.FormatBool(on)}}
	_, err := c.gateway.Put(ctx, "/me/player/shuffle", query, nil)
	return err
}

// Repeat sets the repeat mode: "track", "context", or "off".
func (c *Client) Repeat(ctx context.Context, mode string) error {
	query := url.Values{"state": {mode}}
	_, err := c.gateway.Put(ctx, "/me/player/repeat", query, nil)
	return err
}

// Queue appends a track or episode URI to the playback queue.
func (c *Client) Queue(ctx context.Context, uri string) error {
	query := url.Values{"uri": {uri}}
	_, err := c.gateway.Post(ctx, "/me/player/queue", query, nil)
	return err
}

// Transfer moves playback to another device, optionally starting playback
// there immediately.
func (c *Client) Transfer(ctx context.Context, deviceID string, play bool) error {
	body := map[string]any{
		"device_ids": []string{deviceID},
		"play":       play,
	}
	_, err := c.gateway.Put(ctx, "/me/player", nil, body)
	return err
}

// Search queries the catalog for the given types ("track", "episode",
// "album"). Limit is clamped to the 1-50 range the API accepts.
func (c *Client) Search(ctx context.Context, q string, types []string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	query := url.Values{
		"q":     {q},
		"type":  {strings.Join(types, ",")},
		"limit": {strconv.Itoa(limit)},
	}

	raw, err := c.gateway.Get(ctx, "/search", query)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := decode(raw, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Playlists retrieves one page of the current user's playlists.
func (c *Client) Playlists(ctx context.Context, limit, offset int) (*PlaylistPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	raw, err := c.gateway.Get(ctx, "/me/playlists", query)
	if err != nil {
		return nil, err
	}

	var page PlaylistPage
	if err := decode(raw, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) (*RecentlyPlayedPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}

	raw, err := c.gateway.Get(ctx, "/me/player/recently-played", query)
	if err != nil {
		return nil, err
	}

	var page RecentlyPlayedPage
	if err := decode(raw, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// SavedTracks retrieves one page of the user's saved tracks.
func (c *Client) SavedTracks(ctx context.Context, limit, offset int) (*TrackPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	raw, err := c.gateway.Get(ctx, "/me/tracks", query)
	if err != nil {
		return nil, err
	}

	// Saved tracks nest the track object one level down.
	var response struct {
		Items []struct {
			Track Track `json:"track"`
		} `json:"items"`
		Total  int     `json:"total"`
		Limit  int     `json:"limit"`
		Offset int     `json:"offset"`
		Next   *string `json:"next"`
	}
	if err := decode(raw, &response); err != nil {
		return nil, err
	}

	page := TrackPage{Total: response.Total, Limit: response.Limit, Offset: response.Offset, Next: response.Next}
	for _, item := range response.Items {
		page.Items = append(page.Items, item.Track)
	}

	return &page, nil
}
