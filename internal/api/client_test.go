package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordedRequest captures the parts of a request the client tests assert on.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
}

func recordingClient(t *testing.T, status int, response string) (*Client, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
		for key := range r.URL.Query() {
			rec.Query[key] = r.URL.Query().Get(key)
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		requests = append(requests, rec)

		w.WriteHeader(status)
		if response != "" {
			w.Write([]byte(response))
		}
	}))
	t.Cleanup(server.Close)

	gateway := NewGateway(GatewayOpts{
		BaseURL: server.URL,
		Tokens:  staticTokens{token: "test-token"},
	})

	return NewClient(gateway), &requests
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("PlayWithURIs", func(t *testing.T) {
		client, requests := recordingClient(t, http.StatusNoContent, "")

		opts := PlayOptions{URIs: []string{"spotify:track:abc"}, DeviceID: "dev1"}
		if err := client.Play(ctx, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(*requests) != 1 {
			t.Fatalf("expected one request, got %d", len(*requests))
		}
		req := (*requests)[0]
		if req.Method != http.MethodPut || req.Path != "/me/player/play" {
			t.Errorf("unexpected request: %s %s", req.Method, req.Path)
		}
		if req.Query["device_id"] != "dev1" {
			t.Errorf("expected device_id in query, got %v", req.Query)
		}
		uris, ok := req.Body["uris"].([]any)
		if !ok || len(uris) != 1 || uris[0] != "spotify:track:abc" {
			t.Errorf("unexpected body: %v", req.Body)
		}
	})

	t.Run("ResumeSendsNoBody", func(t *testing.T) {
		client, requests := recordingClient(t, http.StatusNoContent, "")

		if err := client.Play(ctx, PlayOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if body := (*requests)[0].Body; body != nil {
			t.Errorf("resume should send an empty body, got %v", body)
		}
	})

	t.Run("PlaybackStateNothingPlaying", func(t *testing.T) {
		client, _ := recordingClient(t, http.StatusNoContent, "")

		state, err := client.PlaybackState(ctx)
		if err != nil {
			t.Fatalf("204 should not be an error: %v", err)
		}
		if state != nil {
			t.Errorf("expected nil state, got %+v", state)
		}
	})

	t.Run("PlaybackState", func(t *testing.T) {
		payload := `{
			"device": {"id": "dev1", "name": "Kitchen", "is_active": true, "volume_percent": 60},
			"shuffle_state": true,
			"repeat_state": "context",
			"progress_ms": 30000,
			"is_playing": true,
			"item": {
				"id": "t1", "uri": "spotify:track:t1", "name": "Harder",
				"duration_ms": 224000,
				"artists": [{"name": "Daft Punk"}],
				"album": {"name": "Discovery"}
			}
		}`
		client, _ := recordingClient(t, http.StatusOK, payload)

		state, err := client.PlaybackState(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state == nil || state.Item == nil {
			t.Fatal("expected a populated state")
		}
		if !state.IsPlaying || state.Item.Artist() != "Daft Punk" {
			t.Errorf("unexpected state: %+v", state)
		}
		if state.Device.Name != "Kitchen" {
			t.Errorf("expected device decoded, got %+v", state.Device)
		}
	})

	t.Run("SearchClampsLimit", func(t *testing.T) {
		client, requests := recordingClient(t, http.StatusOK, `{"tracks":{"items":[]}}`)

		if _, err := client.Search(ctx, "query", []string{"track", "episode"}, 500); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := (*requests)[0]
		if req.Query["limit"] != "50" {
			t.Errorf("limit should clamp to 50, got %q", req.Query["limit"])
		}
		if req.Query["type"] != "track,episode" {
			t.Errorf("types should join with commas, got %q", req.Query["type"])
		}
	})

	t.Run("Transfer", func(t *testing.T) {
		client, requests := recordingClient(t, http.StatusNoContent, "")

		if err := client.Transfer(ctx, "dev2", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := (*requests)[0]
		if req.Method != http.MethodPut || req.Path != "/me/player" {
			t.Errorf("unexpected request: %s %s", req.Method, req.Path)
		}
		ids, ok := req.Body["device_ids"].([]any)
		if !ok || len(ids) != 1 || ids[0] != "dev2" {
			t.Errorf("unexpected body: %v", req.Body)
		}
		if req.Body["play"] != true {
			t.Errorf("expected play true, got %v", req.Body["play"])
		}
	})

	t.Run("SeekClampsNegative", func(t *testing.T) {
		client, requests := recordingClient(t, http.StatusNoContent, "")

		if err := client.Seek(ctx, -500); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := (*requests)[0].Query["position_ms"]; got != "0" {
			t.Errorf("negative position should clamp to 0, got %q", got)
		}
	})

	t.Run("SavedTracksFlattensNesting", func(t *testing.T) {
		payload := `{
			"items": [
				{"track": {"id": "t1", "name": "One", "artists": [{"name": "A"}]}},
				{"track": {"id": "t2", "name": "Two", "artists": [{"name": "B"}]}}
			],
			"total": 2, "limit": 20, "offset": 0
		}`
		client, _ := recordingClient(t, http.StatusOK, payload)

		page, err := client.SavedTracks(ctx, 20, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Items) != 2 || page.Items[1].Name != "Two" {
			t.Errorf("nested tracks not flattened: %+v", page.Items)
		}
	})

	t.Run("DevicesUnwrapsEnvelope", func(t *testing.T) {
		payload := `{"devices": [{"id": "d1", "name": "Laptop", "type": "Computer"}]}`
		client, _ := recordingClient(t, http.StatusOK, payload)

		devices, err := client.Devices(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(devices) != 1 || devices[0].Name != "Laptop" {
			t.Errorf("unexpected devices: %+v", devices)
		}
	})
}
