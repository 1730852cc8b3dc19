package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/strumcli/strum/internal/shared"
)

// staticTokens is a TokenSource returning a fixed token or error.
type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return s.token, s.err
}

func testGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gateway := NewGateway(GatewayOpts{
		BaseURL: server.URL,
		Tokens:  staticTokens{token: "test-token"},
	})
	gateway.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	return gateway, server
}

func TestGateway(t *testing.T) {
	t.Run("BearerHeaderAndQuery", func(t *testing.T) {
		gateway, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if got := r.URL.Query().Get("q"); got != "daft punk" {
				t.Errorf("expected encoded query, got %q", got)
			}
			w.Write([]byte(`{"ok":true}`))
		})

		query := url.Values{}
		query.Set("q", "daft punk")

		raw, err := gateway.Get(context.Background(), "/search", query)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(raw) != `{"ok":true}` {
			t.Errorf("unexpected payload: %s", raw)
		}
	})

	t.Run("NoTokenShortCircuits", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		gateway := NewGateway(GatewayOpts{
			BaseURL: server.URL,
			Tokens:  staticTokens{err: shared.ErrAuthRequired},
		})

		_, err := gateway.Get(context.Background(), "/me/player", nil)
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
		if called {
			t.Error("no request should be sent without a token")
		}
	})

	t.Run("EmptySuccessBody", func(t *testing.T) {
		gateway, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		raw, err := gateway.Put(context.Background(), "/me/player/pause", nil, nil)
		if err != nil {
			t.Fatalf("204 should not be an error: %v", err)
		}
		if raw != nil {
			t.Errorf("expected nil payload, got %s", raw)
		}
	})

	t.Run("Classification", func(t *testing.T) {
		cases := []struct {
			name     string
			status   int
			path     string
			sentinel error
		}{
			{"unauthorized", http.StatusUnauthorized, "/me/player", shared.ErrAuthRequired},
			{"forbidden", http.StatusForbidden, "/me/player/play", shared.ErrForbidden},
			{"player 404 means no device", http.StatusNotFound, "/me/player/play", shared.ErrNoActiveDevice},
			{"plain 404", http.StatusNotFound, "/playlists/abc", shared.ErrNotFound},
			{"rate limited", http.StatusTooManyRequests, "/search", shared.ErrRateLimited},
			{"server fault", http.StatusBadGateway, "/search", shared.ErrServiceUnavailable},
			{"teapot is unexpected", http.StatusTeapot, "/search", shared.ErrAPIRequest},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				gateway, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(`{"error":{"status":` + strconv.Itoa(tc.status) + `,"message":"nope"}}`))
				})

				_, err := gateway.Get(context.Background(), tc.path, nil)
				if !errors.Is(err, tc.sentinel) {
					t.Errorf("status %d on %s: expected %v, got %v", tc.status, tc.path, tc.sentinel, err)
				}

				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected a StatusError, got %T", err)
				}
				if statusErr.Status != tc.status {
					t.Errorf("expected status %d recorded, got %d", tc.status, statusErr.Status)
				}
			})
		}
	})

	t.Run("ErrorMessageFromEnvelope", func(t *testing.T) {
		gateway, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"status":403,"message":"Premium required"}}`))
		})

		_, err := gateway.Put(context.Background(), "/me/player/play", nil, nil)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("expected a StatusError, got %T", err)
		}
		if statusErr.Message != "Premium required" {
			t.Errorf("expected the envelope message, got %q", statusErr.Message)
		}
	})

	t.Run("RateLimitPausesOnce", func(t *testing.T) {
		var slept []time.Duration
		gateway, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		gateway.sleep = func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}

		_, err := gateway.Get(context.Background(), "/search", nil)
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		if len(slept) != 1 || slept[0] != RateLimitDelay {
			t.Errorf("expected one pause of %v, got %v", RateLimitDelay, slept)
		}
	})

	t.Run("BodySerializedAsJSON", func(t *testing.T) {
		gateway, _ := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("body should be JSON: %v", err)
			}
			if body["context_uri"] != "spotify:album:abc" {
				t.Errorf("unexpected body: %v", body)
			}
			w.WriteHeader(http.StatusNoContent)
		})

		_, err := gateway.Put(context.Background(), "/me/player/play", nil, map[string]string{"context_uri": "spotify:album:abc"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
