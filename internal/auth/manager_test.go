package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/strumcli/strum/internal/shared"
)

func testStore(t *testing.T, bundle *Bundle) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if bundle != nil {
		if err := store.Save(bundle); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
	return store
}

func TestManager(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return base }

	t.Run("NoStoredToken", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer server.Close()

		manager := NewManager(ManagerOpts{
			Store:    testStore(t, nil),
			TokenURL: server.URL,
			Now:      clock,
		})

		_, err := manager.AccessToken(context.Background())
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
		if calls != 0 {
			t.Errorf("no network call should be made without a stored token, got %d", calls)
		}
	})

	t.Run("FreshToken", func(t *testing.T) {
		bundle := &Bundle{
			AccessToken: "fresh-token",
			ExpiresIn:   3600,
			ObtainedAt:  base.Unix(),
			Scopes:      ScopeString(),
		}

		manager := NewManager(ManagerOpts{Store: testStore(t, bundle), Now: clock})

		token, err := manager.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "fresh-token" {
			t.Errorf("expected the stored token, got %q", token)
		}
	})

	t.Run("InsufficientScopesBeatsFreshness", func(t *testing.T) {
		bundle := &Bundle{
			AccessToken:  "fresh-but-narrow",
			ExpiresIn:    3600,
			ObtainedAt:   base.Unix(),
			RefreshToken: "refresh",
			Scopes:       "user-read-playback-state",
		}

		manager := NewManager(ManagerOpts{Store: testStore(t, bundle), Now: clock})

		_, err := manager.AccessToken(context.Background())
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("narrow scopes should demand reauthorization even when fresh, got %v", err)
		}
	})

	t.Run("StaleWithoutRefreshToken", func(t *testing.T) {
		bundle := &Bundle{
			AccessToken: "stale",
			ExpiresIn:   3600,
			ObtainedAt:  base.Add(-2 * time.Hour).Unix(),
			Scopes:      ScopeString(),
		}

		manager := NewManager(ManagerOpts{Store: testStore(t, bundle), Now: clock})

		_, err := manager.AccessToken(context.Background())
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
	})

	t.Run("RefreshSuccess", func(t *testing.T) {
		var posts int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			posts++

			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client-id" || pass != "client-secret" {
				t.Errorf("expected basic auth with client credentials, got %q/%q", user, pass)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatal(err)
			}
			if r.PostForm.Get("grant_type") != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", r.PostForm.Get("grant_type"))
			}
			if r.PostForm.Get("refresh_token") != "old-refresh" {
				t.Errorf("expected stored refresh token, got %q", r.PostForm.Get("refresh_token"))
			}

			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "new-access",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))
		defer server.Close()

		store := testStore(t, &Bundle{
			AccessToken:  "stale",
			ExpiresIn:    3600,
			ObtainedAt:   base.Add(-2 * time.Hour).Unix(),
			RefreshToken: "old-refresh",
			Scopes:       ScopeString(),
		})

		manager := NewManager(ManagerOpts{
			Store:        store,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     server.URL,
			Now:          clock,
		})

		token, err := manager.AccessToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "new-access" {
			t.Errorf("expected the refreshed token, got %q", token)
		}
		if posts != 1 {
			t.Errorf("expected exactly one refresh call, got %d", posts)
		}

		saved, err := store.Load()
		if err != nil {
			t.Fatal(err)
		}
		if saved.AccessToken != "new-access" {
			t.Errorf("refreshed token not persisted: %+v", saved)
		}
		if saved.ObtainedAt != base.Unix() {
			t.Errorf("obtained_at should be restamped to now, got %d", saved.ObtainedAt)
		}
		if saved.RefreshToken != "old-refresh" {
			t.Errorf("refresh token should survive when the endpoint omits a new one, got %q", saved.RefreshToken)
		}
	})

	t.Run("RefreshRotatesRefreshToken", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "new-access",
				"expires_in":    3600,
				"refresh_token": "rotated",
			})
		}))
		defer server.Close()

		store := testStore(t, &Bundle{
			AccessToken:  "stale",
			ExpiresIn:    3600,
			ObtainedAt:   base.Add(-2 * time.Hour).Unix(),
			RefreshToken: "old-refresh",
			Scopes:       ScopeString(),
		})

		manager := NewManager(ManagerOpts{Store: store, TokenURL: server.URL, Now: clock})

		if _, err := manager.AccessToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved, _ := store.Load()
		if saved.RefreshToken != "rotated" {
			t.Errorf("expected rotated refresh token, got %q", saved.RefreshToken)
		}
	})

	t.Run("RefreshFailure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer server.Close()

		store := testStore(t, &Bundle{
			AccessToken:  "stale",
			ExpiresIn:    3600,
			ObtainedAt:   base.Add(-2 * time.Hour).Unix(),
			RefreshToken: "revoked",
			Scopes:       ScopeString(),
		})

		manager := NewManager(ManagerOpts{Store: store, TokenURL: server.URL, Now: clock})

		_, err := manager.AccessToken(context.Background())
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("refresh failure should resolve to ErrAuthRequired, got %v", err)
		}

		// the stored bundle must be untouched by a failed refresh
		saved, _ := store.Load()
		if saved.AccessToken != "stale" || saved.RefreshToken != "revoked" {
			t.Errorf("failed refresh must not mutate the stored bundle: %+v", saved)
		}
	})
}
