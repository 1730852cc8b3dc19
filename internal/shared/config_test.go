package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./strum.db" {
			t.Errorf("expected database path ./strum.db, got %s", config.Database.Path)
		}
		if config.Server.Host != "127.0.0.1" || config.Server.Port != 3000 {
			t.Errorf("unexpected server defaults: %s:%d", config.Server.Host, config.Server.Port)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://127.0.0.1:9000/callback"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9000
`
		if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("unexpected client id: %s", config.Credentials.Spotify.ClientID)
		}
		if config.Database.Path != "/custom/path.db" || config.Database.MaxOpenConns != 20 {
			t.Errorf("unexpected database config: %+v", config.Database)
		}
		if config.Server.Port != 9000 {
			t.Errorf("unexpected server port: %d", config.Server.Port)
		}
	})

	t.Run("LoadConfigMalformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[[[not toml"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("STRUM_CLIENT_ID", "env-id")
		t.Setenv("STRUM_CLIENT_SECRET", "env-secret")
		t.Setenv("STRUM_REDIRECT_URI", "http://127.0.0.1:4000/callback")

		config := &Config{}
		config.Credentials.Spotify.ClientID = "file-id"
		config.ApplyEnv()

		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("environment should win over file, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env-secret" {
			t.Errorf("secret override missing: %s", config.Credentials.Spotify.ClientSecret)
		}
		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:4000/callback" {
			t.Errorf("redirect override missing: %s", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("ValidateCredentials", func(t *testing.T) {
		config := &Config{}
		if err := config.ValidateCredentials(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		config.Credentials.Spotify.ClientID = "id"
		config.Credentials.Spotify.ClientSecret = "secret"
		if err := config.ValidateCredentials(); err != nil {
			t.Errorf("complete credentials should validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		if _, err := LoadConfig(path); err != nil {
			t.Fatalf("created file should parse: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("creating over an existing file should fail")
		}
	})
}
