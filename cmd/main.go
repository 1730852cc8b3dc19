package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/strumcli/strum/internal/api"
	"github.com/strumcli/strum/internal/auth"
	"github.com/strumcli/strum/internal/repositories"
	"github.com/strumcli/strum/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := loadConfig(logger)
	settings, settingsPath := loadSettings(logger)

	store, err := auth.NewStore("")
	if err != nil {
		logger.Fatalf("cannot resolve token storage: %v", err)
	}

	tokens := auth.NewManager(auth.ManagerOpts{
		Store:        store,
		ClientID:     config.Credentials.Spotify.ClientID,
		ClientSecret: config.Credentials.Spotify.ClientSecret,
		Logger:       logger,
	})

	gateway := api.NewGateway(api.GatewayOpts{
		Tokens: tokens,
		Logger: logger,
	})
	client := api.NewClient(gateway)

	var db *sql.DB
	var history *repositories.HistoryRepository
	if settings.History {
		db, history = openHistory(config, logger)
	}
	if db != nil {
		defer db.Close()
	}

	runner := NewRunner(RunnerOpts{
		Config:       config,
		Settings:     &settings,
		SettingsPath: settingsPath,
		Tokens:       tokens,
		Client:       client,
		History:      history,
		DB:           db,
		Logger:       logger,
	})

	app := &cli.Command{
		Name:           "strum",
		Usage:          "Control Spotify playback from the terminal",
		Version:        "0.3.0",
		Commands:       runner.register(),
		DefaultCommand: "shell",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig reads credentials from the data directory, falling back to a
// config.toml beside the binary's working directory, then to defaults.
// Environment overrides are applied by the caller afterward.
func loadConfig(logger *log.Logger) *shared.Config {
	paths := []string{}
	if dir, err := shared.DataDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}
	paths = append(paths, "config.toml")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := shared.LoadConfig(path)
		if err != nil {
			logger.Warn("failed to load config, trying next", "path", path, "error", err)
			continue
		}
		return config
	}

	return shared.DefaultConfig()
}

// loadSettings reads the settings file. A malformed file is reported once
// and replaced by defaults so the program still starts.
func loadSettings(logger *log.Logger) (shared.Settings, string) {
	path, err := shared.SettingsPath()
	if err != nil {
		logger.Warn("cannot resolve settings path, using defaults", "error", err)
		return shared.DefaultSettings(), ""
	}

	settings, err := shared.LoadSettings(path)
	if err != nil {
		logger.Warn("settings file unreadable, using defaults", "path", path, "error", err)
	}

	return settings, path
}

// openHistory opens the local play history database, running migrations.
// History is best effort: any failure disables it for this run.
func openHistory(config *shared.Config, logger *log.Logger) (*sql.DB, *repositories.HistoryRepository) {
	path := config.Database.Path
	if path == "" {
		path = "./strum.db"
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		logger.Warn("history database unavailable", "path", path, "error", err)
		return nil, nil
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		logger.Warn("history migrations failed, history disabled", "error", err)
		db.Close()
		return nil, nil
	}

	return db, repositories.NewHistoryRepository(db)
}
