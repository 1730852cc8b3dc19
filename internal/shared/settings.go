package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SettingsFileName is the name of the user preferences file inside [DataDir].
const SettingsFileName = "settings.json"

// Settings holds user preferences persisted as JSON.
//
// Loading merges the persisted file over [DefaultSettings], so fields
// absent from an older file pick up their defaults (forward-compatible).
type Settings struct {
	Device        string            `json:"device"`
	Compact       bool              `json:"compact"`
	Notifications bool              `json:"notifications"`
	AutoRefresh   int               `json:"auto_refresh"` // seconds between watch-mode refreshes
	Logging       bool              `json:"logging"`
	History       bool              `json:"history"`
	HistoryLimit  int               `json:"history_limit"`
	Colors        ColorSettings     `json:"colors"`
	Aliases       map[string]string `json:"aliases,omitempty"`
}

// ColorSettings maps display roles to terminal colors (hex or ANSI names).
type ColorSettings struct {
	Title   string `json:"title"`
	Accent  string `json:"accent"`
	Error   string `json:"error"`
	Warning string `json:"warning"`
	Muted   string `json:"muted"`
}

// DefaultSettings returns the fixed default preference instance.
func DefaultSettings() Settings {
	return Settings{
		Notifications: true,
		AutoRefresh:   5,
		History:       true,
		HistoryLimit:  100,
		Colors: ColorSettings{
			Title:   "#1DB954",
			Accent:  "#7D56F4",
			Error:   "#FF5F56",
			Warning: "#FFA500",
			Muted:   "#626262",
		},
	}
}

// SettingsPath returns the location of the settings file under [DataDir].
func SettingsPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// LoadSettings reads the settings file at path, merging persisted values
// over defaults. A missing file yields defaults with no error; an
// unreadable or malformed file degrades to defaults and reports the cause.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Unmarshal over the defaults instance: fields present in the file
	// overwrite, absent fields keep their default values.
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return settings, nil
}

// SaveSettings persists settings as indented JSON via [WriteFileAtomic].
func SaveSettings(path string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
