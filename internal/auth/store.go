package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/strumcli/strum/internal/shared"
)

// TokenFileName is the name of the token bundle file inside the data directory.
const TokenFileName = "token.json"

// Store persists a [Bundle] to a local JSON file.
type Store struct {
	path string
}

// NewStore creates a Store at the given path. An empty path selects the
// default location under the per-user data directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		dir, err := shared.DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, TokenFileName)
	}

	return &Store{path: path}, nil
}

// Path returns the file path where the bundle is stored.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted bundle. A missing file yields (nil, nil): no
// token is an expected state, not an error.
func (s *Store) Load() (*Bundle, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &bundle, nil
}

// Save writes the bundle atomically with owner-only permissions.
func (s *Store) Save(bundle *Bundle) error {
	if bundle == nil {
		return fmt.Errorf("cannot save nil token bundle")
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token bundle: %w", err)
	}

	if err := shared.WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Clear removes the persisted bundle. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
