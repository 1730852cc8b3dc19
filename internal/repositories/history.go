// package repositories provides the persistence layer for local playback
// history, backed by SQLite.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/strumcli/strum/internal/api"
)

// HistoryEntry is one recorded play.
type HistoryEntry struct {
	ID       int64
	TrackID  string
	URI      string
	Title    string
	Artist   string
	Album    string
	PlayedAt time.Time
}

// HistoryRepository records and lists local playback history.
//
// Recording is best-effort bookkeeping: callers treat failures as
// warnings, never as command failures.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a repository over an open database that has
// had migrations applied.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record inserts a play for the given track and prunes the table to limit
// rows (oldest first). A limit of zero or less disables pruning.
func (r *HistoryRepository) Record(track api.Track, limit int) error {
	_, err := r.db.Exec(
		"INSERT INTO play_history (track_id, uri, title, artist, album) VALUES (?, ?, ?, ?, ?)",
		track.ID, track.URI, track.Name, track.Artist(), track.Album.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}

	if limit > 0 {
		if err := r.prune(limit); err != nil {
			return err
		}
	}

	return nil
}

// Recent returns up to limit plays, newest first.
func (r *HistoryRepository) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		"SELECT id, track_id, uri, title, artist, album, played_at FROM play_history ORDER BY played_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.TrackID, &entry.URI, &entry.Title, &entry.Artist, &entry.Album, &entry.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return entries, nil
}

// Count returns the number of recorded plays.
func (r *HistoryRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM play_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// prune deletes the oldest rows beyond limit.
func (r *HistoryRepository) prune(limit int) error {
	_, err := r.db.Exec(
		"DELETE FROM play_history WHERE id NOT IN (SELECT id FROM play_history ORDER BY played_at DESC, id DESC LIMIT ?)",
		limit,
	)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}
