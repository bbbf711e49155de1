package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nexusmusic/nexusdl/internal/shared"
)

// CachedSearch is one resolved search result.
type CachedSearch struct {
	ID        string
	TrackName string
	Artist    string
	URL       string
	Strategy  string
	CreatedAt time.Time
}

// SearchCache persists resolved search URLs keyed by normalized track
// identity. Duplicate inserts are silently ignored (UNIQUE constraint on
// the identity key).
type SearchCache struct {
	db *sql.DB
}

// NewSearchCache creates a SearchCache with the given database connection.
func NewSearchCache(db *sql.DB) *SearchCache {
	return &SearchCache{db: db}
}

// Lookup returns the cached URL for a track identity, or ("", false) when
// the identity has never been resolved.
func (c *SearchCache) Lookup(trackName, artist string) (string, bool) {
	key := shared.NormalizeTrackKey(trackName, artist)

	var url string
	err := c.db.QueryRow(
		"SELECT url FROM search_cache WHERE track_key = ?", key,
	).Scan(&url)
	if err != nil {
		return "", false
	}
	return url, true
}

// Store records a resolved URL for a track identity. Returns nil if the
// identity is already cached.
func (c *SearchCache) Store(trackName, artist, url, strategy string) error {
	key := shared.NormalizeTrackKey(trackName, artist)

	query := `
		INSERT INTO search_cache (id, track_key, track_name, artist, url, strategy)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(query, shared.GenerateID(), key, trackName, artist, url, strategy)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache search result: %w", err)
	}

	return nil
}

// Invalidate removes a cached identity, for when a cached URL turns out to
// be stale (restricted or removed upstream).
func (c *SearchCache) Invalidate(trackName, artist string) error {
	key := shared.NormalizeTrackKey(trackName, artist)

	if _, err := c.db.Exec("DELETE FROM search_cache WHERE track_key = ?", key); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// List returns all cached entries, newest first.
func (c *SearchCache) List() ([]CachedSearch, error) {
	rows, err := c.db.Query(`
		SELECT id, track_name, artist, url, strategy, created_at
		FROM search_cache
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query search cache: %w", err)
	}
	defer rows.Close()

	var entries []CachedSearch
	for rows.Next() {
		var e CachedSearch
		if err := rows.Scan(&e.ID, &e.TrackName, &e.Artist, &e.URL, &e.Strategy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
