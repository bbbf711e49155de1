package tasks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/models"
)

// SearchStats summarizes one search stage run.
type SearchStats struct {
	Total     int `json:"total"`
	Resolved  int `json:"resolved"`
	CacheHits int `json:"cache_hits"`
	Skipped   int `json:"skipped"`
	Missed    int `json:"missed"`
}

// Search resolves a source URL for every export row and appends the
// resolved records to the manifest, flushing after each success. Rows
// already present in the manifest are skipped without consuming a delay
// slot, so re-running the stage resumes where the previous run stopped.
// Rows with no match are counted and left out of the manifest entirely.
func (e *Engine) Search(ctx context.Context, store *manifest.Store, rows []models.ExportRow, delay time.Duration, progress chan<- ProgressUpdate) (SearchStats, error) {
	stats := SearchStats{Total: len(rows)}
	limiter := newLimiter(delay)

	for i, row := range rows {
		step := i + 1

		if store.Contains(row.TrackName, row.Artist) {
			stats.Skipped++
			e.sendProgress(progress, recordUpdate(SearchTracks, step, stats.Total, Skipped, "%s - %s (already resolved)", row.Artist, row.TrackName))
			continue
		}

		track := row.Track()

		if e.cache != nil {
			if url, ok := e.cache.Lookup(row.TrackName, row.Artist); ok {
				track.URL = url
				if err := store.Append(track); err != nil {
					return stats, err
				}
				stats.Resolved++
				stats.CacheHits++
				e.sendProgress(progress, recordUpdate(SearchTracks, step, stats.Total, OK, "%s - %s (cached)", row.Artist, row.TrackName))
				continue
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		url, strategy, err := e.searcher.Search(ctx, row.TrackName, row.Artist, parseDurationMS(row.DurationMS))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			stats.Missed++
			e.sendProgress(progress, recordUpdate(SearchTracks, step, stats.Total, Failed, "%s - %s: %s", row.Artist, row.TrackName, errorText(err)))
			continue
		}

		track.URL = url
		if err := store.Append(track); err != nil {
			return stats, err
		}
		if e.cache != nil {
			if err := e.cache.Store(row.TrackName, row.Artist, url, strategy); err != nil {
				e.logger.Warn("search cache store failed", "track", row.TrackName, "error", err)
			}
		}
		stats.Resolved++
		e.sendProgress(progress, recordUpdate(SearchTracks, step, stats.Total, OK, "%s - %s (%s)", row.Artist, row.TrackName, strategy))
	}

	return stats, nil
}

func parseDurationMS(s string) int {
	ms, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return ms
}
