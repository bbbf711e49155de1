package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/models"
	"github.com/nexusmusic/nexusdl/internal/sanitize"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

// RetryStats summarizes one retry stage run.
type RetryStats struct {
	Total            int  `json:"total"`
	Recovered        int  `json:"recovered"`
	StillFailing     int  `json:"still_failing"`
	FailuresRemoved  bool `json:"failures_removed"`
	NoFailuresToLoad bool `json:"-"`
}

// Retry re-attempts every entry in the run's failure list. Entries without
// a URL are searched first; recovered audio is written directly into the
// shared song library, so the record's LocalPath is stored relative to the
// library root ("songs/{file}"). Each recovery updates the matching
// manifest record, matched by URL and then by identity, appending a new
// record when neither matches. The failure list is rewritten with the
// remaining entries and removed entirely when empty.
func (e *Engine) Retry(ctx context.Context, store *manifest.Store, songsDir string, delay time.Duration, progress chan<- ProgressUpdate) (RetryStats, error) {
	var stats RetryStats

	failPath := filepath.Join(store.Dir(), manifest.FailuresFileName)
	failures, err := manifest.LoadFailures(failPath)
	if err != nil {
		if errors.Is(err, shared.ErrManifestNotFound) {
			stats.NoFailuresToLoad = true
			return stats, nil
		}
		return stats, err
	}
	stats.Total = len(failures)

	if err := os.MkdirAll(songsDir, 0755); err != nil {
		return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	limiter := newLimiter(delay)
	var remaining []models.Failure

	for i, f := range failures {
		step := i + 1
		url := f.URL

		if url == "" {
			resolved, err := e.resolveURL(ctx, limiter, f)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return stats, err
				}
				stats.StillFailing++
				f.Error = errorText(err)
				remaining = append(remaining, f)
				e.sendProgress(progress, recordUpdate(RetryFailures, step, stats.Total, Failed, "%s - %s: %s", f.Artist, f.TrackName, errorText(err)))
				continue
			}
			url = resolved
		}

		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		fileName := sanitize.FileName(f.Artist, f.TrackName, e.downloader.AudioFormat())
		dest := filepath.Join(songsDir, fileName)
		if err := e.downloader.Download(ctx, url, dest); err != nil {
			if errors.Is(err, context.Canceled) {
				return stats, err
			}
			stats.StillFailing++
			f.URL = url
			f.Error = errorText(err)
			remaining = append(remaining, f)
			e.sendProgress(progress, recordUpdate(RetryFailures, step, stats.Total, Failed, "%s - %s: %s", f.Artist, f.TrackName, errorText(err)))
			continue
		}

		relPath := filepath.Base(songsDir) + "/" + fileName
		if err := e.recordRecovery(store, f, url, relPath); err != nil {
			return stats, err
		}
		stats.Recovered++
		e.sendProgress(progress, recordUpdate(RetryFailures, step, stats.Total, OK, "%s - %s", f.Artist, f.TrackName))
	}

	removed, err := manifest.SaveFailures(failPath, remaining)
	if err != nil {
		return stats, err
	}
	stats.FailuresRemoved = removed

	return stats, nil
}

// resolveURL finds a URL for a failure entry that never got one, consulting
// the cache before going out to the searcher.
func (e *Engine) resolveURL(ctx context.Context, limiter waiter, f models.Failure) (string, error) {
	if e.cache != nil {
		if url, ok := e.cache.Lookup(f.TrackName, f.Artist); ok {
			return url, nil
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		return "", err
	}

	url, strategy, err := e.searcher.Search(ctx, f.TrackName, f.Artist, parseDurationMS(f.DurationMS))
	if err != nil {
		return "", err
	}
	if e.cache != nil {
		if err := e.cache.Store(f.TrackName, f.Artist, url, strategy); err != nil {
			e.logger.Warn("search cache store failed", "track", f.TrackName, "error", err)
		}
	}
	return url, nil
}

// recordRecovery writes a recovered download back into the manifest,
// matching by URL first, identity second, appending when the record was
// never added.
func (e *Engine) recordRecovery(store *manifest.Store, f models.Failure, url, relPath string) error {
	if i, ok := store.FindByURL(url); ok {
		track := store.Get(i)
		track.LocalPath = relPath
		return store.Set(i, track)
	}
	if i, ok := store.FindByIdentity(f.TrackName, f.Artist); ok {
		track := store.Get(i)
		track.URL = url
		track.LocalPath = relPath
		return store.Set(i, track)
	}
	return store.Append(models.Track{
		TrackName:  f.TrackName,
		Artist:     f.Artist,
		DurationMS: f.DurationMS,
		URL:        url,
		LocalPath:  relPath,
	})
}

// waiter is the limiter surface the retry stage needs.
type waiter interface {
	Wait(ctx context.Context) error
}
