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

// DownloadDirName is the per-run directory that freshly downloaded audio
// lands in, next to the manifest. The migrate stage later consolidates
// these into the shared song library.
const DownloadDirName = "downloads"

// DownloadStats summarizes one download stage run.
type DownloadStats struct {
	Total           int  `json:"total"`
	Downloaded      int  `json:"downloaded"`
	Skipped         int  `json:"skipped"`
	Failed          int  `json:"failed"`
	FailuresWritten bool `json:"-"` // failure list written this run
}

// Download fetches audio for every manifest record that has a URL and no
// local file yet, writing into the run's downloads directory. Each success
// sets the record's absolute LocalPath and flushes the manifest. Failures
// are collected into the run's failure list; an empty list removes any
// stale failures file from a previous run.
func (e *Engine) Download(ctx context.Context, store *manifest.Store, delay time.Duration, progress chan<- ProgressUpdate) (DownloadStats, error) {
	stats := DownloadStats{Total: store.Len()}
	limiter := newLimiter(delay)

	destDir := filepath.Join(store.Dir(), DownloadDirName)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	var failures []models.Failure

	for i := 0; i < store.Len(); i++ {
		track := store.Get(i)
		step := i + 1

		if track.Downloaded() {
			stats.Skipped++
			e.sendProgress(progress, recordUpdate(DownloadTracks, step, stats.Total, Skipped, "%s - %s (already downloaded)", track.Artist, track.TrackName))
			continue
		}

		if track.URL == "" {
			stats.Failed++
			failures = append(failures, models.Failure{
				TrackName:  track.TrackName,
				Artist:     track.Artist,
				Error:      "No URL provided",
				DurationMS: track.DurationMS,
			})
			e.sendProgress(progress, recordUpdate(DownloadTracks, step, stats.Total, Failed, "%s - %s: no URL", track.Artist, track.TrackName))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		dest := filepath.Join(destDir, sanitize.FileName(track.Artist, track.TrackName, e.downloader.AudioFormat()))
		if err := e.downloader.Download(ctx, track.URL, dest); err != nil {
			if errors.Is(err, context.Canceled) {
				return stats, err
			}
			stats.Failed++
			failures = append(failures, models.Failure{
				TrackName:  track.TrackName,
				Artist:     track.Artist,
				URL:        track.URL,
				Error:      errorText(err),
				DurationMS: track.DurationMS,
			})
			e.sendProgress(progress, recordUpdate(DownloadTracks, step, stats.Total, Failed, "%s - %s: %s", track.Artist, track.TrackName, errorText(err)))
			continue
		}

		abs, err := filepath.Abs(dest)
		if err != nil {
			abs = dest
		}
		track.LocalPath = abs
		if err := store.Set(i, track); err != nil {
			return stats, err
		}
		stats.Downloaded++
		e.sendProgress(progress, recordUpdate(DownloadTracks, step, stats.Total, OK, "%s - %s", track.Artist, track.TrackName))
	}

	failPath := filepath.Join(store.Dir(), manifest.FailuresFileName)
	removed, err := manifest.SaveFailures(failPath, failures)
	if err != nil {
		return stats, err
	}
	stats.FailuresWritten = len(failures) > 0
	if removed {
		e.sendProgress(progress, phaseUpdate(DownloadTracks, "removed stale %s", manifest.FailuresFileName))
	}

	return stats, nil
}
