package tasks

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/nexusmusic/nexusdl/internal/manifest"
)

// DurationStats summarizes one duration reconciliation run.
type DurationStats struct {
	Total      int `json:"total"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Missing    int `json:"missing"`
	Unreadable int `json:"unreadable"`
	Skipped    int `json:"skipped"`
}

// ReconcileDurations overwrites each downloaded record's duration with the
// value measured from the audio file itself. Relative LocalPaths are
// resolved against libraryRoot. Records without a local file are skipped,
// and unreadable files are counted but never abort the batch. The manifest
// is flushed once at the end, only when something changed.
func (e *Engine) ReconcileDurations(store *manifest.Store, libraryRoot string, progress chan<- ProgressUpdate) (DurationStats, error) {
	stats := DurationStats{Total: store.Len()}

	for i := 0; i < store.Len(); i++ {
		track := store.Get(i)
		step := i + 1

		if !track.Downloaded() {
			stats.Skipped++
			e.sendProgress(progress, recordUpdate(ReconcileDurations, step, stats.Total, Skipped, "%s - %s (not downloaded)", track.Artist, track.TrackName))
			continue
		}

		path := track.LocalPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(libraryRoot, path)
		}
		if _, err := os.Stat(path); err != nil {
			stats.Missing++
			e.sendProgress(progress, recordUpdate(ReconcileDurations, step, stats.Total, Failed, "%s - %s: file not found", track.Artist, track.TrackName))
			continue
		}

		ms, err := e.tags.DurationMS(path)
		if err != nil {
			stats.Unreadable++
			e.sendProgress(progress, recordUpdate(ReconcileDurations, step, stats.Total, Failed, "%s - %s: %s", track.Artist, track.TrackName, errorText(err)))
			continue
		}

		measured := strconv.FormatInt(ms, 10)
		if measured == track.DurationMS {
			stats.Unchanged++
			e.sendProgress(progress, recordUpdate(ReconcileDurations, step, stats.Total, Skipped, "%s - %s (already %sms)", track.Artist, track.TrackName, measured))
			continue
		}

		// Batch the rewrites; one flush at the end covers all of them.
		track.DurationMS = measured
		store.Tracks()[i] = track
		stats.Updated++
		e.sendProgress(progress, recordUpdate(ReconcileDurations, step, stats.Total, OK, "%s - %s: %sms", track.Artist, track.TrackName, measured))
	}

	if stats.Updated > 0 {
		if err := store.Flush(); err != nil {
			return stats, err
		}
	}

	return stats, nil
}
