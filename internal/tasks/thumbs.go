package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

// Upstream serves a tiny gray placeholder instead of a 404 for missing
// maxres thumbnails; anything under this size is treated as one.
const minThumbnailBytes = 1000

// Manifest flush cadence during a thumbnail run.
const thumbFlushEvery = 50

// ThumbStats summarizes one thumbnail fetch run.
type ThumbStats struct {
	Total   int `json:"total"`
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// FetchThumbnails downloads the video thumbnail for every manifest record
// with a resolvable video ID, preferring the maxres variant and falling
// back to hqdefault. Files land in thumbsDir as {videoID}.jpg and the
// record's ThumbnailPath is stored relative to the library root. The
// manifest is flushed every few records and once at the end, so an
// interrupted run loses little. With dryRun set, the plan is reported and
// nothing is fetched.
func (e *Engine) FetchThumbnails(ctx context.Context, store *manifest.Store, thumbsDir string, delay time.Duration, dryRun bool, progress chan<- ProgressUpdate) (ThumbStats, error) {
	stats := ThumbStats{Total: store.Len()}

	if !dryRun {
		if err := os.MkdirAll(thumbsDir, 0755); err != nil {
			return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
	}

	limiter := newLimiter(delay)
	relDir := filepath.Base(thumbsDir)
	pending := 0

	for i := 0; i < store.Len(); i++ {
		track := store.Get(i)
		step := i + 1

		id := VideoID(track.URL)
		if id == "" {
			stats.Skipped++
			e.sendProgress(progress, recordUpdate(FetchThumbnails, step, stats.Total, Skipped, "%s - %s (no video ID)", track.Artist, track.TrackName))
			continue
		}

		dest := filepath.Join(thumbsDir, id+".jpg")
		if track.ThumbnailPath != "" && fileExists(dest) {
			stats.Skipped++
			e.sendProgress(progress, recordUpdate(FetchThumbnails, step, stats.Total, Skipped, "%s - %s (already fetched)", track.Artist, track.TrackName))
			continue
		}

		if dryRun {
			stats.Fetched++
			e.sendProgress(progress, recordUpdate(FetchThumbnails, step, stats.Total, OK, "%s - %s -> %s.jpg (dry run)", track.Artist, track.TrackName, id))
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		if err := e.fetchThumbnail(ctx, id, dest); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			e.sendProgress(progress, recordUpdate(FetchThumbnails, step, stats.Total, Failed, "%s - %s: %s", track.Artist, track.TrackName, errorText(err)))
			continue
		}

		track.ThumbnailPath = relDir + "/" + id + ".jpg"
		store.Tracks()[i] = track
		stats.Fetched++
		pending++
		e.sendProgress(progress, recordUpdate(FetchThumbnails, step, stats.Total, OK, "%s - %s -> %s.jpg", track.Artist, track.TrackName, id))

		if pending >= thumbFlushEvery {
			if err := store.Flush(); err != nil {
				return stats, err
			}
			pending = 0
		}
	}

	if pending > 0 && !dryRun {
		if err := store.Flush(); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// fetchThumbnail tries the maxres variant first and falls back to
// hqdefault when the upstream returns a placeholder.
func (e *Engine) fetchThumbnail(ctx context.Context, videoID, dest string) error {
	var lastErr error
	for _, variant := range []string{"maxresdefault", "hqdefault"} {
		u := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, variant)
		body, err := e.fetchImage(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		if err := os.WriteFile(dest, body, 0644); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		return nil
	}
	return lastErr
}

func (e *Engine) fetchImage(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", shared.ErrDownloadFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) < minThumbnailBytes {
		return nil, fmt.Errorf("%w: placeholder image (%d bytes)", shared.ErrDownloadFailed, len(body))
	}
	return body, nil
}

// VideoID extracts the video ID from a watch or short URL, returning ""
// when the URL has no recognizable ID.
func VideoID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if strings.HasSuffix(u.Host, "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	if strings.Contains(u.Path, "/watch") {
		return u.Query().Get("v")
	}
	return ""
}
