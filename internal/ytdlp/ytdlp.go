// Package ytdlp wraps the external yt-dlp binary for searching and
// downloading audio. All invocations are synchronous with a bounded
// timeout; one call is in flight at a time by design.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexusmusic/nexusdl/internal/shared"
)

// DefaultTimeout bounds a single download invocation.
const DefaultTimeout = 5 * time.Minute

// searchTimeout bounds a single search query. Searches are metadata-only
// and much cheaper than downloads.
const searchTimeout = 60 * time.Second

// runner executes an external command and returns its stdout and stderr.
// Swappable for tests.
type runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func execRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Client invokes yt-dlp for track search and audio download.
type Client struct {
	binary             string
	audioFormat        string
	timeout            time.Duration
	candidatesPerQuery int
	run                runner
}

// Opts configures a Client. Zero values fall back to defaults.
type Opts struct {
	Binary             string        // executable name or path (default "yt-dlp")
	AudioFormat        string        // extracted audio format (default "m4a")
	Timeout            time.Duration // per-download bound (default 5m)
	CandidatesPerQuery int           // search results per query (default 3)
}

// NewClient creates a yt-dlp client.
func NewClient(opts Opts) *Client {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.AudioFormat == "" {
		opts.AudioFormat = "m4a"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CandidatesPerQuery <= 0 {
		opts.CandidatesPerQuery = 3
	}
	return &Client{
		binary:             opts.Binary,
		audioFormat:        opts.AudioFormat,
		timeout:            opts.Timeout,
		candidatesPerQuery: opts.CandidatesPerQuery,
		run:                execRunner,
	}
}

// AudioFormat returns the configured audio format extension.
func (c *Client) AudioFormat() string { return c.audioFormat }

// Download fetches the audio at url and leaves it at destPath.
//
// yt-dlp chooses the final extension itself, so the output template uses
// an extension placeholder; if the produced file does not land exactly at
// destPath the closest sibling sharing its stem is renamed into place.
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stem := strings.TrimSuffix(destPath, filepath.Ext(destPath))
	template := stem + ".%(ext)s"

	_, stderr, err := c.run(ctx, c.binary,
		"--extract-audio",
		"--audio-format", c.audioFormat,
		"--audio-quality", "0",
		"-o", template,
		url,
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: download timed out (%s)", shared.ErrTimeout, c.timeout)
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s", shared.ErrDownloadFailed, msg)
	}

	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	// yt-dlp may have written a different extension
	matches, _ := filepath.Glob(stem + ".*")
	if len(matches) > 0 {
		if err := os.Rename(matches[0], destPath); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrDownloadFailed, err)
		}
		return nil
	}

	return fmt.Errorf("%w: download succeeded but file not found at %s", shared.ErrDownloadFailed, destPath)
}
