package tasks

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/models"
	"github.com/nexusmusic/nexusdl/internal/shared"
	mocks "github.com/nexusmusic/nexusdl/internal/testing"
)

func newTestEngine(opts EngineOpts) *Engine {
	if opts.Searcher == nil {
		opts.Searcher = &mocks.MockSearcher{}
	}
	if opts.Downloader == nil {
		opts.Downloader = &mocks.MockDownloader{}
	}
	if opts.Tags == nil {
		opts.Tags = &mocks.MockDurationReader{}
	}
	return NewEngine(opts)
}

func newTestStore(t *testing.T, dir string, tracks []models.Track) *manifest.Store {
	t.Helper()
	store, err := manifest.Create(filepath.Join(dir, manifest.FileName))
	if err != nil {
		t.Fatalf("failed to create manifest: %v", err)
	}
	for _, track := range tracks {
		if err := store.Append(track); err != nil {
			t.Fatalf("failed to seed manifest: %v", err)
		}
	}
	return store
}

func reload(t *testing.T, store *manifest.Store) *manifest.Store {
	t.Helper()
	reloaded, err := manifest.Load(store.Path())
	if err != nil {
		t.Fatalf("failed to reload manifest: %v", err)
	}
	return reloaded
}

func TestErrorText(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", errors.New("connection reset"), "connection reset"},
		{"wrapped download failure", errWrap(shared.ErrDownloadFailed, "ERROR: video unavailable"), "ERROR: video unavailable"},
		{"wrapped timeout", errWrap(shared.ErrTimeout, "download timed out after 300s"), "download timed out after 300s"},
		{"wrapped no match", errWrap(shared.ErrNoMatch, "all strategies exhausted"), "all strategies exhausted"},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			if got := errorText(c.err); got != c.want {
				t.Errorf("errorText() = %q, want %q", got, c.want)
			}
		})
	}
}

func errWrap(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}
