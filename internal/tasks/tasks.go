package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nexusmusic/nexusdl/internal/shared"
	"golang.org/x/time/rate"
)

// Searcher resolves the best-matching audio URL for a track.
type Searcher interface {
	// Search returns the resolved URL and a description of the winning
	// strategy, or an error when every strategy fails.
	Search(ctx context.Context, trackName, artist string, durationMS int) (url, strategy string, err error)
}

// Downloader fetches audio from a resolved URL to a destination path.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
	// AudioFormat returns the extension of produced audio files.
	AudioFormat() string
}

// DurationReader measures the true duration of a local audio file.
type DurationReader interface {
	DurationMS(path string) (int64, error)
}

// SearchCache is an optional store of previously resolved URLs.
// Implementations must treat lookups and stores as best-effort; the engine
// ignores cache failures.
type SearchCache interface {
	Lookup(trackName, artist string) (string, bool)
	Store(trackName, artist, url, strategy string) error
}

// Engine implements the pipeline stages. All stages are single-threaded
// sequential loops; the Engine holds only immutable collaborators, so a
// single Engine serves every command of a run.
type Engine struct {
	searcher   Searcher
	downloader Downloader
	tags       DurationReader
	cache      SearchCache // may be nil
	httpClient *http.Client
	logger     *log.Logger
}

// EngineOpts contains the collaborators for a pipeline Engine.
type EngineOpts struct {
	Searcher   Searcher
	Downloader Downloader
	Tags       DurationReader
	Cache      SearchCache
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewEngine creates a pipeline Engine with the provided collaborators.
func NewEngine(opts EngineOpts) *Engine {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Engine{
		searcher:   opts.Searcher,
		downloader: opts.Downloader,
		tags:       opts.Tags,
		cache:      opts.Cache,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// newLimiter builds the inter-request pacer for a stage. The bucket starts
// full, so the first call proceeds immediately and every later call is
// spaced by delay.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// errorText extracts the display text from a per-record error, dropping
// the sentinel prefix so the upstream tool's message is preserved verbatim
// in failure lists.
func errorText(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{shared.ErrDownloadFailed, shared.ErrTimeout, shared.ErrNoMatch, shared.ErrNoURL} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
