package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nexusmusic/nexusdl/internal/shared"
)

func TestBuildQueries(t *testing.T) {
	t.Run("full strategy order", func(t *testing.T) {
		queries := BuildQueries("Song (feat. Guest)", "Main;Second")

		want := []string{
			"Song (feat. Guest) Main Second",
			"Song (feat. Guest) Main",
			"Song Main",
			"Song (feat. Guest) Main audio",
			"Song (feat. Guest) Main lyrics",
		}
		if len(queries) != len(want) {
			t.Fatalf("got %d queries %v, want %d", len(queries), queries, len(want))
		}
		for i := range want {
			if queries[i] != want[i] {
				t.Errorf("query[%d] = %q, want %q", i, queries[i], want[i])
			}
		}
	})

	t.Run("single artist deduplicates strategies", func(t *testing.T) {
		queries := BuildQueries("Plain Song", "Solo Artist")

		// strategies 1-4 all normalize to the same query
		want := []string{
			"Plain Song Solo Artist",
			"Plain Song Solo Artist audio",
			"Plain Song Solo Artist lyrics",
		}
		if len(queries) != len(want) {
			t.Fatalf("got %v, want %v", queries, want)
		}
		for i := range want {
			if queries[i] != want[i] {
				t.Errorf("query[%d] = %q, want %q", i, queries[i], want[i])
			}
		}
	})

	t.Run("bracketed remix stripped only in strategy four", func(t *testing.T) {
		queries := BuildQueries("Track [Extended Remix]", "Artist")

		found := false
		for _, q := range queries {
			if q == "Track Artist" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected paren-stripped query, got %v", queries)
		}
	})
}

func TestParseCandidates(t *testing.T) {
	tc := []struct {
		name   string
		output string
		want   []Candidate
	}{
		{
			name:   "url and duration pairs",
			output: "https://example.com/watch?v=a 215.0\nhttps://example.com/watch?v=b 600",
			want: []Candidate{
				{URL: "https://example.com/watch?v=a", Duration: 215},
				{URL: "https://example.com/watch?v=b", Duration: 600},
			},
		},
		{
			name:   "missing duration keeps url",
			output: "https://example.com/watch?v=a NA",
			want:   []Candidate{{URL: "https://example.com/watch?v=a", Duration: 0}},
		},
		{
			name:   "non-http lines dropped",
			output: "WARNING: something\nhttps://example.com/watch?v=a 10",
			want:   []Candidate{{URL: "https://example.com/watch?v=a", Duration: 10}},
		},
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCandidates(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("parseCandidates() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("candidate[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPickBest(t *testing.T) {
	candidates := []Candidate{
		{URL: "https://example.com/long", Duration: 3600},
		{URL: "https://example.com/close", Duration: 218},
		{URL: "https://example.com/short", Duration: 45},
	}

	t.Run("closest duration wins", func(t *testing.T) {
		if got := pickBest(candidates, 215000); got != "https://example.com/close" {
			t.Errorf("pickBest() = %q, want close match", got)
		}
	})

	t.Run("compilations filtered at 3x target", func(t *testing.T) {
		only := []Candidate{{URL: "https://example.com/compilation", Duration: 7200}}
		// filter empties the list, so it falls back to the original
		if got := pickBest(only, 215000); got != "https://example.com/compilation" {
			t.Errorf("pickBest() fallback = %q", got)
		}
	})

	t.Run("no target takes top result", func(t *testing.T) {
		if got := pickBest(candidates, 0); got != "https://example.com/long" {
			t.Errorf("pickBest() = %q, want first candidate", got)
		}
	})

	t.Run("empty candidates", func(t *testing.T) {
		if got := pickBest(nil, 1000); got != "" {
			t.Errorf("pickBest(nil) = %q, want empty", got)
		}
	})
}

// fakeRun builds a runner returning canned output per invocation.
func fakeRun(stdout, stderr string, err error) runner {
	return func(ctx context.Context, name string, args ...string) (string, string, error) {
		return stdout, stderr, err
	}
}

func TestClientSearch(t *testing.T) {
	t.Run("first strategy with results wins", func(t *testing.T) {
		c := NewClient(Opts{})
		c.run = fakeRun("https://example.com/watch?v=hit 215", "", nil)

		url, strategy, err := c.Search(context.Background(), "Song", "Artist", 215000)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if url != "https://example.com/watch?v=hit" {
			t.Errorf("Search() url = %q", url)
		}
		if !strings.Contains(strategy, "strategy 1/") {
			t.Errorf("Search() strategy = %q, want first strategy", strategy)
		}
	})

	t.Run("all strategies exhausted", func(t *testing.T) {
		c := NewClient(Opts{})
		c.run = fakeRun("", "", errors.New("exit status 1"))

		_, _, err := c.Search(context.Background(), "Song", "Artist", 0)
		if !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
	})
}

func TestClientDownload(t *testing.T) {
	t.Run("file at destination", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "Artist-Song.m4a")

		c := NewClient(Opts{})
		c.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
			if err := os.WriteFile(dest, []byte("audio"), 0644); err != nil {
				t.Fatal(err)
			}
			return "", "", nil
		}

		if err := c.Download(context.Background(), "https://example.com/x", dest); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
	})

	t.Run("different extension renamed into place", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "Artist-Song.m4a")

		c := NewClient(Opts{})
		c.run = func(ctx context.Context, name string, args ...string) (string, string, error) {
			if err := os.WriteFile(filepath.Join(dir, "Artist-Song.opus"), []byte("audio"), 0644); err != nil {
				t.Fatal(err)
			}
			return "", "", nil
		}

		if err := c.Download(context.Background(), "https://example.com/x", dest); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("expected file at destination: %v", err)
		}
	})

	t.Run("stderr preserved on failure", func(t *testing.T) {
		c := NewClient(Opts{})
		c.run = fakeRun("", "ERROR: Video unavailable\n", errors.New("exit status 1"))

		err := c.Download(context.Background(), "https://example.com/x", filepath.Join(t.TempDir(), "f.m4a"))
		if !errors.Is(err, shared.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "Video unavailable") {
			t.Errorf("expected upstream error text preserved, got %v", err)
		}
	})

	t.Run("no produced file", func(t *testing.T) {
		c := NewClient(Opts{})
		c.run = fakeRun("", "", nil)

		err := c.Download(context.Background(), "https://example.com/x", filepath.Join(t.TempDir(), "f.m4a"))
		if !errors.Is(err, shared.ErrDownloadFailed) {
			t.Errorf("expected ErrDownloadFailed, got %v", err)
		}
	})
}
