package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nexusmusic/nexusdl/internal/models"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

func TestStore(t *testing.T) {
	t.Run("create writes empty manifest", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "playlist", "2024-01-01T10-00", FileName)

		s, err := Create(path)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("expected empty store, got %d records", s.Len())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("manifest file not written: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected empty JSON array, got %s", data)
		}
	})

	t.Run("append flushes each record", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, FileName)

		s, err := Create(path)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := s.Append(models.Track{TrackName: "T.N.T.", Artist: "AC/DC", URL: "https://example.com/1"}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		reloaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if reloaded.Len() != 1 {
			t.Fatalf("expected 1 record after reload, got %d", reloaded.Len())
		}
		if reloaded.Get(0).TrackName != "T.N.T." {
			t.Errorf("unexpected record: %+v", reloaded.Get(0))
		}
	})

	t.Run("load missing file returns ErrManifestNotFound", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), FileName))
		if !errors.Is(err, shared.ErrManifestNotFound) {
			t.Errorf("expected ErrManifestNotFound, got %v", err)
		}
	})

	t.Run("load invalid JSON returns ErrInvalidManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(path)
		if !errors.Is(err, shared.ErrInvalidManifest) {
			t.Errorf("expected ErrInvalidManifest, got %v", err)
		}
	})

	t.Run("load or create resumes existing manifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)

		s, err := Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Append(models.Track{TrackName: "Song", Artist: "Artist"}); err != nil {
			t.Fatal(err)
		}

		resumed, err := LoadOrCreate(path)
		if err != nil {
			t.Fatalf("LoadOrCreate() error = %v", err)
		}
		if resumed.Len() != 1 {
			t.Errorf("expected resumed manifest with 1 record, got %d", resumed.Len())
		}
	})

	t.Run("identity lookup is case-insensitive", func(t *testing.T) {
		s := &Store{tracks: []models.Track{
			{TrackName: "Back In Black", Artist: "AC/DC"},
			{TrackName: "T.N.T.", Artist: "AC/DC"},
		}}

		i, ok := s.FindByIdentity("t.n.t.", "ac/dc")
		if !ok || i != 1 {
			t.Errorf("FindByIdentity() = (%d, %v), want (1, true)", i, ok)
		}
		if s.Contains("Missing", "Nobody") {
			t.Error("Contains() reported a record that does not exist")
		}
	})

	t.Run("lookup by URL", func(t *testing.T) {
		s := &Store{tracks: []models.Track{
			{TrackName: "A", Artist: "B", URL: "https://example.com/x"},
		}}

		if i, ok := s.FindByURL("https://example.com/x"); !ok || i != 0 {
			t.Errorf("FindByURL() = (%d, %v), want (0, true)", i, ok)
		}
		if _, ok := s.FindByURL(""); ok {
			t.Error("empty URL must not match")
		}
	})
}

func TestFailures(t *testing.T) {
	t.Run("save and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FailuresFileName)
		failures := []models.Failure{
			{TrackName: "Song", Artist: "Artist", URL: "https://example.com/1", Error: "Download timed out"},
		}

		removed, err := SaveFailures(path, failures)
		if err != nil {
			t.Fatalf("SaveFailures() error = %v", err)
		}
		if removed {
			t.Error("expected no removal when saving failures")
		}

		loaded, err := LoadFailures(path)
		if err != nil {
			t.Fatalf("LoadFailures() error = %v", err)
		}
		if len(loaded) != 1 || loaded[0].Error != "Download timed out" {
			t.Errorf("unexpected failures: %+v", loaded)
		}
	})

	t.Run("empty list removes existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FailuresFileName)
		if _, err := SaveFailures(path, []models.Failure{{TrackName: "X", Artist: "Y"}}); err != nil {
			t.Fatal(err)
		}

		removed, err := SaveFailures(path, nil)
		if err != nil {
			t.Fatalf("SaveFailures() error = %v", err)
		}
		if !removed {
			t.Error("expected existing failure file to be removed")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("failure file still exists")
		}
	})

	t.Run("empty list with no file is a no-op", func(t *testing.T) {
		removed, err := SaveFailures(filepath.Join(t.TempDir(), FailuresFileName), nil)
		if err != nil {
			t.Fatalf("SaveFailures() error = %v", err)
		}
		if removed {
			t.Error("expected removed=false when file was never written")
		}
	})
}

func TestFindPlaylists(t *testing.T) {
	root := t.TempDir()

	mk := func(parts ...string) {
		path := filepath.Join(append([]string{root}, parts...)...)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	mk("rock", "2024-01-01T10-00", FileName)
	mk("rock", "2024-02-01T10-00", FileName)
	mk("jazz", "2024-01-01T10-00", FileName)
	// wrong depth: directly under root
	mk("stray", FileName)

	all, err := FindAll(root)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("FindAll() found %d manifests, want 4", len(all))
	}

	playlists, err := FindPlaylists(root)
	if err != nil {
		t.Fatalf("FindPlaylists() error = %v", err)
	}
	if len(playlists) != 3 {
		t.Fatalf("FindPlaylists() found %d manifests, want 3: %+v", len(playlists), playlists)
	}

	names := map[string]int{}
	for _, p := range playlists {
		names[p.Playlist]++
	}
	if names["rock"] != 2 || names["jazz"] != 1 {
		t.Errorf("unexpected playlist grouping: %v", names)
	}
}
