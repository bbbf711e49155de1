package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name          string
		title, artist string
		want          string
	}{
		{"lowercases", "Back In Black", "AC/DC", "back in black|ac/dc"},
		{"collapses whitespace", "Back  In\tBlack", " AC/DC ", "back in black|ac/dc"},
		{"empty fields", "", "", "|"},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeTrackKey(c.title, c.artist); got != c.want {
				t.Errorf("NormalizeTrackKey(%q, %q) = %q, want %q", c.title, c.artist, got, c.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("id %q is not a uuid", a)
	}
}

func TestMarshalJSON(t *testing.T) {
	t.Run("pretty output is indented", func(t *testing.T) {
		out, err := MarshalJSON(map[string]int{"n": 1}, true)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(out), "\n  ") {
			t.Errorf("expected indentation, got %q", out)
		}
	})

	t.Run("unserializable value errors", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected marshal error")
		}
	})
}

func TestConfig(t *testing.T) {
	t.Run("defaults come from the embedded example", func(t *testing.T) {
		config := DefaultConfig()

		if config.Downloader.Binary != "yt-dlp" {
			t.Errorf("Binary = %q", config.Downloader.Binary)
		}
		if config.Downloader.TimeoutSeconds != 300 {
			t.Errorf("TimeoutSeconds = %d", config.Downloader.TimeoutSeconds)
		}
		if config.Library.SongsDir != "songs" {
			t.Errorf("SongsDir = %q", config.Library.SongsDir)
		}
		if config.Cache.Path != "nexusdl.db" {
			t.Errorf("Cache.Path = %q", config.Cache.Path)
		}
	})

	t.Run("load parses overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		writeTestFile(t, path, `
[library]
songs_dir = "/mnt/music/songs"

[downloader]
search_delay = 4.5
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if config.Library.SongsDir != "/mnt/music/songs" {
			t.Errorf("SongsDir = %q", config.Library.SongsDir)
		}
		if config.Downloader.SearchDelay != 4.5 {
			t.Errorf("SearchDelay = %v", config.Downloader.SearchDelay)
		}
	})

	t.Run("load missing file errors", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing config")
		}
	})

	t.Run("create refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile() error = %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing config")
		}
	})
}

func TestMigrations(t *testing.T) {
	t.Run("run is idempotent", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("NewDatabase() error = %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first RunMigrations() error = %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second RunMigrations() error = %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("schema_migrations missing: %v", err)
		}
		if count != 1 {
			t.Errorf("schema_migrations has %d rows, want 1", count)
		}
	})
}
