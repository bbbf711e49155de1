package repositories

import (
	"database/sql"
	"testing"

	"github.com/nexusmusic/nexusdl/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestSearchCache(t *testing.T) {
	t.Run("lookup miss", func(t *testing.T) {
		cache := NewSearchCache(newTestDB(t))

		if url, ok := cache.Lookup("Song", "Artist"); ok {
			t.Errorf("expected miss, got %q", url)
		}
	})

	t.Run("store then lookup", func(t *testing.T) {
		cache := NewSearchCache(newTestDB(t))

		if err := cache.Store("Song", "Artist", "https://example.com/1", "strategy 1/6"); err != nil {
			t.Fatalf("Store() error = %v", err)
		}

		url, ok := cache.Lookup("Song", "Artist")
		if !ok || url != "https://example.com/1" {
			t.Errorf("Lookup() = (%q, %v), want hit", url, ok)
		}
	})

	t.Run("lookup normalizes identity", func(t *testing.T) {
		cache := NewSearchCache(newTestDB(t))

		if err := cache.Store("Back  In Black", "AC/DC", "https://example.com/2", ""); err != nil {
			t.Fatal(err)
		}

		if _, ok := cache.Lookup("back in black", "ac/dc"); !ok {
			t.Error("expected case- and whitespace-insensitive hit")
		}
	})

	t.Run("duplicate store is silent", func(t *testing.T) {
		cache := NewSearchCache(newTestDB(t))

		if err := cache.Store("Song", "Artist", "https://example.com/1", ""); err != nil {
			t.Fatal(err)
		}
		if err := cache.Store("Song", "Artist", "https://example.com/other", ""); err != nil {
			t.Errorf("duplicate Store() error = %v, want nil", err)
		}

		// first write wins
		url, _ := cache.Lookup("Song", "Artist")
		if url != "https://example.com/1" {
			t.Errorf("Lookup() after duplicate store = %q", url)
		}
	})

	t.Run("invalidate removes entry", func(t *testing.T) {
		cache := NewSearchCache(newTestDB(t))

		if err := cache.Store("Song", "Artist", "https://example.com/1", ""); err != nil {
			t.Fatal(err)
		}
		if err := cache.Invalidate("Song", "Artist"); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
		if _, ok := cache.Lookup("Song", "Artist"); ok {
			t.Error("expected miss after invalidation")
		}
	})

	t.Run("list returns entries", func(t *testing.T) {
		cache := NewSearchCache(newTestDB(t))

		for _, e := range []struct{ track, artist, url string }{
			{"A", "X", "https://example.com/a"},
			{"B", "Y", "https://example.com/b"},
		} {
			if err := cache.Store(e.track, e.artist, e.url, ""); err != nil {
				t.Fatal(err)
			}
		}

		entries, err := cache.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("List() returned %d entries, want 2", len(entries))
		}
	})
}
