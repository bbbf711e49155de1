package spotify

import (
	"strings"
	"testing"
)

func TestParseExport(t *testing.T) {
	t.Run("parses rows in order", func(t *testing.T) {
		input := `Track Name,Artist Name(s),Album Name,Release Date,Duration (ms)
Back In Black,AC/DC,Back In Black,1980-07-25,255493
T.N.T.,AC/DC,High Voltage,1976-04-30,214791
`
		rows, err := ParseExport(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].TrackName != "Back In Black" || rows[0].Artist != "AC/DC" {
			t.Errorf("unexpected first row: %+v", rows[0])
		}
		if rows[1].DurationMS != "214791" {
			t.Errorf("expected duration 214791, got %q", rows[1].DurationMS)
		}
	})

	t.Run("accepts reordered and extra columns", func(t *testing.T) {
		input := `Spotify ID,Artist Name(s),Track Name,Duration (ms)
abc123,Queen,Bohemian Rhapsody,354320
`
		rows, err := ParseExport(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		if rows[0].TrackName != "Bohemian Rhapsody" {
			t.Errorf("expected track name from reordered column, got %q", rows[0].TrackName)
		}
		if rows[0].Album != "" {
			t.Errorf("expected empty album for missing column, got %q", rows[0].Album)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		input := "Track Name,Artist Name(s)\n  Song  ,  Artist  \n"
		rows, err := ParseExport(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		if rows[0].TrackName != "Song" || rows[0].Artist != "Artist" {
			t.Errorf("expected trimmed fields, got %+v", rows[0])
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := ParseExport(strings.NewReader("")); err == nil {
			t.Fatal("expected error for empty CSV")
		}
	})

	t.Run("quoted fields with commas", func(t *testing.T) {
		input := `Track Name,Artist Name(s)
"Hello, Goodbye",The Beatles
`
		rows, err := ParseExport(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		if rows[0].TrackName != "Hello, Goodbye" {
			t.Errorf("expected quoted field preserved, got %q", rows[0].TrackName)
		}
	})
}

func TestExportRowTrack(t *testing.T) {
	rows, err := ParseExport(strings.NewReader("Track Name,Artist Name(s),Duration (ms)\nSong,Artist,1000\n"))
	if err != nil {
		t.Fatalf("ParseExport() error = %v", err)
	}

	track := rows[0].Track()
	if track.TrackName != "Song" || track.Artist != "Artist" || track.DurationMS != "1000" {
		t.Errorf("unexpected track: %+v", track)
	}
	if track.URL != "" || track.LocalPath != "" {
		t.Error("fresh track should have no URL or local path")
	}
}
