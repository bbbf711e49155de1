// Package spotify parses Spotify playlist export CSVs.
package spotify

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nexusmusic/nexusdl/internal/models"
)

// Export column headers as written by the Spotify export tooling.
const (
	colTrackName   = "Track Name"
	colArtist      = "Artist Name(s)"
	colAlbum       = "Album Name"
	colReleaseDate = "Release Date"
	colDurationMS  = "Duration (ms)"
)

// ParseExport reads a playlist export CSV and returns its rows in order.
// Columns are resolved by header name, so extra columns and arbitrary
// column order are accepted. Missing columns yield empty fields rather
// than errors; only a malformed CSV or an empty file is rejected.
func ParseExport(r io.Reader) ([]models.ExportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.ExportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		rows = append(rows, models.ExportRow{
			TrackName:   field(record, colTrackName),
			Artist:      field(record, colArtist),
			Album:       field(record, colAlbum),
			ReleaseDate: field(record, colReleaseDate),
			DurationMS:  field(record, colDurationMS),
		})
	}

	return rows, nil
}

// ParseExportFile opens and parses a playlist export CSV from disk.
func ParseExportFile(path string) ([]models.ExportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	return ParseExport(f)
}
