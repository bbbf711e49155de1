// package models defines the data model for the playlist download pipeline
package models

// Track is one record in a playlist manifest. Records are kept in playlist
// order; the metadata fields are copied from the playlist export and never
// change, while URL, LocalPath and ThumbnailPath are filled in by the
// pipeline stages.
type Track struct {
	TrackName     string `json:"track_name"`
	Artist        string `json:"artist"`
	Album         string `json:"album,omitempty"`
	ReleaseDate   string `json:"release_date,omitempty"`
	DurationMS    string `json:"duration_ms,omitempty"`
	URL           string `json:"url,omitempty"`
	LocalPath     string `json:"local_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

// Downloaded reports whether the record has a local audio file.
func (t Track) Downloaded() bool {
	return t.LocalPath != ""
}

// Failure is one entry in a failure list: a track whose download attempt
// did not succeed, with the upstream error text preserved verbatim.
type Failure struct {
	TrackName  string `json:"track_name"`
	Artist     string `json:"artist"`
	URL        string `json:"url"`
	Error      string `json:"error"`
	DurationMS string `json:"duration_ms,omitempty"`
}

// ExportRow is one row of a Spotify playlist export CSV.
type ExportRow struct {
	TrackName   string
	Artist      string
	Album       string
	ReleaseDate string
	DurationMS  string
}

// Track converts an export row into a fresh manifest record.
func (r ExportRow) Track() Track {
	return Track{
		TrackName:   r.TrackName,
		Artist:      r.Artist,
		Album:       r.Album,
		ReleaseDate: r.ReleaseDate,
		DurationMS:  r.DurationMS,
	}
}
