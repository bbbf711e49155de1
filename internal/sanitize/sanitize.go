// Package sanitize maps artist and track names to filesystem-safe file names.
//
// The mapping is a pure function: the same input always yields the same
// name. Deduplication in the shared song library relies on this: two
// tracks that sanitize to the same name are treated as the same song.
package sanitize

import "strings"

const invalidChars = `<>:"/\|?*`

// Clean replaces path-hostile characters, whitespace runs and semicolons
// (used to separate multiple artists) with single underscores.
func Clean(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case strings.ContainsRune(invalidChars, r):
			b.WriteByte('_')
		case r == ';':
			b.WriteByte('_')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// Stem returns the canonical file stem for a track: {artist}-{track},
// each part cleaned independently.
func Stem(artist, track string) string {
	return Clean(artist) + "-" + Clean(track)
}

// FileName returns the canonical audio file name for a track with the
// given extension (without a leading dot).
func FileName(artist, track, ext string) string {
	return Stem(artist, track) + "." + ext
}
