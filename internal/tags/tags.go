// Package tags reads audio file metadata via TagLib.
package tags

import (
	"fmt"
	"math"

	"go.senan.xyz/taglib"
)

// Reader reads durations from audio files on disk.
type Reader struct{}

// NewReader creates a tag reader.
func NewReader() *Reader { return &Reader{} }

// DurationMS returns the audio duration of the file at path in
// milliseconds, rounded to the nearest millisecond. An unreadable or
// non-audio file returns an error.
func (r *Reader) DurationMS(path string) (int64, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read audio properties: %w", err)
	}

	ms := int64(math.Round(float64(props.Length.Microseconds()) / 1000.0))
	if ms <= 0 {
		return 0, fmt.Errorf("no duration in audio file: %s", path)
	}
	return ms, nil
}
