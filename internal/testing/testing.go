// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
)

// MockSearcher is a test double for the pipeline's search backend.
type MockSearcher struct {
	URLs  map[string]string // keyed by "track|artist"
	Err   error
	Calls int
}

func (m *MockSearcher) Search(ctx context.Context, trackName, artist string, durationMS int) (string, string, error) {
	m.Calls++
	if m.Err != nil {
		return "", "", m.Err
	}
	if url, ok := m.URLs[trackName+"|"+artist]; ok {
		return url, "strategy 1/6: \"" + trackName + " " + artist + "\"", nil
	}
	return "", "", errors.New("no search results")
}

// MockDownloader is a test double for the pipeline's download backend.
// FailURLs map URL to the error text that attempt should produce.
type MockDownloader struct {
	FailURLs map[string]string
	Calls    []string
	Content  []byte
}

func (m *MockDownloader) Download(ctx context.Context, url, destPath string) error {
	m.Calls = append(m.Calls, url)
	if msg, ok := m.FailURLs[url]; ok {
		return errors.New(msg)
	}
	content := m.Content
	if content == nil {
		content = []byte("audio")
	}
	return os.WriteFile(destPath, content, 0644)
}

func (m *MockDownloader) AudioFormat() string { return "m4a" }

// MockDurationReader returns canned durations per path.
type MockDurationReader struct {
	Durations map[string]int64
	Err       error
}

func (m *MockDurationReader) DurationMS(path string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if d, ok := m.Durations[path]; ok {
		return d, nil
	}
	return 0, errors.New("failed to read audio properties")
}

// MockCache is an in-memory search cache.
type MockCache struct {
	Entries map[string]string
	Stores  int
}

func (m *MockCache) Lookup(trackName, artist string) (string, bool) {
	url, ok := m.Entries[trackName+"|"+artist]
	return url, ok
}

func (m *MockCache) Store(trackName, artist, url, strategy string) error {
	if m.Entries == nil {
		m.Entries = map[string]string{}
	}
	m.Entries[trackName+"|"+artist] = url
	m.Stores++
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
