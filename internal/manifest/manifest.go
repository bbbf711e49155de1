// Package manifest implements the on-disk track record store.
//
// A manifest is a JSON array of track records for one playlist run, in
// playlist order. Stages mutate records in memory and flush the whole file
// after each mutation that must survive a crash, so an interrupted run
// loses at most the in-flight item. Storage errors here are fatal to the
// calling stage.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nexusmusic/nexusdl/internal/models"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

// FileName is the canonical manifest file name inside a run directory.
const FileName = "output.json"

// Store holds one playlist manifest and its backing file.
type Store struct {
	path   string
	tracks []models.Track
}

// Load reads a manifest from disk.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	var tracks []models.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidManifest, path, err)
	}

	return &Store{path: path, tracks: tracks}, nil
}

// Create initializes an empty manifest at path, creating parent
// directories, and writes it immediately.
func Create(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	s := &Store{path: path, tracks: []models.Track{}}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadOrCreate loads an existing manifest or creates an empty one. Used by
// the search stage so an interrupted run can resume against the same file.
func LoadOrCreate(path string) (*Store, error) {
	s, err := Load(path)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, shared.ErrManifestNotFound) {
		return Create(path)
	}
	return nil, err
}

// Path returns the manifest's backing file path.
func (s *Store) Path() string { return s.path }

// Dir returns the directory holding the manifest.
func (s *Store) Dir() string { return filepath.Dir(s.path) }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.tracks) }

// Tracks returns the records in playlist order. The slice is shared;
// callers that mutate records must Flush afterwards.
func (s *Store) Tracks() []models.Track { return s.tracks }

// Get returns the record at index i.
func (s *Store) Get(i int) models.Track { return s.tracks[i] }

// Set replaces the record at index i and flushes.
func (s *Store) Set(i int, t models.Track) error {
	s.tracks[i] = t
	return s.Flush()
}

// Append adds a record to the end of the manifest and flushes.
func (s *Store) Append(t models.Track) error {
	s.tracks = append(s.tracks, t)
	return s.Flush()
}

// FindByIdentity locates a record by case-insensitive (track name, artist)
// identity, the same identity used for resume checks and retry
// reconciliation.
func (s *Store) FindByIdentity(trackName, artist string) (int, bool) {
	key := shared.NormalizeTrackKey(trackName, artist)
	for i, t := range s.tracks {
		if shared.NormalizeTrackKey(t.TrackName, t.Artist) == key {
			return i, true
		}
	}
	return -1, false
}

// FindByURL locates a record by its source URL.
func (s *Store) FindByURL(url string) (int, bool) {
	if url == "" {
		return -1, false
	}
	for i, t := range s.tracks {
		if t.URL == url {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether a record with the given identity exists.
func (s *Store) Contains(trackName, artist string) bool {
	_, ok := s.FindByIdentity(trackName, artist)
	return ok
}

// Flush serializes the manifest to its backing file.
func (s *Store) Flush() error {
	data, err := shared.MarshalJSON(s.tracks, true)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// FindAll walks root and returns the paths of every manifest file under
// it, for the migrator's all-playlists pass.
func FindAll(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == FileName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return paths, nil
}

// PlaylistManifest pairs a playlist name with its manifest path.
type PlaylistManifest struct {
	Playlist string
	Path     string
}

// FindPlaylists returns manifests laid out as
// {root}/{playlist}/{timestamp}/output.json, keyed by playlist folder
// name. Manifests at other depths are ignored.
func FindPlaylists(root string) ([]PlaylistManifest, error) {
	paths, err := FindAll(root)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	var results []PlaylistManifest
	for _, p := range paths {
		timestampDir := filepath.Dir(p)
		playlistDir := filepath.Dir(timestampDir)

		absParent, err := filepath.Abs(filepath.Dir(playlistDir))
		if err != nil {
			continue
		}
		if absParent != absRoot {
			continue
		}

		results = append(results, PlaylistManifest{
			Playlist: filepath.Base(playlistDir),
			Path:     p,
		})
	}
	return results, nil
}
