package tasks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

// ExportStats summarizes one playlist export run.
type ExportStats struct {
	Playlists []string `json:"playlists"`
	Exported  int      `json:"exported"`
}

// Export publishes the manifest of every playlist under outputRoot to
// playlistsDir as {playlist}.json. Only manifests at the exact
// {root}/{playlist}/{timestamp}/output.json depth are exported; strays at
// other depths are ignored. The destination directory must already exist,
// which guards against publishing into a mistyped library path. With
// dryRun set, the plan is reported and nothing is written.
func (e *Engine) Export(outputRoot, playlistsDir string, dryRun bool, progress chan<- ProgressUpdate) (ExportStats, error) {
	var stats ExportStats

	info, err := os.Stat(playlistsDir)
	if err != nil {
		return stats, fmt.Errorf("%w: playlists directory %s does not exist", shared.ErrFileNotFound, playlistsDir)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, playlistsDir)
	}

	playlists, err := manifest.FindPlaylists(outputRoot)
	if err != nil {
		return stats, err
	}
	sort.Slice(playlists, func(i, j int) bool { return playlists[i].Playlist < playlists[j].Playlist })

	for i, pl := range playlists {
		dest := filepath.Join(playlistsDir, pl.Playlist+".json")

		if dryRun {
			stats.Playlists = append(stats.Playlists, pl.Playlist)
			e.sendProgress(progress, recordUpdate(ExportPlaylists, i+1, len(playlists), OK, "%s -> %s (dry run)", pl.Playlist, dest))
			continue
		}

		data, err := os.ReadFile(pl.Path)
		if err != nil {
			return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}

		stats.Playlists = append(stats.Playlists, pl.Playlist)
		stats.Exported++
		e.sendProgress(progress, recordUpdate(ExportPlaylists, i+1, len(playlists), OK, "%s -> %s", pl.Playlist, dest))
	}

	return stats, nil
}
