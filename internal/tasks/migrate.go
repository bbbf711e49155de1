package tasks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/shared"
)

// MigrateStats summarizes one library migration run.
type MigrateStats struct {
	Manifests         int `json:"manifests"`
	Files             int `json:"files"`
	Moved             int `json:"moved"`
	AlreadyInPlace    int `json:"already_in_place"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	Missing           int `json:"missing"`
	PathsRewritten    int `json:"paths_rewritten"`
	CleanedDirs       int `json:"cleaned_dirs"`
}

// trackRef points at one downloaded record inside a loaded manifest.
type trackRef struct {
	store *manifest.Store
	index int
}

// Migrate consolidates every downloaded file referenced by the manifests
// under outputRoot into songsDir, deduplicating by file name. The first
// source found for a name is moved into the library and every other copy
// is deleted; all referencing records are rewritten to the shared relative
// path "{songs}/{file}". With dryRun set, the plan is reported and nothing
// on disk changes. With cleanup set, per-run download directories left
// empty by the moves are removed.
func (e *Engine) Migrate(outputRoot, songsDir string, dryRun, cleanup bool, progress chan<- ProgressUpdate) (MigrateStats, error) {
	var stats MigrateStats

	paths, err := manifest.FindAll(outputRoot)
	if err != nil {
		return stats, err
	}
	stats.Manifests = len(paths)

	stores := make([]*manifest.Store, 0, len(paths))
	fileMap := map[string][]trackRef{}
	for _, p := range paths {
		store, err := manifest.Load(p)
		if err != nil {
			return stats, err
		}
		stores = append(stores, store)
		for i, t := range store.Tracks() {
			if !t.Downloaded() {
				continue
			}
			name := filepath.Base(t.LocalPath)
			fileMap[name] = append(fileMap[name], trackRef{store: store, index: i})
		}
	}

	names := make([]string, 0, len(fileMap))
	for name := range fileMap {
		names = append(names, name)
	}
	sort.Strings(names)
	stats.Files = len(names)

	if !dryRun {
		if err := os.MkdirAll(songsDir, 0755); err != nil {
			return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
	}

	libraryRoot := filepath.Dir(songsDir)
	relDir := filepath.Base(songsDir)
	modified := map[*manifest.Store]bool{}

	for step, name := range names {
		refs := fileMap[name]
		dest := filepath.Join(songsDir, name)
		destExists := fileExists(dest)

		sources := collectSources(refs, libraryRoot, dest, name)

		switch {
		case destExists:
			stats.AlreadyInPlace++
			e.sendProgress(progress, recordUpdate(MigrateSongs, step+1, stats.Files, Skipped, "%s (already in library)", name))
		case len(sources) == 0:
			stats.Missing++
			e.sendProgress(progress, recordUpdate(MigrateSongs, step+1, stats.Files, Failed, "%s: no source file found", name))
			continue
		default:
			if dryRun {
				e.sendProgress(progress, recordUpdate(MigrateSongs, step+1, stats.Files, OK, "%s <- %s (dry run)", name, sources[0]))
			} else {
				if err := moveFile(sources[0], dest); err != nil {
					return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
				}
				e.sendProgress(progress, recordUpdate(MigrateSongs, step+1, stats.Files, OK, "%s <- %s", name, sources[0]))
			}
			stats.Moved++
			sources = sources[1:]
		}

		// Every remaining copy outside the library is a duplicate.
		for _, src := range sources {
			if !dryRun {
				if err := os.Remove(src); err != nil {
					return stats, fmt.Errorf("%w: %v", shared.ErrStorage, err)
				}
			}
			stats.DuplicatesRemoved++
		}

		rel := relDir + "/" + name
		for _, ref := range refs {
			track := ref.store.Get(ref.index)
			if track.LocalPath == rel {
				continue
			}
			track.LocalPath = rel
			ref.store.Tracks()[ref.index] = track
			modified[ref.store] = true
			stats.PathsRewritten++
		}
	}

	if !dryRun {
		for _, store := range stores {
			if modified[store] {
				if err := store.Flush(); err != nil {
					return stats, err
				}
			}
		}
	}

	if cleanup && !dryRun {
		for _, store := range stores {
			dir := filepath.Join(store.Dir(), DownloadDirName)
			if removeIfEmpty(dir) {
				stats.CleanedDirs++
				e.sendProgress(progress, phaseUpdate(MigrateSongs, "removed empty %s", dir))
			}
		}
	}

	return stats, nil
}

// collectSources resolves the on-disk copies of a file referenced by a set
// of records. Candidates are the recorded path itself, the manifest
// directory and the run's downloads directory. The destination path never
// counts as a source.
func collectSources(refs []trackRef, libraryRoot, dest, name string) []string {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		absDest = dest
	}

	var sources []string
	seen := map[string]bool{}
	for _, ref := range refs {
		track := ref.store.Get(ref.index)
		candidates := []string{
			track.LocalPath,
			filepath.Join(ref.store.Dir(), name),
			filepath.Join(ref.store.Dir(), DownloadDirName, name),
		}
		if !filepath.IsAbs(candidates[0]) {
			candidates[0] = filepath.Join(libraryRoot, candidates[0])
		}
		for _, c := range candidates {
			abs, err := filepath.Abs(c)
			if err != nil || abs == absDest || seen[abs] {
				continue
			}
			if fileExists(abs) {
				seen[abs] = true
				sources = append(sources, abs)
			}
		}
	}
	return sources
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// moveFile renames src to dest, copying across filesystems when rename is
// not possible.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func removeIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
