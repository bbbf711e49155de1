package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/nexusmusic/nexusdl/internal/sanitize"
	"github.com/nexusmusic/nexusdl/internal/spotify"
	"github.com/urfave/cli/v3"
)

// runTimestampFormat names a run directory. UTC keeps runs sortable across
// machines.
const runTimestampFormat = "20060102T150405"

// SearchPlaylist resolves a source URL for every row of a playlist export
// CSV into a fresh (or resumed) run manifest.
func (r *Runner) SearchPlaylist(ctx context.Context, cmd *cli.Command) error {
	csvPath, err := firstArg(cmd, "path to playlist export CSV")
	if err != nil {
		return err
	}

	rows, err := spotify.ParseExportFile(csvPath)
	if err != nil {
		return err
	}

	playlist := cmd.String("playlist")
	if playlist == "" {
		playlist = sanitize.Clean(strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath)))
	}

	runDir := cmd.String("run")
	if runDir == "" {
		runDir = filepath.Join(r.config.Library.OutputDir, playlist, time.Now().UTC().Format(runTimestampFormat))
	}

	store, err := manifest.LoadOrCreate(filepath.Join(runDir, manifest.FileName))
	if err != nil {
		return err
	}

	r.logger.Info("starting search", "playlist", playlist, "rows", len(rows), "run", runDir)
	r.writePlain("Searching %d tracks for %s\n", len(rows), playlist)
	r.writePlain("Run directory: %s\n\n", runDir)

	progressCh, stop := r.printProgress()
	stats, err := r.engine.Search(ctx, store, rows, delayOf(cmd), progressCh)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Search Complete")
	r.writePlain("Resolved: %d/%d (%d from cache)\n", stats.Resolved, stats.Total, stats.CacheHits)
	r.writePlain("Skipped (already resolved): %d\n", stats.Skipped)
	if stats.Missed > 0 {
		r.writePlain("No match found: %d\n", stats.Missed)
	}
	r.writePlain("Manifest: %s\n", store.Path())

	return nil
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Resolve source URLs for a playlist export CSV",
		ArgsUsage: "<export.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Playlist name (defaults to the CSV file name)",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Existing run directory to resume into",
			},
			delayFlag(r.config.Downloader.SearchDelay),
			jsonFlag(),
		},
		Action: r.SearchPlaylist,
	}
}
