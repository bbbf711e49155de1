package main

import (
	"context"
	"path/filepath"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/urfave/cli/v3"
)

// FetchThumbnails downloads the video thumbnail for every record of a run.
func (r *Runner) FetchThumbnails(ctx context.Context, cmd *cli.Command) error {
	runDir, err := runDirArg(cmd)
	if err != nil {
		return err
	}

	store, err := manifest.Load(filepath.Join(runDir, manifest.FileName))
	if err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	r.logger.Info("fetching thumbnails", "run", runDir, "records", store.Len(), "dry_run", dryRun)

	progressCh, stop := r.printProgress()
	stats, err := r.engine.FetchThumbnails(ctx, store, r.config.Library.ThumbnailsDir, delayOf(cmd), dryRun, progressCh)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Thumbnails Complete")
	r.writePlain("Fetched: %d/%d\n", stats.Fetched, stats.Total)
	r.writePlain("Skipped: %d\n", stats.Skipped)
	if stats.Failed > 0 {
		r.writePlain("Failed: %d\n", stats.Failed)
	}

	return nil
}

func thumbnailsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "thumbnails",
		Usage:     "Fetch video thumbnails for every record of a run",
		ArgsUsage: "<run-dir>",
		Flags:     []cli.Flag{delayFlag(0.5), dryRunFlag(), jsonFlag()},
		Action:    r.FetchThumbnails,
	}
}
