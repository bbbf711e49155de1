package main

import (
	"context"
	"path/filepath"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/urfave/cli/v3"
)

// DownloadRun fetches audio for every record of a run manifest.
func (r *Runner) DownloadRun(ctx context.Context, cmd *cli.Command) error {
	runDir, err := runDirArg(cmd)
	if err != nil {
		return err
	}

	store, err := manifest.Load(filepath.Join(runDir, manifest.FileName))
	if err != nil {
		return err
	}

	r.logger.Info("starting download", "run", runDir, "records", store.Len())
	r.writePlain("Downloading %d tracks\n\n", store.Len())

	progressCh, stop := r.printProgress()
	stats, err := r.engine.Download(ctx, store, delayOf(cmd), progressCh)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Download Complete")
	r.writePlain("Downloaded: %d/%d\n", stats.Downloaded, stats.Total)
	r.writePlain("Skipped (already local): %d\n", stats.Skipped)
	if stats.Failed > 0 {
		r.writePlain("Failed: %d (see %s)\n", stats.Failed, filepath.Join(runDir, manifest.FailuresFileName))
	}

	return nil
}

func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download audio for every resolved track of a run",
		ArgsUsage: "<run-dir>",
		Flags: []cli.Flag{
			delayFlag(r.config.Downloader.DownloadDelay),
			jsonFlag(),
		},
		Action: r.DownloadRun,
	}
}
