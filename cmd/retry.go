package main

import (
	"context"
	"path/filepath"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/urfave/cli/v3"
)

// RetryRun re-attempts the failure list of a run, downloading straight into
// the shared song library.
func (r *Runner) RetryRun(ctx context.Context, cmd *cli.Command) error {
	runDir, err := runDirArg(cmd)
	if err != nil {
		return err
	}

	store, err := manifest.Load(filepath.Join(runDir, manifest.FileName))
	if err != nil {
		return err
	}

	r.logger.Info("starting retry", "run", runDir)

	progressCh, stop := r.printProgress()
	stats, err := r.engine.Retry(ctx, store, r.config.Library.SongsDir, delayOf(cmd), progressCh)
	stop()
	if err != nil {
		return err
	}

	if stats.NoFailuresToLoad {
		r.writePlain("No failure list found, nothing to retry.\n")
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Retry Complete")
	r.writePlain("Recovered: %d/%d\n", stats.Recovered, stats.Total)
	if stats.StillFailing > 0 {
		r.writePlain("Still failing: %d\n", stats.StillFailing)
	}
	if stats.FailuresRemoved {
		r.writePlain("All failures recovered, removed %s\n", manifest.FailuresFileName)
	}

	return nil
}

func retryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "retry",
		Usage:     "Re-attempt the failed downloads of a run",
		ArgsUsage: "<run-dir>",
		Flags: []cli.Flag{
			delayFlag(r.config.Downloader.DownloadDelay),
			jsonFlag(),
		},
		Action: r.RetryRun,
	}
}
