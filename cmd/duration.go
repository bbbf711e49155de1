package main

import (
	"context"
	"path/filepath"

	"github.com/nexusmusic/nexusdl/internal/manifest"
	"github.com/urfave/cli/v3"
)

// ReconcileRun overwrites the stored duration of every downloaded record
// with the value measured from its audio file.
func (r *Runner) ReconcileRun(ctx context.Context, cmd *cli.Command) error {
	runDir, err := runDirArg(cmd)
	if err != nil {
		return err
	}

	store, err := manifest.Load(filepath.Join(runDir, manifest.FileName))
	if err != nil {
		return err
	}

	// Library-relative paths like "songs/x.m4a" resolve against the
	// directory holding the song library.
	libraryRoot := filepath.Dir(r.config.Library.SongsDir)

	r.logger.Info("reconciling durations", "run", runDir, "records", store.Len())

	progressCh, stop := r.printProgress()
	stats, err := r.engine.ReconcileDurations(store, libraryRoot, progressCh)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Duration Reconciliation Complete")
	r.writePlain("Updated: %d/%d\n", stats.Updated, stats.Total)
	r.writePlain("Already accurate: %d\n", stats.Unchanged)
	if stats.Missing+stats.Unreadable > 0 {
		r.writePlain("Missing files: %d, unreadable: %d\n", stats.Missing, stats.Unreadable)
	}

	return nil
}

func durationCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "duration",
		Usage:     "Replace stored durations with values measured from the audio files",
		ArgsUsage: "<run-dir>",
		Flags:     []cli.Flag{jsonFlag()},
		Action:    r.ReconcileRun,
	}
}
