package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// ExportPlaylists publishes the latest manifest of every playlist to the
// backend playlists directory.
func (r *Runner) ExportPlaylists(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")

	r.logger.Info("starting export",
		"output", r.config.Library.OutputDir,
		"playlists", r.config.Library.PlaylistsDir,
		"dry_run", dryRun,
	)

	progressCh, stop := r.printProgress()
	stats, err := r.engine.Export(r.config.Library.OutputDir, r.config.Library.PlaylistsDir, dryRun, progressCh)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Export Complete")
	if dryRun {
		r.writePlain("Would export %d playlists:\n", len(stats.Playlists))
	} else {
		r.writePlain("Exported %d playlists:\n", stats.Exported)
	}
	for _, name := range stats.Playlists {
		r.writePlain("  - %s\n", name)
	}

	return nil
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "export",
		Usage:  "Publish playlist manifests to the backend directory",
		Flags:  []cli.Flag{dryRunFlag(), jsonFlag()},
		Action: r.ExportPlaylists,
	}
}
