package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// MigrateLibrary consolidates every downloaded file into the shared song
// library, deduplicating across playlists.
func (r *Runner) MigrateLibrary(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	cleanup := cmd.Bool("cleanup")

	r.logger.Info("starting migration",
		"output", r.config.Library.OutputDir,
		"songs", r.config.Library.SongsDir,
		"dry_run", dryRun,
	)
	if dryRun {
		r.writePlain("Dry run, nothing will be moved.\n\n")
	}

	progressCh, stop := r.printProgress()
	stats, err := r.engine.Migrate(r.config.Library.OutputDir, r.config.Library.SongsDir, dryRun, cleanup, progressCh)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainln("")
	r.writePlainHeader("Migration Complete")
	r.writePlain("Manifests scanned: %d\n", stats.Manifests)
	r.writePlain("Unique files: %d\n", stats.Files)
	r.writePlain("Moved into library: %d\n", stats.Moved)
	r.writePlain("Already in library: %d\n", stats.AlreadyInPlace)
	r.writePlain("Duplicates removed: %d\n", stats.DuplicatesRemoved)
	r.writePlain("Manifest paths rewritten: %d\n", stats.PathsRewritten)
	if stats.Missing > 0 {
		r.writePlain("Missing sources: %d\n", stats.Missing)
	}
	if cleanup {
		r.writePlain("Emptied download directories removed: %d\n", stats.CleanedDirs)
	}

	return nil
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Consolidate downloaded files into the shared song library",
		Flags: []cli.Flag{
			dryRunFlag(),
			&cli.BoolFlag{
				Name:  "cleanup",
				Usage: "Remove per-run download directories left empty by the migration",
			},
			jsonFlag(),
		},
		Action: r.MigrateLibrary,
	}
}
