package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nexusmusic/nexusdl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file, the library directory layout and the
// search-cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if loaded, err := shared.LoadConfig(configPath); err == nil {
				config = loaded
			}
		}
	}

	for _, dir := range []string{
		config.Library.OutputDir,
		config.Library.SongsDir,
		config.Library.PlaylistsDir,
		config.Library.ThumbnailsDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create library directory %s: %w", dir, err)
		}
		r.logger.Info("library directory ready", "path", dir)
	}

	r.logger.Info("initializing search cache", "path", config.Cache.Path)

	db, err := shared.NewDatabase(config.Cache.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Cache.Path)

	r.writePlain("✓ Library initialized\n")
	r.writePlain("Next steps:\n")
	r.writePlain("1. Export a playlist to CSV and run 'nexusdl search <export.csv>'\n")
	r.writePlain("2. Run 'nexusdl download <run-dir>' to fetch the audio\n")

	return nil
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file, library directories and search cache",
		Action: r.Setup,
	}
}
