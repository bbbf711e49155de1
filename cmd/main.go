package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/nexusmusic/nexusdl/internal/repositories"
	"github.com/nexusmusic/nexusdl/internal/shared"
	"github.com/nexusmusic/nexusdl/internal/tags"
	"github.com/nexusmusic/nexusdl/internal/tasks"
	"github.com/nexusmusic/nexusdl/internal/ytdlp"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// The config path has to be known before any dependency is built, so
	// it is resolved from the raw arguments ahead of command parsing.
	configPath := configPathFromArgs(os.Args)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	var cache tasks.SearchCache
	if config.Cache.Path != "" {
		if db, err := shared.NewDatabase(config.Cache.Path); err != nil {
			logger.Warn("search cache disabled", "error", err)
		} else if err := shared.RunMigrations(db); err != nil {
			db.Close()
			logger.Warn("search cache disabled", "error", err)
		} else {
			shared.ConfigureDatabase(db, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)
			defer db.Close()
			cache = repositories.NewSearchCache(db)
		}
	}

	client := ytdlp.NewClient(ytdlp.Opts{
		Binary:             config.Downloader.Binary,
		AudioFormat:        config.Downloader.AudioFormat,
		Timeout:            time.Duration(config.Downloader.TimeoutSeconds) * time.Second,
		CandidatesPerQuery: config.Downloader.CandidatesPerQuery,
	})

	engine := tasks.NewEngine(tasks.EngineOpts{
		Searcher:   client,
		Downloader: client,
		Tags:       tags.NewReader(),
		Cache:      cache,
		Logger:     logger,
	})

	runner := NewRunner(RunnerOpts{
		Config: config,
		Engine: engine,
		Logger: logger,
	})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "nexusdl",
		Usage:   "Turn Spotify playlist exports into a local audio library",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Commands: r.register(),
	}
}

// configPathFromArgs extracts the --config value from raw arguments.
func configPathFromArgs(args []string) string {
	path := "config.toml"
	for i, arg := range args {
		if arg == "--config" || arg == "-c" {
			if i+1 < len(args) {
				path = args[i+1]
			}
		} else if v, ok := strings.CutPrefix(arg, "--config="); ok {
			path = v
		}
	}
	return path
}
