package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library    LibraryConfig    `toml:"library"`
	Downloader DownloaderConfig `toml:"downloader"`
	Cache      CacheConfig      `toml:"cache"`
}

// LibraryConfig contains the filesystem layout of the local library.
type LibraryConfig struct {
	OutputDir     string `toml:"output_dir"`     // per-playlist-per-run manifests and downloads
	SongsDir      string `toml:"songs_dir"`      // shared deduplicated song library
	PlaylistsDir  string `toml:"playlists_dir"`  // backend-facing playlist manifests
	ThumbnailsDir string `toml:"thumbnails_dir"` // video thumbnails keyed by video id
}

// DownloaderConfig contains settings for the external search/download tool.
type DownloaderConfig struct {
	Binary             string  `toml:"binary"`               // yt-dlp executable name or path
	AudioFormat        string  `toml:"audio_format"`         // extracted audio format (m4a)
	TimeoutSeconds     int     `toml:"timeout_seconds"`      // per-download bound
	SearchDelay        float64 `toml:"search_delay"`         // seconds between search requests
	DownloadDelay      float64 `toml:"download_delay"`       // seconds between downloads
	CandidatesPerQuery int     `toml:"candidates_per_query"` // search results fetched per query
}

// CacheConfig contains search-cache database settings.
type CacheConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
