// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Images    ImagesConfig    `toml:"images"`
	Scanner   ScannerConfig   `toml:"scanner"`
	Metadata  MetadataConfig  `toml:"metadata"`
	Libraries []LibraryConfig `toml:"library"`
}

type ServerConfig struct {
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ImagesConfig struct {
	CacheDir string `toml:"cache_dir"`
}

type ScannerConfig struct {
	ImportConcurrency int `toml:"import_concurrency"`
}

type MetadataConfig struct {
	TMDB *TMDBConfig `toml:"tmdb"`
}

type TMDBConfig struct {
	APIKey string `toml:"api_key"`
}

// LibraryConfig declares one content root to track.
type LibraryConfig struct {
	Root string `toml:"root"`
	Kind string `toml:"kind"` // movie, tv, music, audiobook
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/mediad.db"
	}
	if cfg.Images.CacheDir == "" {
		cfg.Images.CacheDir = "./data/images"
	}
	if cfg.Scanner.ImportConcurrency == 0 {
		cfg.Scanner.ImportConcurrency = 4
	}

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
