// Command mediad maintains a media library: it scans content roots into a
// persisted link graph and resolves scanned content against external
// metadata catalogs.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediad/internal/config"
	"github.com/vmunix/mediad/internal/library"
	"github.com/vmunix/mediad/internal/metadata"
	"github.com/vmunix/mediad/internal/migrations"
	"github.com/vmunix/mediad/pkg/tmdb"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mediad",
	Short: "Media library scanner and metadata resolver",
	Long: `mediad - media library scanner and metadata resolver

Scans configured content roots into a persisted library graph and
matches discovered movies and shows against external catalogs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "mediad.toml", "Config file path")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mediad {{.Version}}\n")
}

// app bundles the wired components shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *sql.DB
	store    *library.Store
	resolver *metadata.Service
}

func (a *app) Close() {
	_ = a.db.Close()
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := newLogger(cfg.Server.LogLevel)

	db, err := sql.Open("sqlite", cfg.Database.Path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	store := library.NewStore(db)

	var providers []metadata.Provider
	if cfg.Metadata.TMDB != nil && cfg.Metadata.TMDB.APIKey != "" {
		client := tmdb.NewClient(cfg.Metadata.TMDB.APIKey)
		providers = append(providers, metadata.NewTMDBProvider(client, store, log))
	}
	images := metadata.NewImageCache(cfg.Images.CacheDir)
	resolver := metadata.NewService(providers, images, log)

	return &app{cfg: cfg, log: log, db: db, store: store, resolver: resolver}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
