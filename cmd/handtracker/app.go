package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"handtracker/cmd/handtracker/shared"
	"handtracker/internal/analysis"
	"handtracker/internal/batch"
	"handtracker/internal/config"
	"handtracker/internal/hand"
	"handtracker/internal/store"
	"handtracker/internal/tracker"
)

// app bundles what every subcommand needs: config, logger and a tracker.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	tracker *tracker.Tracker
}

// setup loads the config and builds the tracker for the subject user.
// The user flag wins over the config file; one of them must name a user.
func setup(cli *CLI, userFlag string, structured bool) (*app, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if userFlag != "" {
		cfg.User = userFlag
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("no user configured: set user in %s or pass --user", cli.Config)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var logger zerolog.Logger
	if structured {
		logger = shared.SetupStructuredLogger(cfg.Server.LogLevel, cli.Debug)
	} else {
		logger = shared.SetupLogger(cfg.Server.LogLevel, cli.Debug)
	}

	var snapshots store.SnapshotStore = store.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		snapshots = store.NewRedisStore(client, logger)
	}

	opts := []tracker.Option{tracker.WithWorkers(cfg.Import.Workers)}
	if cfg.Analysis.URL != "" {
		opts = append(opts, tracker.WithAnalyzer(analysis.NewHTTPAnalyzer(cfg.Analysis.URL)))
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		tracker: tracker.New(logger, cfg.User, snapshots, opts...),
	}, nil
}

// loadSources reads each path into a batch source. The platform hint, if
// set, skips auto-detection for every file.
func loadSources(paths []string, platform string) ([]batch.Source, error) {
	sources := make([]batch.Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, batch.Source{
			Name: filepath.Base(path),
			Text: string(data),
			Hint: hand.Platform(platform),
		})
	}
	return sources, nil
}
