package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/marco/toonboard/internal/cache"
	"github.com/marco/toonboard/internal/config"
	"github.com/marco/toonboard/internal/dataset"
	"github.com/marco/toonboard/internal/interact"
)

// app bundles what every command needs after startup.
type app struct {
	cfg    *config.Config
	loader *dataset.Loader
	cache  *cache.SQLiteCache
}

// setup loads configuration, installs the default logger and builds the
// loader. Callers must call close.
func setup(logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if sourceURL != "" {
		cfg.Source.URL = sourceURL
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	slog.SetDefault(newLogger(logOut, cfg.Logging))

	a := &app{cfg: cfg}
	lc := dataset.LoaderConfig{
		Timeout:        time.Duration(cfg.Source.TimeoutSeconds) * time.Second,
		MaxAttempts:    cfg.Source.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Source.InitialBackoffMs) * time.Millisecond,
		OnRetry: func(attempt, maxAttempts int, backoff time.Duration, err error) {
			slog.Warn("source fetch failed, retrying",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"backoff_ms", backoff.Milliseconds(),
				"error", err,
			)
		},
		CacheTTL: time.Duration(cfg.Cache.TTLHours) * time.Hour,
	}
	if cfg.Cache.Enabled {
		c, err := cache.NewSQLiteCache(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		a.cache = c
		lc.Cache = c
		slog.Debug("snapshot cache enabled", "path", cfg.Cache.Path, "ttl_hours", cfg.Cache.TTLHours)
	}
	a.loader = dataset.NewLoader(lc)
	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Warn("failed to close cache", "error", err)
		}
	}
}

// dashboard loads, cleans and wraps the configured source.
func (a *app) dashboard(ctx context.Context, opts interact.Options) (*interact.Dashboard, error) {
	ds, err := a.loader.LoadDataset(ctx, a.cfg.Source.URL)
	if err != nil {
		return nil, err
	}
	return interact.New(ds, opts), nil
}

func (a *app) dashboardOptions() interact.Options {
	return interact.Options{
		Filename:    a.cfg.Download.Filename,
		HonorFilter: a.cfg.Download.HonorFilter,
	}
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
