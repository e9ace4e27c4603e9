// Package watch reloads a local dataset file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler is called once per settled burst of writes to the file.
type ChangeHandler func(ctx context.Context)

// Config holds configuration for the file watcher
type Config struct {
	Path string
	// Debounce is how long to wait after the last event before calling the
	// handler.
	Debounce time.Duration
}

// Watcher monitors a single file for changes
type Watcher struct {
	path     string
	debounce time.Duration
	handler  ChangeHandler
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	wg    sync.WaitGroup
}

// New creates a watcher for cfg.Path. The parent directory is watched so
// that editors replacing the file by rename are still seen.
func New(cfg Config, handler ChangeHandler) (*Watcher, error) {
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", abs)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("not a file: %s", abs)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to add directory to watch: %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	return &Watcher{
		path:     abs,
		debounce: cfg.Debounce,
		handler:  handler,
		watcher:  fsWatcher,
	}, nil
}

// Run processes events until ctx is done, then releases the watcher and
// waits for any in-flight handler call.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("source watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)
	defer func() {
		w.mu.Lock()
		if w.timer != nil && w.timer.Stop() {
			w.wg.Done()
		}
		w.mu.Unlock()
		w.wg.Wait()
		w.watcher.Close()
		slog.Info("source watcher stopped", "path", w.path)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// handleEvent filters events down to writes of the watched file
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	slog.Debug("source event detected", "event", event.Op.String(), "path", w.path)
	w.schedule(ctx)
}

// schedule (re)starts the debounce timer
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil && w.timer.Stop() {
		// The pending call will not run.
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(w.path); err != nil {
			slog.Debug("source missing after change, waiting for next event", "path", w.path)
			return
		}
		w.handler(ctx)
	})
}
