package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce for a single
// save (truncate, write, chmod, or rename + create).
const DefaultDebounce = 250 * time.Millisecond

var newFSWatcherFn = fsnotify.NewWatcher

// Watcher reloads the config file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(Config)
}

// NewWatcher returns a watcher for path. onReload receives every config that
// loads and validates; invalid or missing files are logged and skipped.
func NewWatcher(path string, debounce time.Duration, onReload func(Config)) *Watcher {
	if onReload == nil {
		panic("config: nil reload callback")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: path, debounce: debounce, onReload: onReload}
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file so atomic replacements keep being observed.
func (w *Watcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	fsw, err := newFSWatcherFn()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config dir %s: %w", filepath.Dir(target), err)
	}
	slog.Info("[config] watching config file for changes", "path", target)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return errors.New("watch config: event channel closed")
			}
			if filepath.Clean(ev.Name) != target || ev.Op == fsnotify.Chmod {
				continue
			}
			slog.Debug("[DEBUG-CONFIG] config file event", "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watch config: error channel closed")
			}
			slog.Warn("[WARN-CONFIG] config watcher error", "error", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if !fileExists(w.path) {
		slog.Warn("[WARN-CONFIG] config file disappeared, keeping current shortcuts", "path", w.path)
		return
	}
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("[WARN-CONFIG] config reload failed, keeping current shortcuts", "path", w.path, "error", err)
		return
	}
	slog.Info("[config] config reloaded", "path", w.path, "shortcuts", len(cfg.Shortcuts))
	w.onReload(cfg)
}
