package config

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

// DefaultWatchDebounce coalesces the burst of events editors produce when
// saving a file.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	callbacks []func(*LoadResult)
	timer     *time.Timer
}

// NewWatcher creates a watcher for path. The file does not need to exist yet.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{path: path, debounce: DefaultWatchDebounce, logger: logger}
}

// OnChange registers a callback that receives each successfully reloaded
// config. Invalid configs are logged and skipped.
func (w *Watcher) OnChange(cb func(*LoadResult)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run watches until ctx is cancelled. The parent directory is watched so
// rename-on-save editors are handled. When that directory does not exist yet
// the closest existing ancestor is watched until it appears. Failing to watch
// is logged, never returned, so a missing config never stops the caller.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.path)
	dir := filepath.Dir(target)
	watched := ""
	// A directory created between the lookup and the Add is caught by
	// looking again until the answer is stable.
	rewatch := func() {
		for {
			next := nearestDir(dir)
			if next == watched {
				return
			}
			if err := fw.Add(next); err != nil {
				w.logger.Warn("cannot watch config directory", "dir", next, "error", err)
				return
			}
			if watched != "" {
				_ = fw.Remove(watched)
			}
			watched = next
			if watched != dir {
				w.logger.Info("config directory missing, watching ancestor", "dir", dir, "watching", watched)
			}
		}
	}
	rewatch()

	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if name == watched && (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) {
				watched = ""
				rewatch()
				continue
			}
			if watched != dir {
				rewatch()
				if watched == dir && fileExists(target) {
					w.schedule()
				}
				continue
			}
			if name != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("config change detected", "op", ev.Op.String(), "file", ev.Name)
			w.schedule()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// nearestDir returns dir or its closest ancestor that exists.
func nearestDir(dir string) string {
	for {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	res, err := LoadFromPath(w.path)
	if err != nil {
		w.logger.Warn("failed to reload config", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	callbacks := make([]func(*LoadResult), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	for _, cb := range callbacks {
		cb(res)
	}
}
