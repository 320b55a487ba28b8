package web

// watch.go reloads the mapping registry when the backing file changes.
//
// The watcher observes the file's directory rather than the file itself:
// most editors and config-management tools replace files via rename, which
// drops an inode-level watch. Rapid event bursts are coalesced with a
// debounce timer so one save triggers one reload.

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/r2x-tools/reedsmap/internal/config"
	"github.com/r2x-tools/reedsmap/internal/mapping"
)

// Watcher hot-reloads a mapping file into a registry.
type Watcher struct {
	cfg      config.MappingConfig
	registry *mapping.Registry
	fsw      *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a watcher for the configured mapping path.
func NewWatcher(cfg config.MappingConfig, registry *mapping.Registry) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(cfg.Path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		registry: registry,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Run processes file events until Close is called. Call in a goroutine.
func (w *Watcher) Run() {
	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)

	target := filepath.Clean(w.cfg.Path)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.cfg.WatchDebounce)
			} else {
				debounce.Reset(w.cfg.WatchDebounce)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("mapping watcher error", "error", err)
		}
	}
}

// reload swaps the registry contents from disk. A broken file leaves the
// previous table in place.
func (w *Watcher) reload() {
	table, err := mapping.LoadFile(w.cfg.Path)
	if err != nil {
		metricMappingReloads.WithLabelValues("error").Inc()
		slog.Error("mapping reload failed, keeping previous table",
			"path", w.cfg.Path, "error", err)
		return
	}

	if w.cfg.Overrides != "" {
		overrides, err := mapping.LoadOverrides(w.cfg.Overrides)
		if err != nil {
			metricMappingReloads.WithLabelValues("error").Inc()
			slog.Error("mapping overrides reload failed, keeping previous table",
				"path", w.cfg.Overrides, "error", err)
			return
		}
		table, err = mapping.Merge(table, overrides)
		if err != nil {
			metricMappingReloads.WithLabelValues("error").Inc()
			slog.Error("mapping overrides merge failed, keeping previous table",
				"error", err)
			return
		}
	}

	w.registry.Replace(table)
	metricMappingReloads.WithLabelValues("ok").Inc()
	slog.Info("mapping reloaded", "path", w.cfg.Path, "datasets", len(table))
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
	w.fsw.Close()
}
