package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

const defaultReloadDebounce = 200 * time.Millisecond

// OnChange receives the reloaded config and the classified diff against the
// previous one. It runs on the watcher goroutine.
type OnChange func(cfg domain.Config, diff domain.ConfigDiff)

// Watcher reloads the config file on change, debounced, and reports
// non-empty diffs. Editors replace files rather than rewrite them in place,
// so the watch is on the directory and events are filtered by name.
type Watcher struct {
	loader   *Loader
	path     string
	prev     domain.Config
	onChange OnChange
	debounce time.Duration
	logger   *zap.Logger
}

func NewWatcher(loader *Loader, path string, initial domain.Config, onChange OnChange, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = NewLoader(logger)
	}
	return &Watcher{
		loader:   loader,
		path:     path,
		prev:     initial,
		onChange: onChange,
		debounce: defaultReloadDebounce,
		logger:   logger.Named("config_watcher"),
	}
}

// Run watches until ctx is canceled. It blocks.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return domain.E(domain.CodeUnavailable, "config.Watcher", "create watcher", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return domain.E(domain.CodeUnavailable, "config.Watcher", "watch "+dir, err)
	}
	w.logger.Debug("watching config", zap.String("path", w.path))

	target := filepath.Base(w.path)
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watcher.Errors:
			if err != nil {
				w.logger.Warn("config watcher error", zap.Error(err))
			}
		case event := <-watcher.Events:
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerChan(timer):
			timer = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	next, err := w.loader.Load(w.path)
	if err != nil {
		// A bad edit keeps the previous config in force.
		w.logger.Warn("config reload failed", zap.Error(err))
		return
	}

	diff := domain.DiffConfig(w.prev, next)
	if diff.IsEmpty() {
		return
	}
	w.prev = next
	w.logger.Info("config reloaded",
		zap.Strings("dynamic", diff.DynamicFields),
		zap.Strings("restart_required", diff.RestartRequiredFields))
	if w.onChange != nil {
		w.onChange(next, diff)
	}
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
