package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zeusync/ecs/internal/core/observability/log"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads path whenever it changes and hands every valid result to fn.
// Invalid files are logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, logger log.Log, fn func(*Config)) error {
	if logger == nil {
		logger = log.Nop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors replace files on save, so watch the directory and filter by name.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err = watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(reloadDebounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", log.Error(werr))
		case <-timer.C:
			cfg, lerr := Load(abs)
			if lerr != nil {
				logger.Warn("config reload rejected", log.String("path", path), log.Error(lerr))
				continue
			}
			logger.Info("config reloaded", log.String("path", path))
			fn(cfg)
		}
	}
}
