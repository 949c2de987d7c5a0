package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a local pricing configuration file and pushes
// reloaded configurations into a Store. It implements debouncing to
// prevent reload storms from editors that write files in several steps.
//
// This is the offline counterpart to the dashboard sync client: both feed
// the same Store, and whichever wrote last wins.
type FileWatcher struct {
	path     string
	store    *Store
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a watcher for the given configuration file.
// Reloaded configurations are installed into store via Replace.
func NewFileWatcher(path string, store *Store) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		path:     path,
		store:    store,
		watcher:  watcher,
		logger:   slog.Default().With("component", "config.watcher"),
		debounce: 100 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for file changes and reloads the configuration on
// each change. This is a blocking operation that runs until the context is
// cancelled or Stop is called. Reload failures are logged and leave the
// current configuration in place.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	if err := fw.watcher.Add(fw.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", fw.path, err)
	}

	fw.logger.Info("configuration watcher started",
		"path", fw.path,
		"debounce_ms", fw.debounce.Milliseconds(),
	)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	// A nil channel blocks forever, so reloads only fire once the
	// debounce timer has been armed by an event.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("configuration watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("configuration watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			fw.logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(fw.debounce)
			}
			fire = timer.C

			// Some editors replace the file, which removes the watch.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				_ = fw.watcher.Add(fw.path)
			}

		case <-fire:
			fire = nil
			fw.reload()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("configuration watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// reload loads the file and replaces the store's configuration.
func (fw *FileWatcher) reload() {
	cfg, err := LoadConfig(fw.path)
	if err != nil {
		fw.logger.Error("configuration reload failed", "path", fw.path, "error", err)
		return
	}

	fw.store.Replace(cfg)
	fw.logger.Info("configuration reloaded", "path", fw.path, "models", len(cfg.Models))
}

// Stop stops the watcher and waits for the Watch loop to exit.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return fw.watcher.Close()
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
