package environment

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"studio/pkg/logging"
)

const (
	// DefaultDebounceInterval is the time to wait after the last change
	// before reloading.
	DefaultDebounceInterval = 250 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 2 * time.Second
)

// WatcherConfig holds configuration for the environments file watcher.
type WatcherConfig struct {
	// Store is the storage whose file is watched.
	Store *Storage

	// OnChange is called after the file changed on disk, debounced.
	OnChange func()

	// Debounce overrides DefaultDebounceInterval.
	Debounce time.Duration

	// PollInterval overrides DefaultPollInterval for the polling fallback.
	PollInterval time.Duration
}

// Watcher picks up edits to environments.yaml made outside the running
// server, typically `studio environment use` from another terminal, so the
// console follows the selection without a restart.
type Watcher struct {
	mu sync.Mutex

	config    WatcherConfig
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	lastModTime time.Time

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher. Call Start or Run to begin watching.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Watcher{config: config}
}

// WatchAccessor returns a watcher that reloads accessor on change.
func WatchAccessor(accessor *Accessor, store *Storage) *Watcher {
	return NewWatcher(WatcherConfig{
		Store: store,
		OnChange: func() {
			if err := accessor.Reload(); err != nil {
				logging.Error("EnvWatcher", err, "Failed to reload environment selection")
			}
		},
	})
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// Start begins watching. Watching the directory rather than the file keeps
// working across the rename-based saves done by Storage.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	dir := w.config.Store.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("EnvWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}

	if err := watcher.Add(dir); err != nil {
		logging.Warn("EnvWatcher", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		watcher.Close()
		go w.pollForChanges()
		return nil
	}

	w.fsWatcher = watcher
	go w.processEvents(watcher.Events, watcher.Errors)

	logging.Info("EnvWatcher", "Watching %s for environment changes", w.config.Store.FilePath())
	return nil
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("EnvWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != FileName {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	logging.Debug("EnvWatcher", "Environments file changed: %s (%s)", event.Name, event.Op)
	w.triggerDebounced()
}

func (w *Watcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.checkForChanges()

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("EnvWatcher", "Environments file change detected via polling")
				w.triggerDebounced()
			}
		}
	}
}

func (w *Watcher) checkForChanges() bool {
	info, err := os.Stat(w.config.Store.FilePath())
	if err != nil {
		return false
	}

	changed := !w.lastModTime.IsZero() && info.ModTime().After(w.lastModTime)
	w.lastModTime = info.ModTime()
	return changed
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("EnvWatcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("EnvWatcher", "Stopped environment watcher")
	return nil
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
