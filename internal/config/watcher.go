package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is invoked with the old and new configuration after a
// successful reload.
type ChangeCallback func(old, next Config)

// Watcher reloads the config file on change and notifies callbacks. Editors
// and orchestrators often replace config files via rename, so the parent
// directory is watched rather than the file itself.
type Watcher struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current Config

	cbMu      sync.RWMutex
	callbacks []ChangeCallback

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
}

const reloadDebounce = 200 * time.Millisecond

// NewWatcher constructs a watcher for the given config file, seeded with the
// currently loaded configuration.
func NewWatcher(path string, current Config, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config watcher requires a file path")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	return &Watcher{
		path:      path,
		logger:    logger,
		current:   current,
		fsWatcher: fsw,
		done:      make(chan struct{}),
	}, nil
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.cbMu.Lock()
	defer w.cbMu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching until Stop is called.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop terminates the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce bursts of events from a single save.
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				timerC = timer.C
			} else {
				timer.Reset(reloadDebounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "err", err)
		}
	}
}

func (w *Watcher) reload() {
	next, err := LoadWithFile(w.path)
	if err != nil {
		w.logger.Error("config reload failed; keeping previous config", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = next
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)

	w.cbMu.RLock()
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(old, next)
	}
}
