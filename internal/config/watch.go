package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the burst of events an editor save produces.
const DefaultWatchDebounce = 100 * time.Millisecond

// Reload is delivered after the config file changed on disk. Err is set
// when the new file failed to load; the previous config stays in effect.
type Reload struct {
	Config *Config
	Err    error
}

// Watcher reloads the config file whenever it is written.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	fsWatcher *fsnotify.Watcher
	events    chan Reload
	done      chan struct{}
	stopOnce  sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the directory containing path. The directory is
// created if needed so that a config written later is still noticed.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:      filepath.Clean(path),
		debounce:  debounce,
		logger:    logger,
		fsWatcher: fsWatcher,
		events:    make(chan Reload, 1),
		done:      make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// Events delivers reload results.
func (w *Watcher) Events() <-chan Reload {
	return w.events
}

// Stop stops watching. Pending reloads are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	// Atomic saves (write tmp, rename onto target) arrive as Create or Rename.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("config file changed", "op", event.Op.String(), "path", event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	res, err := LoadFromPath(w.path)
	ev := Reload{Err: err}
	if err == nil {
		ev.Config = res.Config
	}

	select {
	case <-w.done:
		return
	default:
	}
	// Keep only the newest result if the consumer is behind.
	select {
	case w.events <- ev:
	default:
		select {
		case <-w.events:
		default:
		}
		select {
		case w.events <- ev:
		default:
		}
	}
}
