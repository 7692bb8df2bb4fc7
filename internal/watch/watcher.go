// Package watch re-runs analysis when C# sources change on disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"testlens/internal/logging"
)

// OnChange receives the settled set of changed paths after the debounce
// window closes.
type OnChange func(ctx context.Context, paths []string)

// Stats tracks watcher activity for the status display and tests.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Batches       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Watcher monitors a workspace for source and project file changes,
// debouncing rapid saves into one callback.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	root        string
	excludeDirs map[string]struct{}
	onChange    OnChange
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// NewWatcher creates a Watcher over the workspace root. excludeDirs are
// directory names never descended into.
func NewWatcher(root string, excludeDirs []string, debounce time.Duration, onChange OnChange) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	ex := make(map[string]struct{}, len(excludeDirs))
	for _, d := range excludeDirs {
		ex[strings.ToLower(d)] = struct{}{}
	}

	return &Watcher{
		watcher:     fsw,
		root:        root,
		excludeDirs: ex,
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		logging.Get(logging.CategoryWatch).Warn("initial watch setup incomplete: %v", err)
	}
	logging.Watch("watching %s (debounce %s)", w.root, w.debounceDur)

	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("close failed: %v", err)
	}
	logging.Watch("stopped")
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// addRecursive registers every non-excluded directory under root. fsnotify
// does not watch recursively on its own.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.isExcluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			logging.WatchDebug("cannot watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) isExcluded(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := w.excludeDirs[strings.ToLower(name)]
	return ok
}

// run is the event loop: collect events, flush settled batches on a ticker.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be added to the watch set as they appear.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.isExcluded(filepath.Base(event.Name)) {
				w.addRecursive(event.Name)
			}
			return
		}
	}

	if !watchedFile(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case event.Op&fsnotify.Create != 0:
		w.stats.FilesCreated++
	case event.Op&fsnotify.Write != 0:
		w.stats.FilesModified++
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.stats.FilesDeleted++
	default:
		return // chmod and friends
	}

	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.debounceMap[event.Name] = time.Now()
	logging.WatchDebug("event %s %s", event.Op, event.Name)
}

// flushSettled invokes the callback for paths whose last event is older than
// the debounce window.
func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Batches++
	}
	w.mu.Unlock()

	if len(settled) == 0 || w.onChange == nil {
		return
	}
	logging.Watch("%d change(s) settled, triggering callback", len(settled))
	w.onChange(ctx, settled)
}

// watchedFile reports whether a path is one the analyzer cares about.
func watchedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cs", ".csproj", ".sln":
		return true
	}
	return false
}
