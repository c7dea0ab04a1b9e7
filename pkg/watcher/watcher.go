// Package watcher reports changes to mesh files so the viewer can reload
// them. Converters often replace their output instead of writing in place,
// so the containing directory is watched and events are matched by name.
package watcher

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a
// callback fires.
const DefaultDebounce = 250 * time.Millisecond

// FileWatcher calls back once per burst of changes to a watched file.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	files    map[string]func(string) // absolute file path -> callback
	dirs     map[string]int          // watched directory -> number of files in it
	timers   map[string]*time.Timer
	debounce time.Duration
	logger   *log.Logger
	done     chan struct{}
	closed   bool
}

// NewFileWatcher creates a watcher. A non-positive debounce uses
// DefaultDebounce; a nil logger discards.
func NewFileWatcher(debounce time.Duration, logger *log.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &FileWatcher{
		watcher:  w,
		files:    make(map[string]func(string)),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Watch registers callback for path. The callback receives the absolute
// path and runs on a timer goroutine.
func (fw *FileWatcher) Watch(path string, callback func(string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, ok := fw.files[abs]; ok {
		fw.files[abs] = callback
		return nil
	}

	dir := filepath.Dir(abs)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	fw.dirs[dir]++
	fw.files[abs] = callback
	fw.logger.Debug("watching", "path", abs)
	return nil
}

// Unwatch stops reporting changes to path.
func (fw *FileWatcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, ok := fw.files[abs]; !ok {
		return nil
	}
	delete(fw.files, abs)
	if t, ok := fw.timers[abs]; ok {
		t.Stop()
		delete(fw.timers, abs)
	}

	dir := filepath.Dir(abs)
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		if err := fw.watcher.Remove(dir); err != nil {
			return fmt.Errorf("unwatch %s: %w", dir, err)
		}
	}
	return nil
}

// Start begins delivering events. It returns immediately.
func (fw *FileWatcher) Start() {
	go fw.loop()
}

func (fw *FileWatcher) loop() {
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			// Write covers in-place saves, Create and Rename cover replacement
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				fw.changed(filepath.Clean(event.Name))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "err", err)
		}
	}
}

// changed restarts the debounce timer for path.
func (fw *FileWatcher) changed(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, ok := fw.files[path]
	if !ok || fw.closed {
		return
	}

	if t, ok := fw.timers[path]; ok {
		t.Stop()
	}
	fw.timers[path] = time.AfterFunc(fw.debounce, func() {
		fw.logger.Debug("file changed", "path", path)
		callback(path)
	})
}

// Close stops the watcher and cancels pending callbacks.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	for _, t := range fw.timers {
		t.Stop()
	}
	fw.timers = make(map[string]*time.Timer)
	close(fw.done)
	fw.mu.Unlock()

	return fw.watcher.Close()
}
