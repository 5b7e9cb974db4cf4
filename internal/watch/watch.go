// Package watch reports changes to an image file on disk.
package watch

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces the burst of events an editor produces on save.
const DefaultDelay = 300 * time.Millisecond

// FileWatcher watches a single file and calls a callback after it changes.
// The parent directory is watched so atomic replace-on-save is seen too.
type FileWatcher struct {
	path  string
	delay time.Duration

	watcher  *fsnotify.Watcher
	onChange func(path string)
	stopCh   chan struct{}
	done     chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for path. Call OnChange and then Start.
func New(path string, delay time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{
		path:    abs,
		delay:   delay,
		watcher: w,
	}, nil
}

// OnChange sets the callback. It runs on a timer goroutine; callers that
// drive a non-concurrent editor should hand the path to their own loop.
func (f *FileWatcher) OnChange(callback func(path string)) {
	f.onChange = callback
}

// Path returns the absolute path being watched.
func (f *FileWatcher) Path() string {
	return f.path
}

// Start begins watching in a background goroutine.
func (f *FileWatcher) Start() {
	f.stopCh = make(chan struct{})
	f.done = make(chan struct{})
	go f.watchLoop()
}

// Stop stops watching and releases the underlying watcher. Pending
// callbacks are dropped.
func (f *FileWatcher) Stop() {
	if f.stopCh != nil {
		close(f.stopCh)
		<-f.done
		f.stopCh = nil
	}
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()
	f.watcher.Close()
}

func (f *FileWatcher) watchLoop() {
	defer close(f.done)
	for {
		select {
		case <-f.stopCh:
			return

		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				f.trigger()
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch %s: %v", f.path, err)
		}
	}
}

// trigger restarts the debounce timer.
func (f *FileWatcher) trigger() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Reset(f.delay)
		return
	}
	f.timer = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		f.timer = nil
		cb := f.onChange
		f.mu.Unlock()
		if cb != nil {
			cb(f.path)
		}
	})
}
