// Package watcher reports when a single document changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before a change is reported
const DefaultDebounce = 500 * time.Millisecond

// FileWatcher watches one file. Editors often replace files instead of
// writing in place, so the parent directory is watched and events are
// filtered by name.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
}

func New(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &FileWatcher{watcher: w, path: abs, debounce: debounce}, nil
}

// Path is the absolute path being watched
func (w *FileWatcher) Path() string {
	return w.path
}

// Watch emits the file's path each time it settles after a change. The
// channel closes when ctx ends or the watcher is stopped.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan string, error) {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	changes := make(chan string, 1)

	go func() {
		defer close(changes)

		timer := time.NewTimer(w.debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				timer.Reset(w.debounce)

			case <-timer.C:
				select {
				case changes <- w.path:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

// Stop stops the watcher
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}
