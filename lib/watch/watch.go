// Package watch reports changes to source files on disk, so cached units
// can be dropped while developing.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches directory trees. Directories created after Add are
// watched as they appear.
type Watcher struct {
	watcher *fsnotify.Watcher
	changed chan string
	errors  chan error
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	watched map[string]bool
}

// New starts a watcher. Close stops it.
func New() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher: fw,
		changed: make(chan string),
		errors:  make(chan error),
		done:    make(chan struct{}),
		watched: map[string]bool{},
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.changed)
	defer close(w.errors)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				// New directories join the watch.
				_ = w.Add(event.Name)
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				select {
				case w.changed <- strings.ReplaceAll(event.Name, "\\", "/"):
				case <-w.done:
					return
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// Add watches dir and every directory below it. Adding a file or an
// already watched directory is a no-op.
func (w *Watcher) Add(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watched[p] {
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			return err
		}
		w.watched[p] = true
		return nil
	})
}

// Changed delivers the slash-separated path of every file written,
// created, removed or renamed.
func (w *Watcher) Changed() <-chan string {
	return w.changed
}

// Errors delivers watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Run calls onChange for every change and onError for every error until
// ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(string), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-w.changed:
			if !ok {
				return
			}
			onChange(name)
		case err, ok := <-w.errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.watcher.Close()
}
