// Package watch reports debounced changes to the directory being browsed so
// the listing and preview can be rebuilt.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/glance/internal/debug"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher follows one directory at a time. A burst of events inside it
// produces a single notification once the directory has been quiet for
// the debounce interval.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	current string

	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
}

// New starts a watcher. debounce <= 0 uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		changes:  make(chan string, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Follow switches the watch to dir. Events for the previous directory that
// have not fired yet are dropped.
func (w *Watcher) Follow(dir string) error {
	dir = filepath.Clean(dir)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir == w.current {
		return nil
	}
	if w.current != "" {
		if err := w.fsw.Remove(w.current); err != nil {
			// the directory may already be gone
			debug.Log(debug.WATCH, "unwatch %s: %v", w.current, err)
		}
		w.current = ""
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.current = dir
	debug.Log(debug.WATCH, "watching %s", dir)
	return nil
}

// Current returns the followed directory.
func (w *Watcher) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Changes delivers the path of the followed directory after it changed.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var pendingDir string
	var lastEvent time.Time
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			cur := w.Current()
			if filepath.Dir(event.Name) != cur && event.Name != cur {
				continue
			}
			debug.Log(debug.WATCH, "%s %s", event.Op, event.Name)
			pendingDir = cur
			lastEvent = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Warn(debug.WATCH, "fsnotify: %v", err)

		case <-ticker.C:
			if pendingDir == "" || time.Since(lastEvent) < w.debounce {
				continue
			}
			if pendingDir != w.Current() {
				pendingDir = ""
				continue
			}
			select {
			case w.changes <- pendingDir:
				debug.Log(debug.WATCH, "changed: %s", pendingDir)
			default:
				// a notification is already waiting
			}
			pendingDir = ""
		}
	}
}

// Close stops the watcher and closes the Changes channel.
func (w *Watcher) Close() error {
	close(w.done)
	w.wg.Wait()
	close(w.changes)
	return w.fsw.Close()
}
