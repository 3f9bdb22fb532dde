// Package watcher batches filesystem change notifications for the
// dashboard, so a burst of writes triggers one refresh instead of one
// per file.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one debounced batch of changed paths.
type Event struct {
	Paths []string
}

// Watcher follows directory trees recursively and emits debounced
// change batches on Events.
type Watcher struct {
	mu    sync.Mutex
	fw    *fsnotify.Watcher
	roots map[string]struct{}
	log   func(format string, args ...any)

	events   chan Event
	done     chan struct{}
	debounce time.Duration
}

// New starts a watcher. logger receives diagnostic lines and may be nil.
func New(logger func(string, ...any)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if logger == nil {
		logger = func(string, ...any) {}
	}
	w := &Watcher{
		fw:       fw,
		roots:    map[string]struct{}{},
		log:      logger,
		events:   make(chan Event, 1),
		done:     make(chan struct{}),
		debounce: 250 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Events delivers one Event per quiet period after changes. The channel
// holds a single pending batch; while the consumer is busy, later
// changes merge into it.
func (w *Watcher) Events() <-chan Event { return w.events }

// Add starts watching root and every directory below it. A nonexistent
// root is skipped with a log line so a not-yet-created project dir does
// not fail startup.
func (w *Watcher) Add(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.roots[root]; ok {
		return nil
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		w.log("watch: skipping missing dir %s", root)
		return nil
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.roots[root] = struct{}{}
	w.log("watching %s", root)
	return nil
}

// Close stops the watcher and closes Events.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

// loop reads raw notifications, folds them into a pending batch, and
// flushes the batch once no change has arrived for the debounce window.
func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := map[string]struct{}{}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		ev := Event{Paths: make([]string, 0, len(pending))}
		for p := range pending {
			ev.Paths = append(ev.Paths, p)
		}
		pending = map[string]struct{}{}

		select {
		case w.events <- ev:
		default:
			// Consumer still holds an undelivered batch; merge into it.
			select {
			case old := <-w.events:
				ev.Paths = append(ev.Paths, old.Paths...)
			default:
			}
			w.events <- ev
		}
	}

	for {
		select {
		case raw, ok := <-w.fw.Events:
			if !ok {
				flush()
				return
			}
			if raw.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch for recursion.
			if raw.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
					if err := w.fw.Add(raw.Name); err != nil {
						w.log("watch %s: %v", raw.Name, err)
					}
				}
			}
			pending[raw.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			flush()

		case err, ok := <-w.fw.Errors:
			if !ok {
				flush()
				return
			}
			w.log("watch error: %v", err)
		}
	}
}
