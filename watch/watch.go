// Package watch observes the pane's active folder for external changes
// and asks the pane to re-enumerate, debouncing bursts of filesystem
// events into a single refresh.
package watch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/redsalamander/folderview/logger"
)

// debounce coalesces event bursts (a copy of many files emits hundreds
// of notifications) into one refresh.
const debounce = 250 * time.Millisecond

// Watcher watches one folder at a time. onChange runs on the debounce
// timer's goroutine; callers marshal it onto their UI thread as needed.
type Watcher struct {
	log      *logger.Logger
	onChange func(folder string)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	folder  string
	timer   *time.Timer
	closed  bool
	done    chan struct{}
}

// New creates a folder watcher. It degrades gracefully: if the platform
// watcher cannot be created, SetFolder becomes a no-op and the pane
// simply loses automatic refresh.
func New(onChange func(folder string)) *Watcher {
	w := &Watcher{
		log:      logger.Get(),
		onChange: onChange,
		done:     make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warnf("folder watcher unavailable: %v", err)
		close(w.done)
		return w
	}
	w.watcher = fsw
	go w.loop()
	return w
}

// SetFolder switches the watched folder; an empty folder stops watching.
func (w *Watcher) SetFolder(folder string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil || w.closed || folder == w.folder {
		return
	}

	if w.folder != "" {
		_ = w.watcher.Remove(w.folder)
	}
	w.folder = folder
	if folder == "" {
		return
	}
	if err := w.watcher.Add(folder); err != nil {
		w.log.Warnf("watch %q: %v", folder, err)
		w.folder = ""
	}
}

// Close stops the watcher and its goroutine.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	fsw := w.watcher
	w.mu.Unlock()

	if fsw != nil {
		fsw.Close()
		<-w.done
	}
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
				w.scheduleRefresh()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("folder watcher: %v", err)
		}
	}
}

// scheduleRefresh arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.folder == "" {
		return
	}

	folder := w.folder
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		current := w.folder
		closed := w.closed
		w.mu.Unlock()
		if closed || current != folder {
			return
		}
		w.onChange(folder)
	})
}
