package config

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// debounceWindow coalesces the write bursts editors produce when
// saving a file.
const debounceWindow = 100 * time.Millisecond

// Handler receives the freshly reloaded settings.
type Handler func(Settings)

// Watcher reloads the settings file on change and hands the result to
// a handler. Editors often replace files by rename, so the watch is
// on the containing directory and events are filtered by name.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	path    string
	handler Handler
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher starts watching the settings file at path. The handler
// runs on the watcher's goroutine; it must not block for long.
func NewWatcher(path string, handler Handler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    abs,
		handler: handler,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(debounceWindow)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.reload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the next
			// successful event still reloads.
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		return
	}
	w.handler(s)
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
