// Package watcher monitors a flow document file and reports debounced
// change notifications, backing the CLI's watch mode.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher monitors one file for changes.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)

	mu        sync.RWMutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	started   bool
	done      chan struct{}
	changeCh  chan struct{}
}

// New creates a watcher for the given path.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     absPath,
		debounce: DefaultDebounceDuration,
		onChange: func() {},
		onError:  func(error) {},
		changeCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. The containing directory is watched rather
// than the file itself, so atomic save-by-rename still notifies.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}

	w.fsWatcher = fsw
	w.done = make(chan struct{})
	w.started = true
	go w.watch(fsw.Events, fsw.Errors)
	return nil
}

// Stop stops watching. The change channel stays open; pending debounced
// notifications are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	close(w.done)
	_ = w.fsWatcher.Close()
	w.fsWatcher = nil
	w.debouncer.Cancel()
	w.started = false
}

// Changed returns a channel that receives after each debounced change,
// as an alternative to the OnChange callback.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) watch(events chan fsnotify.Event, errs chan error) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notifyChange)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// notifyChange invokes the callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}

	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
