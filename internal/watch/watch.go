// Package watch reports external changes to the open document.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/markpad/internal/util"
)

var watchLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	watchLogger = l
}

const DefaultDelay = 200 * time.Millisecond

type EventKind int

const (
	Changed EventKind = iota
	Removed
)

func (k EventKind) String() string {
	if k == Removed {
		return "removed"
	}
	return "changed"
}

type Event struct {
	Kind    EventKind
	Path    string
	Content []byte
}

// Watcher watches the directory of one file, so editors that save by
// renaming a temp file over it are still seen.
type Watcher struct {
	path   string
	fsw    *fsnotify.Watcher
	events chan Event
	delay  time.Duration

	mu     sync.Mutex
	known  string
	timer  *time.Timer
	last   fsnotify.Op
	closed bool
}

func New(path string, delay time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if delay <= 0 {
		delay = DefaultDelay
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
		path:   abs,
		fsw:    fsw,
		events: make(chan Event, 8),
		delay:  delay,
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Acknowledge records content the editor itself loaded or wrote, so the
// resulting file event is not reported back as an external change.
func (w *Watcher) Acknowledge(content []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.known = util.ContentHash(content)
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		close(w.events)
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
				continue
			}

			w.mu.Lock()
			w.last = event.Op
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.delay, w.fire)
			w.mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			watchLogger.Warn().Err(err).Str("path", w.path).Msg("File watcher error")
		}
	}
}

func (w *Watcher) fire() {
	content, err := os.ReadFile(w.path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	var ev Event
	switch {
	case err != nil && w.last&(fsnotify.Remove|fsnotify.Rename) != 0:
		ev = Event{Kind: Removed, Path: w.path}
	case err != nil:
		watchLogger.Warn().Err(err).Str("path", w.path).Msg("Could not read changed file")
		return
	default:
		hash := util.ContentHash(content)
		if hash == w.known {
			return
		}
		w.known = hash
		ev = Event{Kind: Changed, Path: w.path, Content: content}
	}

	select {
	case w.events <- ev:
		watchLogger.Debug().Str("path", w.path).Stringer("kind", ev.Kind).Msg("External change")
	default:
	}
}
