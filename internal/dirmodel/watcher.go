package dirmodel

import (
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses bursts of filesystem events into one batch.
const debounceDelay = 100 * time.Millisecond

// Watcher reports which watched directories changed on disk. Only the
// directories passed to Sync are watched; subdirectories are not added.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    *slog.Logger
	events    chan []string
	stop      chan struct{}

	mu       sync.Mutex
	watched  map[string]bool
	pending  map[string]bool
	debounce *time.Timer
	closed   bool
	stopOnce sync.Once
}

// NewWatcher starts a watcher with nothing watched yet.
func NewWatcher(logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		events:    make(chan []string, 1),
		stop:      make(chan struct{}),
		watched:   make(map[string]bool),
		pending:   make(map[string]bool),
	}
	go w.run()
	return w, nil
}

// Sync makes the watched set exactly dirs. Directories that cannot be
// watched are skipped.
func (w *Watcher) Sync(dirs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[d] = true
	}
	for d := range w.watched {
		if !want[d] {
			_ = w.fsWatcher.Remove(d)
			delete(w.watched, d)
		}
	}
	for d := range want {
		if w.watched[d] {
			continue
		}
		if err := w.fsWatcher.Add(d); err != nil {
			w.logger.Debug("watch failed", "dir", d, "error", err)
			continue
		}
		w.watched[d] = true
	}
}

// Watched returns the watched directories in sorted order.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watched))
	for d := range w.watched {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
		close(w.events)
	}()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.record(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", "error", err)
		}
	}
}

// record notes the changed directory and restarts the debounce timer.
func (w *Watcher) record(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(event.Name)
	if w.watched[event.Name] {
		// The watched directory itself was removed or renamed.
		dir = event.Name
	}
	w.pending[dir] = true

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || len(w.pending) == 0 {
		return
	}

	batch := make([]string, 0, len(w.pending))
	for d := range w.pending {
		batch = append(batch, d)
	}
	sort.Strings(batch)

	select {
	case w.events <- batch:
		w.pending = make(map[string]bool)
	default:
		// Receiver busy; keep pending for the next event.
	}
}

// Events delivers batches of changed directories.
func (w *Watcher) Events() <-chan []string {
	return w.events
}

// Stop shuts the watcher down. Later calls do nothing.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.fsWatcher.Close()
	})
}
