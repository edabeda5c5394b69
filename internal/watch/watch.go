// Package watch reloads the model when files under source_data/ change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceMs is the quiet period applied when none is configured
const DefaultDebounceMs = 500

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event represents a file system event on a source file
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ReloadFunc is invoked once per settled batch of source changes
type ReloadFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Dir is the source directory to watch, including its per-source
	// subdirectories.
	Dir string

	// DebounceMs is the quiet period before a batch of events triggers a
	// reload. Zero means DefaultDebounceMs.
	DebounceMs int

	Logger  *logging.Logger
	Metrics *metrics.Registry

	// Reload is called after the debounce window closes. Errors are logged,
	// never fatal: the previous model stays live until a reload succeeds.
	Reload ReloadFunc
}

// Watcher watches the source directory and triggers debounced reloads.
type Watcher struct {
	dir        string
	debounceMs int
	logger     *logging.Logger
	metrics    *metrics.Registry
	reload     ReloadFunc
	debouncer  *Debouncer
	fsw        *fsnotify.Watcher

	mu      sync.Mutex
	ctx     context.Context
	dirs    map[string]struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher. Call Start to begin receiving events.
func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	debounceMs := opts.DebounceMs
	if debounceMs <= 0 {
		debounceMs = DefaultDebounceMs
	}

	w := &Watcher{
		dir:        opts.Dir,
		debounceMs: debounceMs,
		logger:     logger,
		metrics:    opts.Metrics,
		reload:     opts.Reload,
		fsw:        fsw,
		dirs:       make(map[string]struct{}),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	w.debouncer = NewDebouncer(time.Duration(debounceMs)*time.Millisecond, w.handleBatch)
	return w, nil
}

// Start begins watching. The directory is created if missing so a fresh
// workspace can start in watch mode before the first fetch.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.ctx = ctx
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}

	// Pick up per-source subdirectories that already exist.
	if entries, err := os.ReadDir(w.dir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				w.watchDir(filepath.Join(w.dir, entry.Name()))
			}
		}
	}

	go w.run(ctx)

	w.logger.Info("Watching source directory", map[string]interface{}{
		"dir":        w.dir,
		"debounceMs": w.debounceMs,
	})
	return nil
}

// Stop stops watching and drops any pending reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debouncer.Cancel()

	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("Error closing watcher", map[string]interface{}{
			"error": err.Error(),
		})
	}
	w.logger.Info("Source watcher stopped", nil)
}

// WatchedDirs returns the directories currently being watched
func (w *Watcher) WatchedDirs() []string {
	return w.fsw.WatchList()
}

// run is the main event loop
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// handleEvent classifies one fsnotify event. New directories are added to the
// watch set, removed ones dropped; chmod-only events and files outside the
// source formats are ignored.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.watchDir(ev.Name)
			return
		}
	}
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.forgetDir(ev.Name) {
		w.record(Event{Type: EventDelete, Path: ev.Name, Timestamp: time.Now()})
		return
	}

	if !relevantFile(ev.Name) {
		return
	}

	var typ EventType
	switch {
	case ev.Op&fsnotify.Create != 0:
		typ = EventCreate
	case ev.Op&fsnotify.Write != 0:
		typ = EventModify
	case ev.Op&fsnotify.Remove != 0:
		typ = EventDelete
	case ev.Op&fsnotify.Rename != 0:
		typ = EventRename
	default:
		return
	}
	w.record(Event{Type: typ, Path: ev.Name, Timestamp: time.Now()})
}

// record counts the event and feeds it into the debounce window
func (w *Watcher) record(ev Event) {
	if w.metrics != nil {
		w.metrics.Metrics.WatcherEventsTotal.Inc()
	}
	w.logger.Debug("Source event", map[string]interface{}{
		"type": ev.Type.String(),
		"path": ev.Path,
	})
	w.debouncer.Add(ev)
}

// handleBatch fires once per settled batch of events
func (w *Watcher) handleBatch(events []Event) {
	w.logger.Info("Source change detected", map[string]interface{}{
		"events": len(events),
		"first":  events[0].Path,
	})

	if w.reload == nil {
		return
	}
	if err := w.reload(w.context()); err != nil {
		w.logger.Error("Reload after source change failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	w.logger.Info("Model reloaded from changed sources", map[string]interface{}{
		"events": len(events),
	})
}

func (w *Watcher) watchDir(path string) {
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("Failed to watch directory", map[string]interface{}{
			"dir":   path,
			"error": err.Error(),
		})
		return
	}
	w.mu.Lock()
	w.dirs[path] = struct{}{}
	w.mu.Unlock()
	w.logger.Debug("Watching source subdirectory", map[string]interface{}{
		"dir": path,
	})
}

// forgetDir reports whether path was a watched subdirectory and drops it
func (w *Watcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[path]; !ok {
		return false
	}
	delete(w.dirs, path)
	return true
}

func (w *Watcher) context() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx != nil {
		return w.ctx
	}
	return context.Background()
}

// relevantFile reports whether a path holds source material: LinkML YAML,
// generated JSON, or variable spreadsheets.
func relevantFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".tsv", ".csv":
		return true
	}
	return false
}
