// Package watch reports filesystem changes under a directory tree as
// classified, debounced events.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/dirsearch/internal/config"
	"github.com/standardbeagle/dirsearch/internal/debug"
	"github.com/standardbeagle/dirsearch/internal/search"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

// EventKind classifies a filesystem change
type EventKind string

const (
	FileCreated   EventKind = "file-created"
	FileDeleted   EventKind = "file-deleted"
	FileModified  EventKind = "file-modified"
	FileRenamed   EventKind = "file-renamed"
	FolderCreated EventKind = "folder-created"
	FolderDeleted EventKind = "folder-deleted"
	FolderRenamed EventKind = "folder-renamed"
)

// IsFolder reports whether the event concerns a directory
func (k EventKind) IsFolder() bool {
	return strings.HasPrefix(string(k), "folder-")
}

// Event is one debounced change. For renames Path is the old name; the new
// name arrives as a separate created event.
type Event struct {
	Kind EventKind `json:"kind"`
	Path string    `json:"path"`
}

// Options configure a Watcher
type Options struct {
	Debounce time.Duration
	// Target is "all", "files", "folders" or a single EventKind
	Target  string
	Exclude []string
}

// OptionsFromConfig derives watcher options from a loaded config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		Target:   cfg.Watch.Target,
		Exclude:  cfg.Exclude,
	}
}

// Matches reports whether events of kind k pass the target filter
func (o Options) Matches(k EventKind) bool {
	switch o.Target {
	case "", "all":
		return true
	case "files":
		return !k.IsFolder()
	case "folders":
		return k.IsFolder()
	default:
		return string(k) == o.Target
	}
}

// Watcher monitors a directory tree and delivers batches of events
type Watcher struct {
	watcher   *fsnotify.Watcher
	root      string
	opts      Options
	filter    *search.PathFilter
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// dirs holds every watched directory so removals and renames, whose
	// paths no longer exist, can still be classified. Owned by the event
	// goroutine once Start returns.
	dirs map[string]struct{}

	eventsDelivered int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// New creates a watcher for root. Call SetCallback and Start to begin.
func New(root string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:   fsw,
		root:      abs,
		opts:      opts,
		filter:    search.NewPathFilter(abs, opts.Exclude),
		debouncer: newEventDebouncer(opts.Debounce),
		ctx:       ctx,
		cancel:    cancel,
		dirs:      make(map[string]struct{}),
	}
	return w, nil
}

// Root returns the absolute watched directory
func (w *Watcher) Root() string {
	return w.root
}

// SetCallback sets the function receiving each debounced batch. Batches are
// sorted by path and delivered from a timer goroutine, one at a time.
func (w *Watcher) SetCallback(fn func([]Event)) {
	w.debouncer.setCallback(func(events []Event) {
		w.incrementStats(int64(len(events)), 0)
		fn(events)
	})
}

// Start adds watches for the whole tree and begins processing events
func (w *Watcher) Start() error {
	debug.LogWatch("Starting watcher for directory: %s\n", w.root)

	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	debug.LogWatch("Watcher started with %d directories\n", len(w.dirs))

	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop ends event processing. Events still inside the debounce window are dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	w.debouncer.stop()

	if err := w.watcher.Close(); err != nil {
		log.Printf("Error closing fsnotify watcher: %v", err)
	}

	w.wg.Wait()
	debug.LogWatch("Watcher stopped\n")
	return nil
}

// Run starts the watcher and blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

// addWatches recursively adds watches to every non-excluded directory
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return filepath.SkipDir
		}
		if visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if !w.filter.ShouldSearchDirectory(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
			return nil
		}
		w.dirs[path] = struct{}{}
		return nil
	})
}

// processEvents processes filesystem events from fsnotify
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.incrementStats(0, 1)
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleEvent classifies a single fsnotify event and hands it to the debouncer
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received %v for %s\n", event.Op, path)

	kind, ok := w.classify(event)
	if !ok {
		return
	}

	if kind.IsFolder() {
		if !w.filter.ShouldSearchDirectory(path) {
			return
		}
	} else if !w.filter.ShouldSearchFile(path) {
		return
	}

	if kind == FolderCreated {
		// New subtrees need their own watches; anything created inside them
		// before the watch lands is missed, as with any fsnotify consumer.
		if err := w.addWatches(path); err != nil {
			log.Printf("Warning: failed to add watch for new directory %s: %v", path, err)
		}
	}

	if !w.opts.Matches(kind) {
		return
	}
	w.debouncer.addEvent(Event{Kind: kind, Path: pathutil.Normalize(path)})
}

// classify maps an fsnotify operation onto an EventKind. Created paths are
// stat'ed; removed and renamed paths are classified by the watched-directory set.
func (w *Watcher) classify(event fsnotify.Event) (EventKind, bool) {
	path := event.Name

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Lstat(path)
		if err != nil {
			return "", false
		}
		if info.IsDir() {
			return FolderCreated, true
		}
		return FileCreated, true

	case event.Has(fsnotify.Remove):
		if w.forgetDir(path) {
			return FolderDeleted, true
		}
		return FileDeleted, true

	case event.Has(fsnotify.Rename):
		if w.forgetDir(path) {
			return FolderRenamed, true
		}
		return FileRenamed, true

	case event.Has(fsnotify.Write):
		if _, isDir := w.dirs[path]; isDir {
			return "", false
		}
		return FileModified, true
	}
	return "", false
}

// forgetDir drops path and everything under it from the watched set,
// reporting whether path itself was a watched directory
func (w *Watcher) forgetDir(path string) bool {
	_, was := w.dirs[path]
	if !was {
		return false
	}
	prefix := path + string(filepath.Separator)
	for d := range w.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
			// fsnotify drops watches on removal itself; renames keep them
			_ = w.watcher.Remove(d)
		}
	}
	return true
}

// eventDebouncer batches events so bursts of writes surface once
type eventDebouncer struct {
	events   map[string]Event
	mutex    sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	callback func([]Event)
	// flushMu serialises callbacks when a flush overlaps the next timer
	flushMu sync.Mutex
}

func newEventDebouncer(debounce time.Duration) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]Event),
		debounce: debounce,
	}
}

func (d *eventDebouncer) setCallback(fn func([]Event)) {
	d.mutex.Lock()
	d.callback = fn
	d.mutex.Unlock()
}

// addEvent records the event and restarts the debounce timer. A create
// followed by writes stays a create, and a folder event is not downgraded by
// the duplicate that inotify reports for the directory itself.
func (d *eventDebouncer) addEvent(ev Event) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.events[ev.Path]; ok {
		switch {
		case prev.Kind == FileCreated && ev.Kind == FileModified:
			ev = prev
		case prev.Kind.IsFolder() && !ev.Kind.IsFolder():
			ev = prev
		}
	}
	d.events[ev.Path] = ev

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]Event)
	d.mutex.Unlock()

	// wait out an in-flight callback
	d.flushMu.Lock()
	defer d.flushMu.Unlock()
}

// flush delivers all accumulated events in path order
func (d *eventDebouncer) flush() {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mutex.Lock()
	if d.stopped {
		d.mutex.Unlock()
		return
	}
	pending := d.events
	d.events = make(map[string]Event)
	callback := d.callback
	d.mutex.Unlock()

	if len(pending) == 0 || callback == nil {
		return
	}

	batch := make([]Event, 0, len(pending))
	for _, ev := range pending {
		batch = append(batch, ev)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	debug.LogWatch("delivering %d debounced events\n", len(batch))
	callback(batch)
}

// incrementStats updates watch statistics
func (w *Watcher) incrementStats(events int64, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsDelivered += events
	w.errorCount += errors
	if events > 0 {
		w.lastEventTime = time.Now()
	}
}

// Stats returns current watch statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return Stats{
		EventsDelivered: w.eventsDelivered,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		IsActive:        w.ctx.Err() == nil,
	}
}

// Stats contains statistics about a watcher
type Stats struct {
	EventsDelivered int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}
