package search

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/standardbeagle/dirsearch/internal/config"
	"github.com/standardbeagle/dirsearch/internal/debug"
	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
	"github.com/standardbeagle/dirsearch/internal/types"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

// Options are the resource limits of an Engine
type Options struct {
	MaxFilesPerDir       int
	MaxResultsPerDir     int
	MaxTotalResults      int
	BatchSize            int
	ProgressInterval     time.Duration
	EarlyResultsInterval time.Duration
	MaxFileSize          int64
	DefaultTimeout       time.Duration
	PriorityDirs         []string
	Exclude              []string
	Include              []string
}

// DefaultOptions returns the built-in limits
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default(""))
}

// OptionsFromConfig derives engine limits from a loaded config
func OptionsFromConfig(cfg *config.Config) Options {
	s := cfg.Search
	return Options{
		MaxFilesPerDir:       s.MaxFilesPerDir,
		MaxResultsPerDir:     s.MaxResultsPerDir,
		MaxTotalResults:      s.MaxTotalResults,
		BatchSize:            s.BatchSize,
		ProgressInterval:     s.ProgressInterval(),
		EarlyResultsInterval: s.EarlyResultsInterval(),
		MaxFileSize:          s.MaxFileSize,
		DefaultTimeout:       time.Duration(s.DefaultTimeoutSec) * time.Second,
		PriorityDirs:         s.PriorityDirs,
		Exclude:              cfg.Exclude,
		Include:              cfg.Include,
	}
}

// SearchRequest describes one search session
type SearchRequest struct {
	Root  string
	Query types.SearchQuery
	// Timeout bounds the wall-clock time of the traversal. Zero or negative
	// selects the engine default.
	Timeout time.Duration
	// Exclude adds doublestar globs on top of the engine's configured ones
	Exclude []string
	// Include adds file globs to the engine's configured ones. When the
	// combined list is non-empty only matching files are scanned.
	Include []string
}

// Engine runs searches one session at a time. Only its cancel slot is shared
// between goroutines; everything else belongs to the running loop.
type Engine struct {
	opts Options
	slot CancelSlot
}

// NewEngine creates an engine with the given limits
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine limits
func (e *Engine) Options() Options {
	return e.opts
}

// CancelSearch cancels the session currently owning the cancel slot.
// Returns false when no search is active.
func (e *Engine) CancelSearch() bool {
	return e.slot.Take()
}

// CancelSession cancels the session with the given ID if it still owns the slot
func (e *Engine) CancelSession(id string) bool {
	return e.slot.TakeSession(id)
}

// ActiveSession returns the ID of the controllable session, or ""
func (e *Engine) ActiveSession() string {
	return e.slot.CurrentID()
}

// StartSearch walks req.Root and returns the matches found. Progress and
// early results are pushed to observer while the search runs.
//
// The only error returned is a *errors.ConfigError for an invalid pattern.
// Cancellation (CancelSearch or ctx), timeouts and the global result cap are
// outcomes reported through the response flags.
func (e *Engine) StartSearch(ctx context.Context, req SearchRequest, observer Observer) (*types.SearchResponse, error) {
	if observer == nil {
		observer = NopObserver{}
	}

	session := e.slot.Install()
	defer e.slot.release(session)
	if so, ok := observer.(SessionObserver); ok {
		so.OnSessionStart(session.ID)
	}

	matcher, err := CompileQuery(req.Query)
	if err != nil {
		debug.LogSearch("session %s: %v\n", session.ID, err)
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.DefaultTimeout
	}

	root := req.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	root = pathutil.Normalize(root)

	filter := NewPathFilter(root, append(append([]string{}, e.opts.Exclude...), req.Exclude...)).
		WithInclude(append(append([]string{}, e.opts.Include...), req.Include...))

	t := &traversal{
		opts:    e.opts,
		matcher: matcher,
		filter:  filter,
		session: session,
		ctx:     ctx,
		timeout: timeout,
		work:    newWorkList(),
		visited: visitedSet{},
	}
	t.start = time.Now()
	t.agg = newAggregator(e.opts, observer, t.start)
	t.work.PushBack(root)

	debug.LogSearch("session %s: searching %s for %q (regex=%v case=%v word=%v timeout=%s)\n",
		session.ID, root, req.Query.Pattern, req.Query.IsRegex, req.Query.IsCaseSensitive, req.Query.IsWholeWord, timeout)

	resp, reason := t.run()

	debug.LogSearch("session %s: finished (%s) files=%d dirs=%d denied=%d matches=%d results=%d in %dms\n",
		session.ID, reason, resp.Stats.FilesSearched, resp.Stats.DirectoriesSearched, t.denied,
		resp.Stats.TotalMatches, len(resp.Results), resp.ProcessingTimeMs)
	return resp, nil
}

// traversal is the state of one running session
type traversal struct {
	opts    Options
	matcher *Matcher
	filter  *PathFilter
	session *Session
	ctx     context.Context
	timeout time.Duration

	start   time.Time
	work    *workList
	visited visitedSet
	agg     *aggregator
	denied  int
}

func (t *traversal) run() (*types.SearchResponse, string) {
	curtailed := false
	reason := reasonExhausted

	for {
		dir, ok := t.work.PopFront()
		if !ok {
			break
		}

		if t.session.Cancelled() {
			return t.cancelled(), reasonCancelled
		}
		if t.ctx.Err() != nil {
			return t.cancelled(), reasonContext
		}

		now := time.Now()
		t.agg.MaybeFlush(now)

		if now.Sub(t.start) > t.timeout {
			curtailed, reason = true, reasonTimeout
			break
		}
		if t.agg.ResultCount() >= t.opts.MaxTotalResults {
			curtailed, reason = true, reasonCap
			break
		}

		if !t.filter.ShouldSearchDirectory(dir) || !t.visited.Insert(dir) {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			fe := dserrors.NewFileError("list", dir, err)
			if fe.IsPermission() {
				t.denied++
			}
			debug.LogSearch("%s\n", describeListFailure(fe))
			continue
		}

		dirResults, filesSearched := t.processEntries(dir, entries)
		t.agg.AddDirectoryResults(dirResults, filesSearched)
		t.agg.MaybeEmitProgress(time.Now())
	}

	t.agg.MergeResidual()
	return t.agg.Response(time.Now(), false, curtailed), reason
}

// processEntries scans the files of one directory and schedules its
// subdirectories. Normal subdirectories go to the front of the work list in
// enumeration order; priority ones follow so they are popped first.
func (t *traversal) processEntries(dir string, entries []os.DirEntry) ([]types.SearchFileResult, int) {
	var (
		results       []types.SearchFileResult
		normal        []string
		priority      []string
		filesSearched int
	)

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		switch {
		case mode.IsDir():
			if ShouldPrioritizeDirectory(path, t.opts.PriorityDirs) {
				priority = append(priority, path)
			} else {
				normal = append(normal, path)
			}
		case mode.IsRegular():
			if filesSearched >= t.opts.MaxFilesPerDir {
				continue
			}
			if !t.filter.ShouldSearchFile(path) || ShouldSkipFile(path, t.opts.MaxFileSize) {
				continue
			}
			filesSearched++
			if result := SearchFile(path, t.matcher); result != nil {
				results = append(results, *result)
			}
		}
	}

	for _, d := range normal {
		t.work.PushFront(d)
	}
	for _, d := range priority {
		t.work.PushFront(d)
	}
	return results, filesSearched
}

// describeListFailure words a directory listing failure for the debug log.
// Access denials are kept apart from directories removed mid-search.
func describeListFailure(fe *dserrors.FileError) string {
	switch {
	case fe.IsPermission():
		return "skipping unreadable directory: " + fe.Error()
	case fe.Type == dserrors.ErrorTypeFileNotFound:
		return "skipping vanished directory: " + fe.Error()
	default:
		return "skipping directory: " + fe.Error()
	}
}

func (t *traversal) cancelled() *types.SearchResponse {
	if dropped := t.agg.DiscardPending(); dropped > 0 {
		debug.LogSearch("session %s: discarded %d un-flushed results\n", t.session.ID, dropped)
	}
	return t.agg.Response(time.Now(), true, false)
}

var defaultEngine = NewEngine(DefaultOptions())

// Default returns the process-wide engine used by the package-level functions
func Default() *Engine {
	return defaultEngine
}

// StartSearch runs a search on the process-wide engine
func StartSearch(ctx context.Context, req SearchRequest, observer Observer) (*types.SearchResponse, error) {
	return defaultEngine.StartSearch(ctx, req, observer)
}

// CancelSearch cancels the search running on the process-wide engine
func CancelSearch() bool {
	return defaultEngine.CancelSearch()
}
