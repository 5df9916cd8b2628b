package search

import (
	"slices"
	"time"

	"github.com/standardbeagle/dirsearch/internal/types"
)

// aggregator owns the accumulated results, the pending micro-batch and the
// two emission timers of one session. It is used by the traversal loop only.
//
// Stats.TotalMatches counts the ranges of merged results only, so every
// response it appears in satisfies TotalMatches == sum of returned ranges,
// including cancelled responses that drop the pending batch.
type aggregator struct {
	observer Observer

	maxResultsPerDir     int
	batchSize            int
	progressInterval     time.Duration
	earlyResultsInterval time.Duration

	start            time.Time
	lastProgress     time.Time
	lastEarlyResults time.Time

	results []types.SearchFileResult
	pending []types.SearchFileResult
	stats   types.SearchStats
}

func newAggregator(opts Options, observer Observer, start time.Time) *aggregator {
	return &aggregator{
		observer:             observer,
		maxResultsPerDir:     opts.MaxResultsPerDir,
		batchSize:            opts.BatchSize,
		progressInterval:     opts.ProgressInterval,
		earlyResultsInterval: opts.EarlyResultsInterval,
		start:                start,
		lastProgress:         start,
		lastEarlyResults:     start,
	}
}

// AddDirectoryResults records one completed directory pass. Results beyond
// the per-directory cap are dropped without marking the search curtailed.
func (a *aggregator) AddDirectoryResults(dirResults []types.SearchFileResult, filesSearched int) {
	if len(dirResults) > a.maxResultsPerDir {
		dirResults = dirResults[:a.maxResultsPerDir]
	}
	a.pending = append(a.pending, dirResults...)
	a.stats.FilesSearched += filesSearched
	a.stats.DirectoriesSearched++
}

// MaybeFlush merges the pending batch and emits an early-results snapshot
// when the batch is full or the early-results interval has elapsed.
func (a *aggregator) MaybeFlush(now time.Time) bool {
	if len(a.pending) == 0 {
		return false
	}
	if len(a.pending) < a.batchSize && now.Sub(a.lastEarlyResults) < a.earlyResultsInterval {
		return false
	}

	a.merge()
	a.lastEarlyResults = now
	a.observer.OnEarlyResults(types.SearchResponse{
		Results:          slices.Clone(a.results),
		Stats:            a.stats,
		ProcessingTimeMs: a.elapsedMs(now),
	})
	return true
}

// MaybeEmitProgress emits a progress snapshot when its interval has elapsed
func (a *aggregator) MaybeEmitProgress(now time.Time) bool {
	if now.Sub(a.lastProgress) < a.progressInterval {
		return false
	}
	a.lastProgress = now
	a.observer.OnProgress(a.stats.Progress(a.elapsedMs(now)))
	return true
}

// MergeResidual folds any pending results into the final list without an
// observer emission. Used on natural, timeout and cap termination.
func (a *aggregator) MergeResidual() {
	a.merge()
}

// DiscardPending drops un-flushed results. Used on cancellation.
func (a *aggregator) DiscardPending() int {
	n := len(a.pending)
	a.pending = nil
	return n
}

// ResultCount is the number of merged results, compared against the global cap
func (a *aggregator) ResultCount() int {
	return len(a.results)
}

func (a *aggregator) merge() {
	for i := range a.pending {
		a.stats.TotalMatches += a.pending[i].RangeCount()
	}
	a.results = append(a.results, a.pending...)
	a.pending = nil
}

func (a *aggregator) elapsedMs(now time.Time) int64 {
	return now.Sub(a.start).Milliseconds()
}

// Response builds the terminal response
func (a *aggregator) Response(now time.Time, cancelled, curtailed bool) *types.SearchResponse {
	results := a.results
	if results == nil {
		results = []types.SearchFileResult{}
	}
	return &types.SearchResponse{
		Results:          results,
		Stats:            a.stats,
		Cancelled:        cancelled,
		Curtailed:        curtailed,
		ProcessingTimeMs: a.elapsedMs(now),
	}
}
