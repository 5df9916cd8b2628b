package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dirsearch/internal/types"
)

// recordingObserver captures every event in order
type recordingObserver struct {
	progress []types.SearchProgress
	early    []types.SearchResponse
}

func (r *recordingObserver) OnProgress(p types.SearchProgress)     { r.progress = append(r.progress, p) }
func (r *recordingObserver) OnEarlyResults(e types.SearchResponse) { r.early = append(r.early, e) }

func fileResults(dir string, n, rangesEach int) []types.SearchFileResult {
	out := make([]types.SearchFileResult, n)
	for i := range out {
		ranges := make([]types.MatchRange, rangesEach)
		for j := range ranges {
			ranges[j] = types.MatchRange{j * 4, j*4 + 3}
		}
		out[i] = types.SearchFileResult{
			Path:    fmt.Sprintf("%s/f%03d.txt", dir, i),
			Matches: []types.SearchMatch{{Line: 1, Content: "foo foo", MatchRanges: ranges}},
		}
	}
	return out
}

func testAggregator(obs Observer, start time.Time) *aggregator {
	opts := DefaultOptions()
	return newAggregator(opts, obs, start)
}

func TestAggregator_PerDirectoryTruncation(t *testing.T) {
	start := time.Now()
	a := testAggregator(&recordingObserver{}, start)

	a.AddDirectoryResults(fileResults("/d", 1000, 1), 300)
	a.MergeResidual()

	resp := a.Response(start, false, false)
	assert.Len(t, resp.Results, 20)
	assert.False(t, resp.Curtailed, "per-directory truncation never curtails")
	assert.Equal(t, 300, resp.Stats.FilesSearched)
	assert.Equal(t, 1, resp.Stats.DirectoriesSearched)
	assert.Equal(t, 20, resp.Stats.TotalMatches)
}

func TestAggregator_FlushOnBatchSize(t *testing.T) {
	start := time.Now()
	obs := &recordingObserver{}
	a := testAggregator(obs, start)

	a.AddDirectoryResults(fileResults("/a", 20, 2), 20)
	a.AddDirectoryResults(fileResults("/b", 20, 2), 20)
	assert.False(t, a.MaybeFlush(start), "40 pending is below the batch size")

	a.AddDirectoryResults(fileResults("/c", 20, 2), 20)
	require.True(t, a.MaybeFlush(start))

	require.Len(t, obs.early, 1)
	ev := obs.early[0]
	assert.Len(t, ev.Results, 60)
	assert.Equal(t, 120, ev.Stats.TotalMatches)
	assert.Equal(t, 3, ev.Stats.DirectoriesSearched)
	assert.False(t, ev.Cancelled)
	assert.False(t, ev.Curtailed)
	assert.Equal(t, 60, a.ResultCount())
}

func TestAggregator_FlushOnInterval(t *testing.T) {
	start := time.Now()
	obs := &recordingObserver{}
	a := testAggregator(obs, start)

	a.AddDirectoryResults(fileResults("/a", 1, 1), 1)
	assert.False(t, a.MaybeFlush(start.Add(100*time.Millisecond)))
	assert.True(t, a.MaybeFlush(start.Add(500*time.Millisecond)))

	a.AddDirectoryResults(fileResults("/b", 1, 1), 1)
	assert.False(t, a.MaybeFlush(start.Add(900*time.Millisecond)), "timer restarts at the last flush")
	assert.True(t, a.MaybeFlush(start.Add(1000*time.Millisecond)))

	require.Len(t, obs.early, 2)
	assert.Len(t, obs.early[0].Results, 1)
	assert.Len(t, obs.early[1].Results, 2, "early results carry the full accumulated set")
	assert.Equal(t, int64(1000), obs.early[1].ProcessingTimeMs)
}

func TestAggregator_NoFlushWhenEmpty(t *testing.T) {
	start := time.Now()
	obs := &recordingObserver{}
	a := testAggregator(obs, start)

	assert.False(t, a.MaybeFlush(start.Add(time.Hour)))
	assert.Empty(t, obs.early)
}

func TestAggregator_EarlyResultsAreSnapshots(t *testing.T) {
	start := time.Now()
	obs := &recordingObserver{}
	a := testAggregator(obs, start)

	a.AddDirectoryResults(fileResults("/a", 1, 1), 1)
	require.True(t, a.MaybeFlush(start.Add(time.Second)))
	a.AddDirectoryResults(fileResults("/b", 1, 1), 1)
	a.MergeResidual()

	assert.Len(t, obs.early[0].Results, 1, "later merges must not leak into an emitted snapshot")
}

func TestAggregator_Progress(t *testing.T) {
	start := time.Now()
	obs := &recordingObserver{}
	a := testAggregator(obs, start)

	a.AddDirectoryResults(fileResults("/a", 2, 1), 7)
	assert.False(t, a.MaybeEmitProgress(start.Add(100*time.Millisecond)))
	assert.True(t, a.MaybeEmitProgress(start.Add(250*time.Millisecond)))
	assert.False(t, a.MaybeEmitProgress(start.Add(400*time.Millisecond)))

	require.Len(t, obs.progress, 1)
	p := obs.progress[0]
	assert.Equal(t, 7, p.FilesSearched)
	assert.Equal(t, 1, p.DirectoriesSearched)
	assert.Equal(t, int64(250), p.ProcessingTimeMs)
}

func TestAggregator_DiscardPending(t *testing.T) {
	start := time.Now()
	a := testAggregator(&recordingObserver{}, start)

	a.AddDirectoryResults(fileResults("/a", 3, 1), 3)
	require.True(t, a.MaybeFlush(start.Add(time.Second)))
	a.AddDirectoryResults(fileResults("/b", 4, 1), 4)

	assert.Equal(t, 4, a.DiscardPending())
	resp := a.Response(start, true, false)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.Stats.TotalMatches)
	assert.Equal(t, 7, resp.Stats.FilesSearched)
	assert.True(t, resp.Cancelled)
}

func TestAggregator_EmptyResponseHasNonNilResults(t *testing.T) {
	start := time.Now()
	a := testAggregator(&recordingObserver{}, start)
	resp := a.Response(start, false, false)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}
