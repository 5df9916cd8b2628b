package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFileResult_RangeCount(t *testing.T) {
	r := SearchFileResult{
		Path: "a.txt",
		Matches: []SearchMatch{
			{Line: 1, MatchRanges: []MatchRange{{0, 3}, {8, 11}}},
			{Line: 4, MatchRanges: []MatchRange{{2, 5}}},
		},
	}
	assert.Equal(t, 3, r.RangeCount())
	assert.Equal(t, 0, (&SearchFileResult{}).RangeCount())
}

func TestMatchRange(t *testing.T) {
	r := MatchRange{4, 7}
	assert.Equal(t, 4, r.Start())
	assert.Equal(t, 7, r.End())

	// Ranges travel as two-element arrays
	data, err := json.Marshal(SearchMatch{Line: 1, Content: "say foo", MatchRanges: []MatchRange{r}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"line":1,"content":"say foo","match_ranges":[[4,7]]}`, string(data))
}

func TestSearchStats_Progress(t *testing.T) {
	s := SearchStats{FilesSearched: 10, TotalMatches: 3, DirectoriesSearched: 2}
	assert.Equal(t, SearchProgress{
		FilesSearched:       10,
		DirectoriesSearched: 2,
		TotalMatches:        3,
		ProcessingTimeMs:    42,
	}, s.Progress(42))
}
