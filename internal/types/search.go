package types

// SearchQuery is the user-facing description of what to look for.
// It is compiled once per search and never mutated afterwards.
type SearchQuery struct {
	Pattern         string `json:"pattern"`
	IsRegex         bool   `json:"is_regex"`
	IsCaseSensitive bool   `json:"is_case_sensitive"`
	IsWholeWord     bool   `json:"is_whole_word"`
}

// MatchRange is a half-open byte range [start, end) within a line.
type MatchRange [2]int

// Start returns the inclusive start offset.
func (r MatchRange) Start() int { return r[0] }

// End returns the exclusive end offset.
func (r MatchRange) End() int { return r[1] }

// SearchMatch is one matching line within a file.
type SearchMatch struct {
	Line        int          `json:"line"` // 1-based
	Content     string       `json:"content"`
	MatchRanges []MatchRange `json:"match_ranges"`
}

// SearchFileResult groups the matching lines of a single file.
// Matches is never empty.
type SearchFileResult struct {
	Path    string        `json:"path"`
	Matches []SearchMatch `json:"matches"`
}

// RangeCount returns the number of match ranges across all lines of the file.
func (r *SearchFileResult) RangeCount() int {
	n := 0
	for _, m := range r.Matches {
		n += len(m.MatchRanges)
	}
	return n
}

// SearchStats are running counters for one search session.
// All fields are monotonically non-decreasing while the session runs.
type SearchStats struct {
	FilesSearched       int `json:"files_searched"`
	TotalMatches        int `json:"total_matches"`
	DirectoriesSearched int `json:"directories_searched"`
}

// SearchProgress is a transient snapshot emitted on a timer.
type SearchProgress struct {
	FilesSearched       int   `json:"files_searched"`
	DirectoriesSearched int   `json:"directories_searched"`
	TotalMatches        int   `json:"total_matches"`
	ProcessingTimeMs    int64 `json:"processing_time_ms"`
}

// SearchResponse is the terminal output of a search. It is also used as the
// early-results payload, in which case Cancelled and Curtailed are always false.
type SearchResponse struct {
	Results          []SearchFileResult `json:"results"`
	Stats            SearchStats        `json:"stats"`
	Cancelled        bool               `json:"cancelled"`
	Curtailed        bool               `json:"curtailed"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

// Progress converts the stats of a response into a progress snapshot.
func (s SearchStats) Progress(elapsedMs int64) SearchProgress {
	return SearchProgress{
		FilesSearched:       s.FilesSearched,
		DirectoriesSearched: s.DirectoriesSearched,
		TotalMatches:        s.TotalMatches,
		ProcessingTimeMs:    elapsedMs,
	}
}
