package search

import (
	"regexp"

	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
	"github.com/standardbeagle/dirsearch/internal/types"
)

// Matcher is a compiled, immutable query. It is safe for concurrent use.
type Matcher struct {
	query types.SearchQuery
	re    *regexp.Regexp
}

// CompileQuery turns a SearchQuery into a Matcher.
//
// Literal patterns have their metacharacters escaped. Whole-word queries are
// wrapped in \b anchors in both modes; note that RE2 word boundaries are
// ASCII-only. Case-insensitive queries get an inline (?i) flag. A pattern
// that does not compile yields a *errors.ConfigError for the "pattern" field.
func CompileQuery(q types.SearchQuery) (*Matcher, error) {
	pattern := q.Pattern
	if !q.IsRegex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if q.IsWholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !q.IsCaseSensitive {
		pattern = `(?i)` + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, dserrors.NewConfigError("pattern", q.Pattern, err)
	}
	return &Matcher{query: q, re: re}, nil
}

// Query returns the query the matcher was compiled from
func (m *Matcher) Query() types.SearchQuery {
	return m.query
}

// String returns the final compiled expression
func (m *Matcher) String() string {
	return m.re.String()
}

// MatchString reports whether line contains at least one match
func (m *Matcher) MatchString(line string) bool {
	return m.re.MatchString(line)
}

// FindAll returns the ordered, non-overlapping byte ranges matched in line.
// An empty pattern matches every position, producing empty ranges.
func (m *Matcher) FindAll(line string) []types.MatchRange {
	locs := m.re.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	ranges := make([]types.MatchRange, len(locs))
	for i, loc := range locs {
		ranges[i] = types.MatchRange{loc[0], loc[1]}
	}
	return ranges
}
