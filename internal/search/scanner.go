package search

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/dirsearch/internal/debug"
	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
	"github.com/standardbeagle/dirsearch/internal/types"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

// SearchFile reads path and returns its matching lines, or nil when the file
// is unreadable, is not valid UTF-8, or has no matching line.
func SearchFile(path string, m *Matcher) *types.SearchFileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		debug.LogSearch("%v\n", dserrors.NewFileError("read", path, err))
		return nil
	}
	if !utf8.Valid(content) {
		return nil
	}

	matches := scanLines(string(content), m)
	if len(matches) == 0 {
		return nil
	}
	return &types.SearchFileResult{
		Path:    pathutil.Normalize(path),
		Matches: matches,
	}
}

// scanLines splits text on \n, trims a trailing \r per line, and collects
// every line with at least one match. A final empty line after a trailing
// newline is not a line.
func scanLines(text string, m *Matcher) []types.SearchMatch {
	var matches []types.SearchMatch
	lineNum := 0
	for len(text) > 0 {
		lineNum++
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			text = ""
		}
		line = strings.TrimSuffix(line, "\r")

		ranges := m.FindAll(line)
		if len(ranges) == 0 {
			continue
		}
		matches = append(matches, types.SearchMatch{
			Line:        lineNum,
			Content:     line,
			MatchRanges: ranges,
		})
	}
	return matches
}
