// Package display renders search responses and progress for the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/standardbeagle/dirsearch/internal/types"
)

// ResultFormatter formats search responses for display
type ResultFormatter struct {
	options FormatterOptions

	path  *color.Color
	line  *color.Color
	match *color.Color
	faint *color.Color
	warn  *color.Color
}

// FormatterOptions controls result formatting
type FormatterOptions struct {
	Format    string // "text", "json", "compact"
	Color     bool   // Highlight paths and match ranges
	ShowStats bool   // Append the summary line
	Indent    string // Indentation of match lines under a file
}

// NewResultFormatter creates a new result formatter
func NewResultFormatter(options FormatterOptions) *ResultFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}

	rf := &ResultFormatter{
		options: options,
		path:    color.New(color.FgMagenta, color.Bold),
		line:    color.New(color.FgGreen),
		match:   color.New(color.FgRed, color.Bold),
		faint:   color.New(color.Faint),
		warn:    color.New(color.FgYellow),
	}
	// Per-formatter switch so tests and pipes do not depend on color.NoColor
	for _, c := range []*color.Color{rf.path, rf.line, rf.match, rf.faint, rf.warn} {
		if options.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return rf
}

// ColorEnabled reports whether f is a terminal that should get colored output.
// NO_COLOR disables color regardless.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Format formats a search response for display
func (rf *ResultFormatter) Format(resp *types.SearchResponse) string {
	if resp == nil {
		return "No search results available"
	}

	switch rf.options.Format {
	case "json":
		return rf.formatJSON(resp)
	case "compact":
		return rf.formatCompact(resp)
	default:
		return rf.formatText(resp)
	}
}

// formatText groups matches under a file header, grep --heading style
func (rf *ResultFormatter) formatText(resp *types.SearchResponse) string {
	var sb strings.Builder

	for i, file := range resp.Results {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(rf.path.Sprint(file.Path))
		sb.WriteString("\n")
		for _, m := range file.Matches {
			sb.WriteString(rf.options.Indent)
			sb.WriteString(rf.line.Sprintf("%d", m.Line))
			sb.WriteString(": ")
			sb.WriteString(rf.Highlight(m.Content, m.MatchRanges))
			sb.WriteString("\n")
		}
	}

	if rf.options.ShowStats {
		if len(resp.Results) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(rf.Summary(resp))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatCompact emits one path:line:content row per matching line
func (rf *ResultFormatter) formatCompact(resp *types.SearchResponse) string {
	var sb strings.Builder
	for _, file := range resp.Results {
		for _, m := range file.Matches {
			sb.WriteString(rf.path.Sprint(file.Path))
			sb.WriteString(":")
			sb.WriteString(rf.line.Sprintf("%d", m.Line))
			sb.WriteString(":")
			sb.WriteString(rf.Highlight(m.Content, m.MatchRanges))
			sb.WriteString("\n")
		}
	}
	if rf.options.ShowStats {
		sb.WriteString(rf.Summary(resp))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (rf *ResultFormatter) formatJSON(resp *types.SearchResponse) string {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data) + "\n"
}

// Highlight colors the byte ranges of content. Ranges are expected sorted and
// non-overlapping; anything out of bounds or behind the cursor is skipped.
func (rf *ResultFormatter) Highlight(content string, ranges []types.MatchRange) string {
	if len(ranges) == 0 || !rf.options.Color {
		return content
	}

	var sb strings.Builder
	pos := 0
	for _, r := range ranges {
		start, end := r.Start(), r.End()
		if start < pos || end > len(content) || start >= end {
			continue
		}
		sb.WriteString(content[pos:start])
		sb.WriteString(rf.match.Sprint(content[start:end]))
		pos = end
	}
	sb.WriteString(content[pos:])
	return sb.String()
}

// Summary describes the totals of a response in one line
func (rf *ResultFormatter) Summary(resp *types.SearchResponse) string {
	s := resp.Stats
	summary := fmt.Sprintf("%s %s in %s %s (searched %s files in %s directories, %s)",
		humanize.Comma(int64(s.TotalMatches)), plural(s.TotalMatches, "match", "matches"),
		humanize.Comma(int64(len(resp.Results))), plural(len(resp.Results), "file", "files"),
		humanize.Comma(int64(s.FilesSearched)),
		humanize.Comma(int64(s.DirectoriesSearched)),
		formatElapsed(resp.ProcessingTimeMs))

	switch {
	case resp.Cancelled:
		summary += " " + rf.warn.Sprint("[cancelled]")
	case resp.Curtailed:
		summary += " " + rf.warn.Sprint("[curtailed]")
	}
	return rf.faint.Sprint(summary)
}

// FormatProgress renders a progress snapshot as a single status line
func (rf *ResultFormatter) FormatProgress(p types.SearchProgress) string {
	return rf.faint.Sprintf("searching... %s files, %s directories, %s matches (%s)",
		humanize.Comma(int64(p.FilesSearched)),
		humanize.Comma(int64(p.DirectoriesSearched)),
		humanize.Comma(int64(p.TotalMatches)),
		formatElapsed(p.ProcessingTimeMs))
}

// FormatEvent renders one change event as "kind  path", colored by kind
func (rf *ResultFormatter) FormatEvent(kind, path string) string {
	c := rf.line
	switch {
	case strings.HasSuffix(kind, "-deleted"):
		c = rf.match
	case strings.HasSuffix(kind, "-modified"):
		c = rf.warn
	case strings.HasSuffix(kind, "-renamed"):
		c = rf.path
	}
	return c.Sprintf("%-14s", kind) + " " + path
}

// Faint dims s when color is enabled
func (rf *ResultFormatter) Faint(s string) string {
	return rf.faint.Sprint(s)
}

func formatElapsed(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return d.Round(10 * time.Millisecond).String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
