package search

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/dirsearch/internal/debug"
	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
)

const probeChunkSize = 32 * 1024

// ShouldSkipFile reports whether path must never be scanned: it is larger
// than maxSize or contains a null byte. Probe failures never cause a skip;
// the scanner decides what to do with an unreadable file.
func ShouldSkipFile(path string, maxSize int64) bool {
	return IsTooLarge(path, maxSize) || IsBinaryFile(path)
}

// IsBinaryFile reports whether any byte of the file is zero
func IsBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		logProbeFailure("open", path, err)
		return false
	}
	defer f.Close()

	buf := make([]byte, probeChunkSize)
	for {
		n, err := f.Read(buf)
		if bytes.IndexByte(buf[:n], 0) >= 0 {
			return true
		}
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			logProbeFailure("read", path, err)
			return false
		}
	}
}

// IsTooLarge reports whether the file size exceeds maxSize
func IsTooLarge(path string, maxSize int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		logProbeFailure("stat", path, err)
		return false
	}
	return info.Size() > maxSize
}

func logProbeFailure(op, path string, err error) {
	debug.LogSearch("%v\n", dserrors.NewFileError(op, path, err))
}

// ShouldPrioritizeDirectory reports whether the base name of path is one of
// the priority directory names
func ShouldPrioritizeDirectory(path string, priority []string) bool {
	base := filepath.Base(path)
	for _, name := range priority {
		if base == name {
			return true
		}
	}
	return false
}

// PathFilter applies doublestar globs relative to a search root. Exclude
// globs prune directories and files; include globs, when present, restrict
// which files are scanned but never stop traversal. The zero value accepts
// everything.
type PathFilter struct {
	root     string
	patterns []string
	include  []string
}

// NewPathFilter creates a filter for root. Invalid patterns are dropped.
func NewPathFilter(root string, patterns []string) *PathFilter {
	return &PathFilter{root: root, patterns: validGlobs("exclude", patterns)}
}

// WithInclude returns a copy of f that only accepts files matching one of
// patterns. An empty list accepts every file.
func (f *PathFilter) WithInclude(patterns []string) *PathFilter {
	c := *f
	c.include = validGlobs("include", patterns)
	return &c
}

func validGlobs(kind string, patterns []string) []string {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			debug.LogSearch("ignoring invalid %s pattern %q\n", kind, p)
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

// ShouldSearchDirectory reports whether a directory should be traversed
func (f *PathFilter) ShouldSearchDirectory(path string) bool {
	return !f.excluded(path, true)
}

// ShouldSearchFile reports whether a file passes the exclude and include globs
func (f *PathFilter) ShouldSearchFile(path string) bool {
	return !f.excluded(path, false) && f.included(path)
}

func (f *PathFilter) included(path string) bool {
	if f == nil || len(f.include) == 0 {
		return true
	}
	rel := f.relative(path)
	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (f *PathFilter) relative(path string) string {
	rel := path
	if f.root != "" {
		if r, err := filepath.Rel(f.root, path); err == nil {
			rel = r
		}
	}
	return filepath.ToSlash(rel)
}

func (f *PathFilter) excluded(path string, isDir bool) bool {
	if f == nil || len(f.patterns) == 0 {
		return false
	}

	rel := f.relative(path)
	if rel == "." {
		return false
	}

	for _, pattern := range f.patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		// "dir/**" also names the directory itself
		if isDir && strings.HasSuffix(pattern, "/**") {
			if matched, _ := doublestar.Match(strings.TrimSuffix(pattern, "/**"), rel); matched {
				return true
			}
		}
	}
	return false
}
