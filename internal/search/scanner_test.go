package search

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dirsearch/internal/types"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

func TestSearchFile_Basic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "test.txt"), []byte("Hello World\nnothing here\n"))

	m := mustCompile(t, types.SearchQuery{Pattern: "Hello", IsCaseSensitive: true})
	result := SearchFile(path, m)
	require.NotNil(t, result)

	assert.Equal(t, pathutil.Normalize(path), result.Path)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, 1, result.Matches[0].Line)
	assert.Equal(t, "Hello World", result.Matches[0].Content)
	assert.Equal(t, []types.MatchRange{{0, 5}}, result.Matches[0].MatchRanges)
}

func TestSearchFile_CaseInsensitiveLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "test.txt"), []byte("Hello World\nhello world\nHELLO WORLD"))

	result := SearchFile(path, mustCompile(t, types.SearchQuery{Pattern: "hello"}))
	require.NotNil(t, result)

	require.Len(t, result.Matches, 3)
	assert.Equal(t, 1, result.Matches[0].Line)
	assert.Equal(t, 2, result.Matches[1].Line)
	assert.Equal(t, 3, result.Matches[2].Line)
}

func TestSearchFile_WholeWordLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "test.txt"), []byte("hello\nhelloworld\nhello world\nhello!"))

	result := SearchFile(path, mustCompile(t, types.SearchQuery{Pattern: "hello", IsCaseSensitive: true, IsWholeWord: true}))
	require.NotNil(t, result)

	require.Len(t, result.Matches, 3)
	assert.Equal(t, 1, result.Matches[0].Line)
	assert.Equal(t, 3, result.Matches[1].Line)
	assert.Equal(t, 4, result.Matches[2].Line)
}

func TestSearchFile_MultipleMatchesPerLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "test.txt"), []byte("hello hello hello\nworld world"))

	result := SearchFile(path, mustCompile(t, types.SearchQuery{Pattern: "hello", IsCaseSensitive: true}))
	require.NotNil(t, result)

	require.Len(t, result.Matches, 1)
	assert.Len(t, result.Matches[0].MatchRanges, 3)
	assert.Equal(t, 3, result.RangeCount())
}

func TestSearchFile_CRLF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "dos.txt"), []byte("first\r\nsecond end\r\n"))

	result := SearchFile(path, mustCompile(t, types.SearchQuery{Pattern: "end$", IsRegex: true, IsCaseSensitive: true}))
	require.NotNil(t, result)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 2, result.Matches[0].Line)
	assert.Equal(t, "second end", result.Matches[0].Content)
}

func TestSearchFile_NoResult(t *testing.T) {
	dir := t.TempDir()
	m := mustCompile(t, types.SearchQuery{Pattern: "hello"})

	empty := writeFile(t, filepath.Join(dir, "empty.txt"), nil)
	assert.Nil(t, SearchFile(empty, m))

	noMatch := writeFile(t, filepath.Join(dir, "other.txt"), []byte("goodbye"))
	assert.Nil(t, SearchFile(noMatch, m))

	invalid := writeFile(t, filepath.Join(dir, "latin1.txt"), []byte("hello \xe9t\xe9"))
	assert.Nil(t, SearchFile(invalid, m), "invalid UTF-8 is treated as no match")

	assert.Nil(t, SearchFile(filepath.Join(dir, "missing.txt"), m))
}

func TestSearchFile_Unicode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "test.txt"), []byte("café\ncafe\nCAFÉ"))

	result := SearchFile(path, mustCompile(t, types.SearchQuery{Pattern: "café", IsCaseSensitive: true}))
	require.NotNil(t, result)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 1, result.Matches[0].Line)
}

func TestSearchFile_TrailingNewlineIsNotALine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "test.txt"), []byte("a\n\n"))

	result := SearchFile(path, mustCompile(t, types.SearchQuery{Pattern: "^$", IsRegex: true}))
	require.NotNil(t, result)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 2, result.Matches[0].Line)
}
