package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/standardbeagle/dirsearch/internal/types"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/internal/core/search.go",
			rootDir:  "/home/user/project",
			expected: "internal/core/search.go",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/README.md",
			rootDir:  "/home/user/project",
			expected: "README.md",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go", // Should return as-is if already relative
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.go",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.go", // Should return absolute if outside root
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.go",
			rootDir:  "",
			expected: "/home/user/project/file.go", // Fallback to absolute
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "", // Empty stays empty
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)

			// Normalize separators for cross-platform testing
			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected := filepath.ToSlash(tt.expected)
				if result != expected {
					t.Errorf("ToRelative() = %v, want %v", result, expected)
				}
			} else {
				if result != tt.expected {
					t.Errorf("ToRelative() = %v, want %v", result, tt.expected)
				}
			}
		})
	}
}

func TestToRelativeResults(t *testing.T) {
	rootDir := "/home/user/project"

	input := []types.SearchFileResult{
		{
			Path: "/home/user/project/src/main.go",
			Matches: []types.SearchMatch{
				{Line: 10, Content: "foo()", MatchRanges: []types.MatchRange{{0, 3}}},
			},
		},
		{
			Path: "/home/user/project/internal/core/search.go",
			Matches: []types.SearchMatch{
				{Line: 42, Content: "bar := 1", MatchRanges: []types.MatchRange{{0, 3}}},
			},
		},
		{
			Path: "/elsewhere/README.md",
			Matches: []types.SearchMatch{
				{Line: 1, Content: "baz", MatchRanges: []types.MatchRange{{0, 3}}},
			},
		},
	}

	results := ToRelativeResults(input, rootDir)

	expected := []string{
		"src/main.go",
		"internal/core/search.go",
		"/elsewhere/README.md",
	}

	if len(results) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(results))
	}

	for i, result := range results {
		// Normalize for cross-platform
		gotPath := result.Path
		wantPath := expected[i]
		if runtime.GOOS == "windows" {
			gotPath = filepath.ToSlash(gotPath)
			wantPath = filepath.ToSlash(wantPath)
		}

		if gotPath != wantPath {
			t.Errorf("Result %d: Path = %v, want %v", i, gotPath, wantPath)
		}

		// Verify matches are unchanged
		if result.Matches[0].Line != input[i].Matches[0].Line {
			t.Errorf("Result %d: Line changed", i)
		}
	}

	// The input slice must not be modified
	if input[0].Path != "/home/user/project/src/main.go" {
		t.Errorf("Input was modified: %v", input[0].Path)
	}
}

func TestToRelativeEmptySlice(t *testing.T) {
	empty := []types.SearchFileResult{}
	if got := ToRelativeResults(empty, "/home/user/project"); len(got) != 0 {
		t.Errorf("Expected empty slice, got %d elements", len(got))
	}
	if got := ToRelativeResults(nil, "/home/user/project"); got != nil {
		t.Errorf("Expected nil to stay nil, got %v", got)
	}
}
