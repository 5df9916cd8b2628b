// Package pathutil provides path normalization and conversion between
// absolute and relative paths.
//
// Search results carry normalized absolute paths so they are unambiguous.
// User-facing output may prefer paths relative to the search root; this
// package provides that conversion layer.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/dirsearch/internal/types"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go" (outside root)
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go" (already relative)
func ToRelative(absPath, rootDir string) string {
	// Handle empty inputs
	if absPath == "" || rootDir == "" {
		return absPath
	}

	// If path is already relative, return as-is
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	// Clean both paths to normalize separators and remove redundant elements
	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	// Try to make relative
	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// If the relative path starts with ".." it means the file is outside the root
	// In this case, return the absolute path as it's clearer
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeResults converts result paths from absolute to relative.
// Creates a new slice without modifying the original results.
//
// This function is designed for use at output boundaries where results are displayed to users:
//   - CLI text and JSON output
//   - MCP server responses
func ToRelativeResults(results []types.SearchFileResult, rootDir string) []types.SearchFileResult {
	if len(results) == 0 {
		return results
	}

	// Create a copy to avoid modifying the original
	converted := make([]types.SearchFileResult, len(results))
	copy(converted, results)

	for i := range converted {
		converted[i].Path = ToRelative(converted[i].Path, rootDir)
	}

	return converted
}
