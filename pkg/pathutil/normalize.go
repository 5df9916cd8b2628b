package pathutil

import (
	"runtime"
	"strings"
)

// Normalize rewrites path into the canonical separator form of the host OS.
// On macOS the "/private/" prefix that temp and var directories resolve
// through is removed so paths match what users see in Finder.
func Normalize(path string) string {
	return normalizeFor(runtime.GOOS, path)
}

func normalizeFor(goos, path string) string {
	switch goos {
	case "windows":
		return strings.ReplaceAll(path, "/", `\`)
	case "darwin":
		path = strings.ReplaceAll(path, `\`, "/")
		return strings.ReplaceAll(path, "/private/", "/")
	default:
		return strings.ReplaceAll(path, `\`, "/")
	}
}
